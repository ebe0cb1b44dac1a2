package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
)

func TestGetEnvAsDuration(t *testing.T) {
	t.Run("valid duration", func(t *testing.T) {
		os.Setenv("TEST_DURATION", "1500ms")
		defer os.Unsetenv("TEST_DURATION")

		if got := getEnvAsDuration("TEST_DURATION", time.Second); got != 1500*time.Millisecond {
			t.Errorf("got %v, want 1.5s", got)
		}
	})

	t.Run("invalid duration returns default", func(t *testing.T) {
		os.Setenv("TEST_DURATION_BAD", "soon")
		defer os.Unsetenv("TEST_DURATION_BAD")

		if got := getEnvAsDuration("TEST_DURATION_BAD", 2*time.Second); got != 2*time.Second {
			t.Errorf("got %v, want 2s", got)
		}
	})

	t.Run("unset returns default", func(t *testing.T) {
		os.Unsetenv("TEST_DURATION_MISSING")
		if got := getEnvAsDuration("TEST_DURATION_MISSING", 300*time.Millisecond); got != 300*time.Millisecond {
			t.Errorf("got %v, want 300ms", got)
		}
	})
}

func TestGetEnvAsBool(t *testing.T) {
	t.Run("true value", func(t *testing.T) {
		os.Setenv("TEST_BOOL", "true")
		defer os.Unsetenv("TEST_BOOL")

		if !getEnvAsBool("TEST_BOOL", false) {
			t.Error("got false, want true")
		}
	})

	t.Run("garbage returns default", func(t *testing.T) {
		os.Setenv("TEST_BOOL_BAD", "yep")
		defer os.Unsetenv("TEST_BOOL_BAD")

		if getEnvAsBool("TEST_BOOL_BAD", false) {
			t.Error("got true, want the default")
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"WILPOS_PORT", "WILPOS_ATTEMPT_TIMEOUT", "WILPOS_RETRY_BACKOFF"} {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9123 {
		t.Errorf("port = %d, want 9123", cfg.Port)
	}
	if cfg.AttemptTimeout != 10*time.Second {
		t.Errorf("attempt timeout = %v, want 10s", cfg.AttemptTimeout)
	}
	if cfg.RetryBackoff != 300*time.Millisecond {
		t.Errorf("retry backoff = %v, want 300ms", cfg.RetryBackoff)
	}
	if cfg.SettingsPath == "" || cfg.SeenPath == "" || cfg.ExportDir == "" {
		t.Error("path defaults must not be empty")
	}
}

func TestStoreMissingFileStartsFromDefaults(t *testing.T) {
	st, err := NewStore(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	s := st.Current()
	if !s.AutoCut {
		t.Error("fresh settings should enable auto-cut")
	}
	if s.DefaultReceiptDevice != "" {
		t.Errorf("fresh settings should have no default device, got %q", s.DefaultReceiptDevice)
	}
}

func TestStoreUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	st, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}

	err = st.Update(func(s *Settings) {
		s.DefaultReceiptDevice = "POS-80"
		s.AutoOpenDrawer = true
		s.Devices = map[string]DeviceSettings{
			"POS-80": {Classify: device.OverrideThermal, Columns: 48},
		}
		s.NetworkDevices = append(s.NetworkDevices, device.NetworkEndpoint{
			Name: "Cocina", Host: "192.168.1.50", Port: 9100,
		})
	})
	if err != nil {
		t.Fatal(err)
	}

	// A second store reading the same file sees everything back.
	again, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	s := again.Current()
	if s.DefaultReceiptDevice != "POS-80" || !s.AutoOpenDrawer {
		t.Errorf("settings did not round-trip: %+v", s)
	}
	if s.Devices["POS-80"].Columns != 48 {
		t.Errorf("device override did not round-trip: %+v", s.Devices)
	}
	if len(s.NetworkDevices) != 1 || s.NetworkDevices[0].Host != "192.168.1.50" {
		t.Errorf("network devices did not round-trip: %+v", s.NetworkDevices)
	}
}

func TestStoreCurrentIsACopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	st, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Update(func(s *Settings) {
		s.Devices = map[string]DeviceSettings{"POS-80": {Columns: 42}}
	}); err != nil {
		t.Fatal(err)
	}

	leaked := st.Current()
	leaked.Devices["POS-80"] = DeviceSettings{Columns: 99}

	if st.Current().Devices["POS-80"].Columns != 42 {
		t.Error("mutating a returned copy changed the stored settings")
	}
}

func TestNewStoreRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("default_receipt_device: [not: closed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path); err == nil {
		t.Fatal("want a parse error for malformed settings")
	}
}

func TestSettingsDispatchMapping(t *testing.T) {
	s := Settings{
		DefaultReceiptDevice: "POS-80",
		DefaultLabelDevice:   "Zebra",
		AutoCut:              true,
		Encode:               EncodeSettings{Columns: 42, CodePage: "cp858", PaperWidth: "80mm"},
		Devices: map[string]DeviceSettings{
			"Mini-58": {Columns: 32, PaperWidth: "58mm"},
		},
	}

	d := s.Dispatch()
	if d.DefaultReceiptDevice != "POS-80" || d.DefaultLabelDevice != "Zebra" || !d.AutoCut {
		t.Errorf("top level fields did not map: %+v", d)
	}
	if d.Encode.Columns != 42 || d.Encode.CodePage != "cp858" {
		t.Errorf("encode defaults did not map: %+v", d.Encode)
	}
	if d.Devices["Mini-58"].PaperWidth != "58mm" {
		t.Errorf("per-device overrides did not map: %+v", d.Devices)
	}
}

func TestSettingsOverrides(t *testing.T) {
	s := Settings{Devices: map[string]DeviceSettings{
		"POS-80":   {Classify: device.OverrideThermal},
		"LaserJet": {Classify: device.OverrideStandard},
		"Unmarked": {Columns: 42},
		"Misspelt": {Classify: "always"},
	}}

	o := s.Overrides()
	if len(o) != 2 {
		t.Fatalf("overrides = %v, want exactly the two valid entries", o)
	}
	if o["POS-80"] != device.OverrideThermal || o["LaserJet"] != device.OverrideStandard {
		t.Errorf("overrides = %v", o)
	}

	if (Settings{}).Overrides() != nil {
		t.Error("no devices should yield nil overrides")
	}
}
