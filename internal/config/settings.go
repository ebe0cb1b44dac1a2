package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/internal/dispatch"
)

// Settings is the operator-editable printing configuration. It lives in a
// YAML file next to the agent and maps onto the plain values the dispatcher
// and registry read at submit time.
type Settings struct {
	DefaultReceiptDevice string                    `yaml:"default_receipt_device,omitempty"`
	DefaultLabelDevice   string                    `yaml:"default_label_device,omitempty"`
	AutoCut              bool                      `yaml:"auto_cut"`
	AutoOpenDrawer       bool                      `yaml:"auto_open_drawer"`
	Encode               EncodeSettings            `yaml:"encode,omitempty"`
	Devices              map[string]DeviceSettings `yaml:"devices,omitempty"`
	NetworkDevices       []device.NetworkEndpoint  `yaml:"network_devices,omitempty"`
}

// EncodeSettings are the global encoding defaults
type EncodeSettings struct {
	Columns    int    `yaml:"columns,omitempty"`
	CodePage   string `yaml:"code_page,omitempty"`
	PaperWidth string `yaml:"paper_width,omitempty"`
	LogoPath   string `yaml:"logo_path,omitempty"`
}

// DeviceSettings override the global defaults for one device. Classify
// accepts "thermal" or "standard" and forces the classification; empty
// leaves the heuristic in charge.
type DeviceSettings struct {
	Classify   string `yaml:"classify,omitempty"`
	Columns    int    `yaml:"columns,omitempty"`
	CodePage   string `yaml:"code_page,omitempty"`
	PaperWidth string `yaml:"paper_width,omitempty"`
	LogoPath   string `yaml:"logo_path,omitempty"`
}

// Dispatch converts the file form into the value object the dispatcher reads
// on every submit.
func (s Settings) Dispatch() dispatch.Settings {
	out := dispatch.Settings{
		DefaultReceiptDevice: s.DefaultReceiptDevice,
		DefaultLabelDevice:   s.DefaultLabelDevice,
		AutoCut:              s.AutoCut,
		AutoOpenDrawer:       s.AutoOpenDrawer,
		Encode: dispatch.EncodeDefaults{
			Columns:    s.Encode.Columns,
			CodePage:   s.Encode.CodePage,
			PaperWidth: s.Encode.PaperWidth,
			LogoPath:   s.Encode.LogoPath,
		},
	}
	if len(s.Devices) > 0 {
		out.Devices = make(map[string]dispatch.EncodeDefaults, len(s.Devices))
		for name, d := range s.Devices {
			out.Devices[name] = dispatch.EncodeDefaults{
				Columns:    d.Columns,
				CodePage:   d.CodePage,
				PaperWidth: d.PaperWidth,
				LogoPath:   d.LogoPath,
			}
		}
	}
	return out
}

// Overrides extracts the forced thermal classifications for the registry
func (s Settings) Overrides() device.Overrides {
	var o device.Overrides
	for name, d := range s.Devices {
		if d.Classify != device.OverrideThermal && d.Classify != device.OverrideStandard {
			continue
		}
		if o == nil {
			o = device.Overrides{}
		}
		o[name] = d.Classify
	}
	return o
}

// defaultSettings is what a fresh install starts with
func defaultSettings() Settings {
	return Settings{AutoCut: true}
}

// clone deep-copies the map and slice fields so a caller can never mutate
// the stored settings through a returned copy.
func (s Settings) clone() Settings {
	out := s
	if s.Devices != nil {
		out.Devices = make(map[string]DeviceSettings, len(s.Devices))
		for k, v := range s.Devices {
			out.Devices[k] = v
		}
	}
	if s.NetworkDevices != nil {
		out.NetworkDevices = append([]device.NetworkEndpoint(nil), s.NetworkDevices...)
	}
	return out
}

// Store keeps the settings file and its parsed form in sync. Reads are
// cheap value copies; updates mutate under the lock and write through to
// disk before returning.
type Store struct {
	mu       sync.RWMutex
	path     string
	settings Settings
}

// NewStore loads the settings file at path. A missing file is not an error:
// the store starts from defaults and creates the file on the first update.
func NewStore(path string) (*Store, error) {
	st := &Store{path: path, settings: defaultSettings()}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	st.settings = s
	return st, nil
}

// Current returns a copy of the settings
func (st *Store) Current() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings.clone()
}

// Update applies fn to a copy of the settings and persists the result. The
// stored settings only change once the file write succeeded.
func (st *Store) Update(fn func(*Settings)) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.settings.clone()
	fn(&next)

	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(st.path, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	st.settings = next
	return nil
}
