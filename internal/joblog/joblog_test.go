package joblog

import (
	"fmt"
	"testing"

	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

func TestAddAndGet(t *testing.T) {
	l := New(10)
	e := l.Add(printjob.Result{Success: true, Device: "POS-80"})
	if e.ID == "" {
		t.Fatal("entry has no id")
	}
	if e.CompletedAt.IsZero() {
		t.Fatal("entry has no timestamp")
	}

	got, ok := l.Get(e.ID)
	if !ok {
		t.Fatalf("entry %s not found", e.ID)
	}
	if got.Result.Device != "POS-80" {
		t.Errorf("device = %q", got.Result.Device)
	}

	if _, ok := l.Get("nope"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestRecentNewestFirst(t *testing.T) {
	l := New(10)
	for i := 0; i < 5; i++ {
		l.Add(printjob.Result{Device: fmt.Sprintf("dev-%d", i)})
	}

	recent := l.Recent(3)
	if len(recent) != 3 {
		t.Fatalf("len = %d, want 3", len(recent))
	}
	if recent[0].Result.Device != "dev-4" || recent[2].Result.Device != "dev-2" {
		t.Errorf("wrong order: %s, %s, %s",
			recent[0].Result.Device, recent[1].Result.Device, recent[2].Result.Device)
	}

	if len(l.Recent(0)) != 5 {
		t.Errorf("Recent(0) should return everything")
	}
}

func TestCapacityDropsOldest(t *testing.T) {
	l := New(3)
	for i := 0; i < 5; i++ {
		l.Add(printjob.Result{Device: fmt.Sprintf("dev-%d", i)})
	}

	if l.Len() != 3 {
		t.Fatalf("len = %d, want 3", l.Len())
	}
	all := l.Recent(0)
	if all[len(all)-1].Result.Device != "dev-2" {
		t.Errorf("oldest surviving entry = %s, want dev-2", all[len(all)-1].Result.Device)
	}
}
