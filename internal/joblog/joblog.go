// Package joblog keeps a bounded in-memory history of completed submits.
// The print core itself persists nothing; this history exists for the
// operator surfaces (API, TUI, CLI) and dies with the process.
package joblog

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// Entry is one recorded submit
type Entry struct {
	ID          string          `json:"id"`
	CompletedAt time.Time       `json:"completed_at"`
	Result      printjob.Result `json:"result"`
}

// Log is a fixed-capacity ring of entries, newest kept, oldest dropped
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	cap     int
}

const defaultCapacity = 200

func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Log{cap: capacity}
}

// Add records a result and returns the stored entry
func (l *Log) Add(res printjob.Result) Entry {
	e := Entry{
		ID:          uuid.New().String(),
		CompletedAt: time.Now(),
		Result:      res,
	}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
	l.mu.Unlock()
	return e
}

// Recent returns up to n entries, newest first. n <= 0 returns everything.
func (l *Log) Recent(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(l.entries) - 1; i >= len(l.entries)-n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Get looks an entry up by ID
func (l *Log) Get(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].ID == id {
			return l.entries[i], true
		}
	}
	return Entry{}, false
}

// Len reports the stored entry count
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
