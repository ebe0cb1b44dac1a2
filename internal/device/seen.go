package device

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// SeenDevice is the persisted last-known state of one device name
type SeenDevice struct {
	Transport   Transport `json:"transport"`
	LastStatus  Status    `json:"last_status"`
	LastSeen    time.Time `json:"last_seen"`
	LastSuccess time.Time `json:"last_success,omitempty"`
}

// SeenStore persists the last-known status of every device name ever
// observed, so diagnostics can tell "absent now" apart from "never seen".
type SeenStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]SeenDevice
}

// NewSeenStore opens or creates the store at filePath
func NewSeenStore(filePath string) (*SeenStore, error) {
	s := &SeenStore{
		filePath: filePath,
		data:     make(map[string]SeenDevice),
	}
	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load seen devices: %w", err)
		}
	}
	return s, nil
}

// MarkSeen records a refresh outcome for every listed device
func (s *SeenStore) MarkSeen(devices []Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, d := range devices {
		entry := s.data[d.Name]
		entry.Transport = d.Transport
		entry.LastStatus = d.Status
		entry.LastSeen = now
		s.data[d.Name] = entry
	}
	return s.save()
}

// MarkSuccess records a successful print on the named device
func (s *SeenStore) MarkSuccess(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[name]
	if !ok {
		return nil
	}
	entry.LastSuccess = time.Now()
	s.data[name] = entry
	return s.save()
}

// Get returns the stored state for a device name
func (s *SeenStore) Get(name string) (SeenDevice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.data[name]
	return entry, ok
}

// MissingFrom returns names that were seen before but are absent from the
// current snapshot, oldest sighting first.
func (s *SeenStore) MissingFrom(current []Descriptor) []string {
	present := make(map[string]bool, len(current))
	for _, d := range current {
		present[d.Name] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []string
	for name := range s.data {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		return s.data[missing[i]].LastSeen.Before(s.data[missing[j]].LastSeen)
	})
	return missing
}

func (s *SeenStore) load() error {
	content, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	return json.Unmarshal(content, &s.data)
}

func (s *SeenStore) save() error {
	content, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen devices: %w", err)
	}
	return os.WriteFile(s.filePath, content, 0644)
}
