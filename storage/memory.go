package storage

import (
	"fmt"
	"sync"
)

// Memory is an in-memory Store. Entries do not survive the process; it backs
// tests and hosts that opt out of persistence.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

// Get retrieves the value stored under key.
func (m *Memory) Get(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (m *Memory) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
	return nil
}

// Delete removes the entry under key, if present.
func (m *Memory) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
