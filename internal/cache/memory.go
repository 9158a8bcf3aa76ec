package cache

import (
	"context"
	"sync"
)

type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

func (m *Memory) Get(_ context.Context, identity string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[identity]
	if !ok {
		return nil, ErrMiss
	}
	entry.TextSkills = append([]string(nil), entry.TextSkills...)
	return &entry, nil
}

func (m *Memory) Set(_ context.Context, identity string, entry *Entry) error {
	if entry == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[identity] = Entry{TextSkills: append([]string(nil), entry.TextSkills...)}
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
