// Package cache decides which samples can be skipped because a downstream
// consumer already holds them.
package cache

import (
	"sync"
)

// Predicate reports whether the sample with the given name is cached.
type Predicate interface {
	ShouldSkip(name string) bool
}

// Func adapts a function to a Predicate.
type Func func(name string) bool

func (f Func) ShouldSkip(name string) bool { return f(name) }

// None never skips.
var None Predicate = Func(func(string) bool { return false })

// Memory is an in-process set of cached sample names.
type Memory struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewMemory returns a set pre-populated with names.
func NewMemory(names ...string) *Memory {
	m := &Memory{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		m.names[n] = struct{}{}
	}
	return m
}

// Mark records name as cached.
func (m *Memory) Mark(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[name] = struct{}{}
	return nil
}

func (m *Memory) ShouldSkip(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.names[name]
	return ok
}

// Len returns the number of cached names.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.names)
}
