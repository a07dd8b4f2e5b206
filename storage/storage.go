// Package storage provides a small durable string-keyed store, the local
// equivalent of a browser's storage area.
package storage

import (
	"errors"
	"sync"
)

// ErrClosed is returned by a store used after Close.
var ErrClosed = errors.New("storage: closed")

// Store is a string-keyed store of string values.
type Store interface {
	// GetItem returns the value stored under key. ok is false when the key
	// has never been set or was removed.
	GetItem(key string) (value string, ok bool, err error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error
	// SetItems stores every entry of items or, on error, none of them.
	SetItems(items map[string]string) error
	Close() error
}

// Memory is an in-process Store. It is not durable.
type Memory struct {
	mu     sync.Mutex
	items  map[string]string
	closed bool
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.items[key] = value
	return nil
}

func (m *Memory) SetItems(items map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for k, v := range items {
		m.items[k] = v
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
