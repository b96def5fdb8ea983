// Package preset names ready-made tokenizer configurations so callers can
// construct one by name instead of wiring patterns by hand.
package preset

import (
	"fmt"
	"sort"
	"sync"

	"minbpe/internal/pkg/minbpe/tokenizer"
)

// Factory builds a fresh tokenizer for a named preset.
type Factory func() (*tokenizer.Tokenizer, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a preset available under name. It panics on a nil factory
// or a duplicate name; presets are wired at init time, so both are
// programming errors.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("preset: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("preset: Register called twice for " + name)
	}
	registry[name] = factory
}

// New constructs a fresh tokenizer for the named preset.
func New(name string) (*tokenizer.Tokenizer, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("preset: unknown preset %q (registered: %v)", name, List())
	}
	return factory()
}

// List returns the registered preset names, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name is a known preset.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
