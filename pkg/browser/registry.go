package browser

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Factory launches a browser.
type Factory func(ctx context.Context, opts LaunchOptions) (Browser, error)

var (
	registryMu sync.RWMutex
	// registry stores each driver's factory function, keyed by the name used on the command line.
	registry = map[string]Factory{}
)

// RegisterDriver is called from each driver's init() to make it selectable by name.
func RegisterDriver(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// GetDriver returns the factory registered under name.
func GetDriver(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownDriver, name, driverNames())
	}
	return factory, nil
}

func driverNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
