package engine

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultEngine is the engine used when none is named.
const DefaultEngine = "pebble"

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver available by name. It panics if drv is nil or the
// name is already taken.
func Register(drv Driver) {
	if drv == nil {
		panic("engine: Register driver is nil")
	}
	driversMu.Lock()
	defer driversMu.Unlock()
	name := drv.Name()
	if _, dup := drivers[name]; dup {
		panic("engine: Register called twice for driver " + name)
	}
	drivers[name] = drv
}

// Lookup returns the driver registered as name. An empty name selects
// DefaultEngine.
func Lookup(name string) (Driver, error) {
	if name == "" {
		name = DefaultEngine
	}
	driversMu.RLock()
	drv, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownEngine, name)
	}
	return drv, nil
}

// Engines returns the sorted names of the registered drivers.
func Engines() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
