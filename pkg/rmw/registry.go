package rmw

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// ImplementationEnv is the environment variable naming the middleware
// implementation Select prefers.
const ImplementationEnv = "RMW_IMPLEMENTATION"

// Middleware is implemented by each concrete middleware binding.
type Middleware interface {
	// Name identifies the implementation, e.g. "loopback".
	Name() string

	// SerializationFormat names the encoding the implementation uses
	// for serialized messages.
	SerializationFormat() string

	// NewContext initializes one communication context. The options are
	// validated and copied; the caller keeps ownership of opts.
	NewContext(opts ContextOptions) (Context, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Middleware)
)

// Register makes m available under its name. A second registration
// under the same name fails with ErrImplementationRegistered.
func Register(m Middleware) error {
	if m == nil || m.Name() == "" {
		return fmt.Errorf("%w: middleware must carry a name", ErrInvalidArgument)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[m.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrImplementationRegistered, m.Name())
	}
	registry[m.Name()] = m
	return nil
}

// Registered returns the registered implementation names, sorted.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the implementation registered under name.
func Lookup(name string) (Middleware, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchImplementation, name)
	}
	return m, nil
}

// Select picks the implementation named by the RMW_IMPLEMENTATION
// environment variable. When the variable is unset, the single
// registered implementation is used; with zero or several registered
// the choice is ambiguous and Select fails.
func Select() (Middleware, error) {
	if name := os.Getenv(ImplementationEnv); name != "" {
		return Lookup(name)
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	if len(registry) == 1 {
		for _, m := range registry {
			return m, nil
		}
	}
	if len(registry) == 0 {
		return nil, fmt.Errorf("%w: nothing registered", ErrNoSuchImplementation)
	}
	return nil, fmt.Errorf("%w: %d implementations registered and %s is unset",
		ErrNoSuchImplementation, len(registry), ImplementationEnv)
}
