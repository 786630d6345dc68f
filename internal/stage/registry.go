package stage

import (
	"fmt"
	"sort"
)

// Constructor creates a Stage bound to an environment.
type Constructor func(env *Env) Stage

var registry = map[string]Constructor{}

// Register adds a stage constructor under the given name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the stage constructor for the given name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown stage: %s", name)
	}
	return ctor, nil
}

// Names returns the names of all registered stages, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
