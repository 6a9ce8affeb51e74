package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Definition describes a catalog permission. Definitions are seeded into the
// permissions table; the table, not this registry, is what role grants reference.
type Definition struct {
	Name        string
	Module      string
	Description string
}

type definitionRegistry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

var globalRegistry = &definitionRegistry{
	definitions: make(map[string]*Definition),
}

var (
	errNilDefinition = errors.New("permission: nil definition")
	errEmptyName     = errors.New("permission: name is required")
	errDuplicateName = errors.New("permission: already registered")
)

// Register adds a permission definition to the global registry.
func Register(def *Definition) error {
	if def == nil {
		return errNilDefinition
	}

	name := strings.TrimSpace(def.Name)
	if name == "" {
		return errEmptyName
	}

	cp := *def
	cp.Name = name
	cp.Module = strings.TrimSpace(cp.Module)
	cp.Description = strings.TrimSpace(cp.Description)

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.definitions[name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateName, name)
	}

	globalRegistry.definitions[name] = &cp
	return nil
}

// Get returns a copy of the definition registered under name.
func Get(name string) (*Definition, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	def, ok := globalRegistry.definitions[strings.TrimSpace(name)]
	if !ok {
		return nil, false
	}
	cp := *def
	return &cp, true
}

// All returns copies of every registered definition ordered by name.
func All() []*Definition {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make([]*Definition, 0, len(globalRegistry.definitions))
	for _, def := range globalRegistry.definitions {
		cp := *def
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names lists registered permission names in sorted order.
func Names() []string {
	defs := All()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

// ByModule gathers definitions registered under the specified module.
func ByModule(module string) []*Definition {
	module = strings.TrimSpace(module)
	var out []*Definition
	for _, def := range All() {
		if def.Module == module {
			out = append(out, def)
		}
	}
	return out
}

func removeDefinition(name string) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	delete(globalRegistry.definitions, name)
}
