package runtime

import (
	"fmt"
	"sort"
)

// ReferenceError is an unresolved variable, class or method lookup.
type ReferenceError struct {
	// What names the kind of lookup: "variable", "method" or "class".
	What string
	Name string
}

func (e *ReferenceError) Error() string {
	what := e.What
	if what == "" {
		what = "variable"
	}
	return fmt.Sprintf("Undefined %s '%s'", what, e.Name)
}

func undefinedVariable(name string) error {
	return &ReferenceError{What: "variable", Name: name}
}

// Environment is one scope frame of the context chain. It owns its bindings;
// children resolve names into it through the parent link.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil at the root).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Lookup returns an own binding of this scope only.
func (e *Environment) Lookup(name string) (Value, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Delete removes an own binding.
func (e *Environment) Delete(name string) {
	delete(e.values, name)
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return undefinedVariable(name)
}

// AssignNonlocal rebinds name in the nearest ancestor, starting at the
// parent, that already defines it.
func (e *Environment) AssignNonlocal(name string, value Value) error {
	if e.parent == nil {
		return undefinedVariable(name)
	}
	return e.parent.Assign(name, value)
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, undefinedVariable(name)
}

// GetNonlocal retrieves a binding starting at the parent scope.
func (e *Environment) GetNonlocal(name string) (Value, error) {
	if e.parent == nil {
		return nil, undefinedVariable(name)
	}
	return e.parent.Get(name)
}

// Keys returns the own bindings in sorted order.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extend creates a child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
