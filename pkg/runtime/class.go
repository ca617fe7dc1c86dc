package runtime

import (
	"fmt"

	"github.com/pingf/toy-lang/pkg/ast"
)

// ObjectClassName is the root class. It contributes no methods and ends
// method resolution.
const ObjectClassName = "Object"

// Class is a callable that builds instances. Parents keeps the declared
// parent names; Bases holds the classes they resolved to when the class was
// created.
type Class struct {
	Name    string
	Parents []string
	Bases   []*Class
	Methods map[string]*Func
	Static  ast.Statement
	Closure *Environment
	// Object is the instance of the builtin Class class that represents this
	// class as a value; static bindings live on it.
	Object *Instance
}

func (*Class) Kind() Kind { return KindClass }

// NewClass creates a class with the given resolved parents.
func NewClass(name string, bases []*Class, closure *Environment) *Class {
	parents := make([]string, len(bases))
	for i, base := range bases {
		parents[i] = base.Name
	}
	return &Class{
		Name:    name,
		Parents: parents,
		Bases:   bases,
		Methods: make(map[string]*Func),
		Closure: closure,
	}
}

// Define adds an own method.
func (c *Class) Define(name string, fn *Func) {
	c.Methods[name] = fn
}

// IsRoot reports whether c is the Object sentinel.
func (c *Class) IsRoot() bool {
	return c.Name == ObjectClassName
}

// OwnMethod returns a method defined directly on c.
func (c *Class) OwnMethod(name string) (*Func, bool) {
	if c.IsRoot() {
		return nil, false
	}
	fn, ok := c.Methods[name]
	return fn, ok
}

// GetMethod resolves name or fails with a reference error.
func (c *Class) GetMethod(name string) (*Func, *Class, error) {
	fn, owner, ok := c.Resolve(name)
	if !ok {
		return nil, nil, &ReferenceError{What: "method", Name: fmt.Sprintf("%s.%s", c.Name, name)}
	}
	return fn, owner, nil
}

// Resolve searches own methods first, then the parents level by level in
// declaration order. The first class in that order that defines name wins.
func (c *Class) Resolve(name string) (*Func, *Class, bool) {
	if fn, ok := c.OwnMethod(name); ok {
		return fn, c, true
	}
	visited := map[*Class]bool{c: true}
	level := c.Bases
	for len(level) > 0 {
		var next []*Class
		for _, parent := range level {
			if parent == nil || visited[parent] || parent.IsRoot() {
				continue
			}
			visited[parent] = true
			if fn, ok := parent.OwnMethod(name); ok {
				return fn, parent, true
			}
			next = append(next, parent.Bases...)
		}
		level = next
	}
	return nil, nil, false
}

// IsSubclassOf reports whether other appears in c's ancestry (or is c).
func (c *Class) IsSubclassOf(other *Class) bool {
	visited := make(map[*Class]bool)
	queue := []*Class{c}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == other {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		queue = append(queue, current.Bases...)
	}
	return false
}

//-----------------------------------------------------------------------------
// Instances
//-----------------------------------------------------------------------------

// Instance is an object: a class reference, own properties and an internal
// payload that defaults to the instance itself.
type Instance struct {
	Class    *Class
	Internal Value
	props    map[string]Value
	order    []string
}

func (*Instance) Kind() Kind { return KindInstance }

func NewInstance(class *Class) *Instance {
	inst := &Instance{Class: class, props: make(map[string]Value)}
	inst.Internal = inst
	return inst
}

// Own returns an own property.
func (i *Instance) Own(name string) (Value, bool) {
	v, ok := i.props[name]
	return v, ok
}

// Set creates or replaces an own property.
func (i *Instance) Set(name string, value Value) {
	if _, ok := i.props[name]; !ok {
		i.order = append(i.order, name)
	}
	i.props[name] = value
}

// Keys lists own properties in insertion order.
func (i *Instance) Keys() []string {
	out := make([]string, len(i.order))
	copy(out, i.order)
	return out
}

// Member looks up an own property and then a method through class
// resolution. Methods come back bound to the instance; a miss is the
// reference error of GetMethod.
func (i *Instance) Member(name string) (Value, error) {
	if v, ok := i.props[name]; ok {
		return v, nil
	}
	if i.Class == nil {
		return nil, &ReferenceError{What: "method", Name: name}
	}
	fn, _, err := i.Class.GetMethod(name)
	if err != nil {
		return nil, err
	}
	return fn.Bind(i), nil
}

// ClassName returns the name of the instance's class.
func (i *Instance) ClassName() string {
	if i.Class == nil {
		return ObjectClassName
	}
	return i.Class.Name
}

// InstanceOf reports whether the instance's class is class or inherits it.
func (i *Instance) InstanceOf(class *Class) bool {
	return i.Class != nil && i.Class.IsSubclassOf(class)
}
