// Package catalog exposes a host's types to the binding pass.
//
// Go has no process-wide registry of loaded types, so a host makes its
// internals reachable by grouping them into Modules. Instance members
// (fields, methods, property accessors and func-typed event fields) are
// discovered by reflection, unexported fields included. Package level
// state and constructors cannot be reflected on and are registered
// explicitly on the owning Type.
package catalog

import "fmt"

// Module is a named unit of host code whose types can be bound.
type Module struct {
	name  string
	types []*Type
}

// NewModule creates a Module containing types.
func NewModule(name string, types ...*Type) *Module {
	if name == "" {
		panic("module name cannot be empty")
	}
	m := &Module{name: name}
	return m.Add(types...)
}

func (m *Module) Name() string {
	return m.name
}

// Types returns the types in the order they were added.
func (m *Module) Types() []*Type {
	return m.types
}

// Add includes types in the Module.
// A Type can belong to a single Module.
func (m *Module) Add(types ...*Type) *Module {
	for _, t := range types {
		if t == nil {
			panic("type cannot be nil")
		}
		if t.module != nil && t.module != m {
			panic(fmt.Errorf("type %v already belongs to module %q", t, t.module.name))
		}
		t.module = m
		m.types = append(m.types, t)
	}
	return m
}

func (m *Module) String() string {
	return m.name
}
