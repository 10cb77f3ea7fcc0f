package reflected

import (
	"fmt"

	"github.com/miruken-go/reflected/internal"
)

// Table is an explicit registration of bindings.
// A consumer declares its slots and collects them in a Table
// that is handed to the Manager at start-up.
type Table struct {
	name  string
	decls []*Descriptor
	names map[string]struct{}
}

// NewTable creates a Table named name holding decls.
func NewTable(name string, decls ...Declaration) *Table {
	if name == "" {
		panic("table name cannot be empty")
	}
	t := &Table{name: name, names: make(map[string]struct{})}
	return t.Add(decls...)
}

func (t *Table) Name() string {
	return t.name
}

// Descriptors returns the registered descriptors in order.
func (t *Table) Descriptors() []*Descriptor {
	return t.decls
}

// Add registers decls with the table.
// A binding name can only be used once and a descriptor
// can only belong to one table.
func (t *Table) Add(decls ...Declaration) *Table {
	for _, decl := range decls {
		if internal.IsNil(decl) {
			panic(fmt.Errorf("table %v: declaration cannot be nil", t.name))
		}
		d := decl.Descriptor()
		if d.Table != "" && d.Table != t.name {
			panic(fmt.Errorf("table %v: binding %v already belongs to table %v", t.name, d.Name, d.Table))
		}
		if _, dup := t.names[d.Name]; dup {
			panic(fmt.Errorf("table %v: duplicate binding %v", t.name, d.Name))
		}
		d.Table = t.name
		t.names[d.Name] = struct{}{}
		t.decls = append(t.decls, d)
	}
	return t
}

func (t *Table) String() string {
	return fmt.Sprintf("%v (%d bindings)", t.name, len(t.decls))
}
