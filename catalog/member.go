package catalog

import (
	"fmt"
	"go/token"
	"reflect"

	"github.com/miruken-go/reflected/internal/access"
)

// Member describes a single field, property, method, constructor,
// event or type of a host Type.
type Member struct {
	kind   Kind
	name   string
	owner  *Type
	static bool
	typ    reflect.Type
	index  []int
	value  reflect.Value
	getter reflect.Value
	setter reflect.Value
}

func (m *Member) Kind() Kind {
	return m.kind
}

func (m *Member) Name() string {
	return m.name
}

// Owner returns the Type declaring the member.
func (m *Member) Owner() *Type {
	return m.owner
}

func (m *Member) Static() bool {
	return m.static
}

// Exported reports whether the member is visible outside the
// host package.
func (m *Member) Exported() bool {
	return token.IsExported(m.name)
}

// Type returns the value type of fields, properties and events,
// the func type of methods and constructors and the described
// type for TypeInfo. Instance method types include the receiver
// as the first parameter.
func (m *Member) Type() reflect.Type {
	return m.typ
}

// Index returns the field index sequence of instance fields and events.
func (m *Member) Index() []int {
	return m.index
}

// Offset returns the fixed byte offset of an instance field.
// ok is false when the field is reached through an embedded pointer.
func (m *Member) Offset() (uintptr, bool) {
	if m.static || m.index == nil {
		return 0, false
	}
	return access.Offset(m.owner.typ, m.index)
}

// Func returns the callable of methods and constructors.
func (m *Member) Func() reflect.Value {
	return m.value
}

// Var returns the settable storage of static fields and events.
func (m *Member) Var() reflect.Value {
	return m.value
}

// Getter returns the property read accessor, if any.
func (m *Member) Getter() reflect.Value {
	return m.getter
}

// Setter returns the property write accessor, if any.
func (m *Member) Setter() reflect.Value {
	return m.setter
}

// Readable reports whether the member value can be read.
func (m *Member) Readable() bool {
	switch m.kind {
	case Field, Event:
		return true
	case Property:
		return m.getter.IsValid()
	}
	return false
}

// Writable reports whether the member value can be assigned.
func (m *Member) Writable() bool {
	switch m.kind {
	case Field, Event:
		return true
	case Property:
		return m.setter.IsValid()
	}
	return false
}

// Multicast reports whether an event holds a list of handlers
// rather than a single one.
func (m *Member) Multicast() bool {
	return m.kind == Event && m.typ.Kind() == reflect.Slice
}

// HandlerType returns the func type of an event handler.
func (m *Member) HandlerType() reflect.Type {
	if m.kind != Event {
		return nil
	}
	if m.typ.Kind() == reflect.Slice {
		return m.typ.Elem()
	}
	return m.typ
}

// ValueMethod returns the method when it can be called on a value
// receiver rather than requiring a pointer.
func (m *Member) ValueMethod() (reflect.Method, bool) {
	if m.kind != Method || m.static {
		return reflect.Method{}, false
	}
	return m.owner.typ.MethodByName(m.name)
}

func (m *Member) String() string {
	scope := "instance"
	if m.static {
		scope = "static"
	}
	return fmt.Sprintf("%v %v %v.%v (%v)", scope, m.kind, m.owner, m.name, m.typ)
}
