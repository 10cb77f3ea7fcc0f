package reflected

import (
	"fmt"
	"reflect"

	"github.com/miruken-go/reflected/catalog"
)

type (
	// Descriptor declares a binding to a member of a host type.
	// Descriptors are built with the typed slot constructors such
	// as StaticGetter or Invoker and registered in a Table.
	// A Descriptor must not be changed once added to a Table.
	Descriptor struct {
		// Name identifies the binding within its Table.
		Name string `validate:"required,excludesall=/"`

		// Table is the owning table, assigned when added to one.
		Table string `validate:"required"`

		// Type names the host type by full, package qualified
		// or unqualified name. Ignored when TypeRef is set.
		Type string `validate:"excludesall= "`

		// TypeRef references the host type directly.
		TypeRef reflect.Type `validate:"-"`

		// Member is the name of the member to bind.
		Member string `validate:"excludesall= "`

		Kind catalog.Kind

		// Static is true when the member is expected to be static.
		Static bool

		Shape Shape

		// Callable is the func type installed in the slot.
		Callable reflect.Type `validate:"-"`

		// Signature optionally narrows overloaded members.
		Signature *Signature `validate:"-"`

		// Optional bindings are expected to fail on some hosts.
		Optional bool

		direct func(*catalog.Member) (any, bool)
		event  func(*eventSource) (any, error)
	}

	// Signature lists the parameter and result types a member
	// must accept. A nil Out leaves results unchecked.
	Signature struct {
		In  []reflect.Type
		Out []reflect.Type
	}

	// Option customizes a Descriptor.
	Option func(*Descriptor)

	// Declaration is anything that exposes a Descriptor.
	Declaration interface {
		Descriptor() *Descriptor
	}
)


// Descriptor

func (d *Descriptor) Descriptor() *Descriptor {
	return d
}

// Identity returns the table qualified binding name.
func (d *Descriptor) Identity() string {
	return d.Table + "/" + d.Name
}

// Target returns the name of the host type.
func (d *Descriptor) Target() string {
	if d.TypeRef != nil {
		return d.TypeRef.String()
	}
	return d.Type
}

func (d *Descriptor) String() string {
	scope := "instance"
	if d.Static {
		scope = "static"
	}
	return fmt.Sprintf("%v (%v %v %v.%v as %v)",
		d.Identity(), scope, d.Kind, d.Target(), d.Member, d.Shape)
}

// receiver returns the receiver type of instance shapes.
func (d *Descriptor) receiver() reflect.Type {
	if d.Static || d.Kind == catalog.Constructor || d.Callable == nil ||
		d.Callable.Kind() != reflect.Func || d.Callable.NumIn() == 0 {
		return nil
	}
	return d.Callable.In(0)
}


// Signature

// Accepts reports whether member m is compatible with the signature.
// Arguments must be assignable to the member parameters and member
// results assignable to the declared results.
func (s *Signature) Accepts(m *catalog.Member) bool {
	if s == nil {
		return true
	}
	switch m.Kind() {
	case catalog.Method, catalog.Constructor:
		ft := m.Type()
		skip := 0
		if !m.Static() {
			skip = 1
		}
		if ft.NumIn()-skip != len(s.In) {
			return false
		}
		for i, in := range s.In {
			if !in.AssignableTo(ft.In(i + skip)) {
				return false
			}
		}
		if s.Out != nil {
			if ft.NumOut() != len(s.Out) {
				return false
			}
			for i, out := range s.Out {
				if !ft.Out(i).AssignableTo(out) {
					return false
				}
			}
		}
		return true
	case catalog.Field, catalog.Property:
		return len(s.Out) != 1 || m.Type().AssignableTo(s.Out[0])
	case catalog.Event:
		return len(s.Out) != 1 || m.HandlerType() == s.Out[0]
	}
	return true
}

func (s *Signature) String() string {
	if s == nil {
		return "any"
	}
	return fmt.Sprintf("%v -> %v", s.In, s.Out)
}


// Options

// Property binds a getter or setter to a property instead of a field.
func Property() Option {
	return func(d *Descriptor) {
		d.Kind = catalog.Property
	}
}

// TypeRef targets typ directly instead of by name.
func TypeRef(typ reflect.Type) Option {
	return func(d *Descriptor) {
		d.TypeRef = typ
	}
}

// WithSignature narrows overloaded members to those accepting in
// and returning out.
func WithSignature(in []reflect.Type, out []reflect.Type) Option {
	return func(d *Descriptor) {
		d.Signature = &Signature{In: in, Out: out}
	}
}

// Optional marks a binding expected to be missing on some hosts.
func Optional() Option {
	return func(d *Descriptor) {
		d.Optional = true
	}
}

// Types collects the reflect.Type of each sample value.
// It is a convenience for building a Signature.
func Types(samples ...any) []reflect.Type {
	types := make([]reflect.Type, len(samples))
	for i, s := range samples {
		if typ, ok := s.(reflect.Type); ok {
			types[i] = typ
		} else {
			types[i] = reflect.TypeOf(s)
		}
	}
	return types
}
