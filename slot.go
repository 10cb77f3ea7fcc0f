package reflected

import (
	"fmt"
	"reflect"

	"github.com/miruken-go/reflected/catalog"
	"github.com/miruken-go/reflected/internal/access"
)

// Slot is a typed handle to the callable a Manager installs for
// a binding. Slots are immutable and can be declared at package
// level; the callable itself is owned by the Manager.
type Slot[F any] struct {
	desc *Descriptor
}

// Call is the universal boxed invoker shape. Instance members
// receive the receiver as the first argument. A trailing error
// result of the member is returned as err.
type Call func(args ...any) (results []any, err error)

func (s *Slot[F]) Descriptor() *Descriptor {
	return s.desc
}

// Get returns the callable installed by m.
func (s *Slot[F]) Get(m *Manager) (F, bool) {
	if c, ok := m.callable(s.desc); ok {
		f, ok := c.(F)
		return f, ok
	}
	var zero F
	return zero, false
}

// Must returns the callable installed by m or panics.
func (s *Slot[F]) Must(m *Manager) F {
	if f, ok := s.Get(m); ok {
		return f
	}
	panic(fmt.Errorf("%w: %v", ErrNotBound, s.desc.Identity()))
}

func (s *Slot[F]) String() string {
	return s.desc.String()
}

// StaticGetter binds a func() T reading a static field or property.
func StaticGetter[T any](
	name, typ, member string,
	opts ...Option,
) *Slot[func() T] {
	d := newDescriptor[func() T](name, typ, member, catalog.Field, GetterShape, true, opts)
	d.direct = func(m *catalog.Member) (any, bool) {
		if m.Kind() == catalog.Field && m.Type() == reflect.TypeFor[T]() {
			p := m.Var().Addr().Interface().(*T)
			return func() T { return *p }, true
		}
		if g := m.Getter(); g.IsValid() && g.Type() == reflect.TypeFor[func() T]() {
			return g.Interface(), true
		}
		return nil, false
	}
	return &Slot[func() T]{d}
}

// Getter binds a func(R) T reading an instance field or property.
// R is the receiver, a pointer to the host type or an interface
// it implements.
func Getter[R, T any](
	name, typ, member string,
	opts ...Option,
) *Slot[func(R) T] {
	d := newDescriptor[func(R) T](name, typ, member, catalog.Field, GetterShape, false, opts)
	d.direct = func(m *catalog.Member) (any, bool) {
		if m.Kind() == catalog.Field && m.Type() == reflect.TypeFor[T]() &&
			reflect.TypeFor[R]() == reflect.PointerTo(m.Owner().Reflect()) {
			if offset, ok := m.Offset(); ok {
				return func(r R) T { return access.Get[R, T](r, offset) }, true
			}
		}
		return nil, false
	}
	return &Slot[func(R) T]{d}
}

// StaticSetter binds a func(T) assigning a static field or property.
func StaticSetter[T any](
	name, typ, member string,
	opts ...Option,
) *Slot[func(T)] {
	d := newDescriptor[func(T)](name, typ, member, catalog.Field, SetterShape, true, opts)
	d.direct = func(m *catalog.Member) (any, bool) {
		if m.Kind() == catalog.Field && m.Type() == reflect.TypeFor[T]() {
			p := m.Var().Addr().Interface().(*T)
			return func(v T) { *p = v }, true
		}
		if s := m.Setter(); s.IsValid() && s.Type() == reflect.TypeFor[func(T)]() {
			return s.Interface(), true
		}
		return nil, false
	}
	return &Slot[func(T)]{d}
}

// Setter binds a func(R, T) assigning an instance field or property.
// R must be a pointer to the host type or an interface it implements.
func Setter[R, T any](
	name, typ, member string,
	opts ...Option,
) *Slot[func(R, T)] {
	d := newDescriptor[func(R, T)](name, typ, member, catalog.Field, SetterShape, false, opts)
	d.direct = func(m *catalog.Member) (any, bool) {
		if m.Kind() == catalog.Field && m.Type() == reflect.TypeFor[T]() &&
			reflect.TypeFor[R]() == reflect.PointerTo(m.Owner().Reflect()) {
			if offset, ok := m.Offset(); ok {
				return func(r R, v T) { access.Set[R, T](r, offset, v) }, true
			}
		}
		return nil, false
	}
	return &Slot[func(R, T)]{d}
}

// StaticInvoker binds a static method as F.
// F may be Call to invoke with boxed arguments.
func StaticInvoker[F any](
	name, typ, member string,
	opts ...Option,
) *Slot[F] {
	d := newDescriptor[F](name, typ, member, catalog.Method, InvokerShape, true, opts)
	return &Slot[F]{d}
}

// Invoker binds an instance method as F whose first
// parameter is the receiver.
// F may be Call to invoke with boxed arguments.
func Invoker[F any](
	name, typ, member string,
	opts ...Option,
) *Slot[F] {
	d := newDescriptor[F](name, typ, member, catalog.Method, InvokerShape, false, opts)
	return &Slot[F]{d}
}

// Constructor binds a registered constructor of typ as F.
// An empty member matches any constructor, leaving the choice
// to the overload policy or a Signature.
func Constructor[F any](
	name, typ, member string,
	opts ...Option,
) *Slot[F] {
	d := newDescriptor[F](name, typ, member, catalog.Constructor, InvokerShape, true, opts)
	return &Slot[F]{d}
}

// MemberInfo binds an accessor returning the resolved member
// for further inspection.
func MemberInfo(
	name, typ, member string,
	kind   catalog.Kind,
	static bool,
	opts   ...Option,
) *Slot[func() *catalog.Member] {
	d := newDescriptor[func() *catalog.Member](name, typ, member, kind, MemberInfoShape, static, opts)
	d.direct = func(m *catalog.Member) (any, bool) {
		return func() *catalog.Member { return m }, true
	}
	return &Slot[func() *catalog.Member]{d}
}

// TypeInfo binds an accessor returning the TypeInfo member of typ.
func TypeInfo(
	name, typ string,
	opts ...Option,
) *Slot[func() *catalog.Member] {
	return MemberInfo(name, typ, "", catalog.TypeInfo, true, opts...)
}

// StaticEvent binds a factory of EventReplacer's for a static event
// whose handlers are of type H.
func StaticEvent[H any](
	name, typ, member string,
	opts ...Option,
) *Slot[func() *EventReplacer[H]] {
	d := newDescriptor[func() *EventReplacer[H]](name, typ, member, catalog.Event, EventShape, true, opts)
	d.event = func(src *eventSource) (any, error) {
		if err := checkHandler[H](src.member); err != nil {
			return nil, err
		}
		target := src.static()
		return func() *EventReplacer[H] {
			return newEventReplacer[H](target)
		}, nil
	}
	return &Slot[func() *EventReplacer[H]]{d}
}

// Event binds a factory of EventReplacer's for an instance event
// of the receiver R whose handlers are of type H.
func Event[R, H any](
	name, typ, member string,
	opts ...Option,
) *Slot[func(R) *EventReplacer[H]] {
	d := newDescriptor[func(R) *EventReplacer[H]](name, typ, member, catalog.Event, EventShape, false, opts)
	d.event = func(src *eventSource) (any, error) {
		if err := checkHandler[H](src.member); err != nil {
			return nil, err
		}
		recv := reflect.TypeFor[R]()
		if err := checkReceiver(recv, src.member.Owner(), true); err != nil {
			return nil, err
		}
		return func(r R) *EventReplacer[H] {
			target, err := src.instance(reflect.ValueOf(&r).Elem())
			if err != nil {
				panic(fmt.Errorf("event %v: %w", src.member, err))
			}
			return newEventReplacer[H](target)
		}, nil
	}
	return &Slot[func(R) *EventReplacer[H]]{d}
}

func newDescriptor[F any](
	name, typ, member string,
	kind   catalog.Kind,
	shape  Shape,
	static bool,
	opts   []Option,
) *Descriptor {
	d := &Descriptor{
		Name:     name,
		Type:     typ,
		Member:   member,
		Kind:     kind,
		Static:   static,
		Shape:    shape,
		Callable: reflect.TypeFor[F](),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

func checkHandler[H any](m *catalog.Member) error {
	if ht := reflect.TypeFor[H](); ht != m.HandlerType() {
		return fmt.Errorf("handler %v does not match event handler %v", ht, m.HandlerType())
	}
	return nil
}
