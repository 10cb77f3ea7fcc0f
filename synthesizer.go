package reflected

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/miruken-go/reflected/catalog"
	"github.com/miruken-go/reflected/internal"
	"github.com/miruken-go/reflected/internal/access"
)

type (
	// Synthesizer builds the callables installed for resolved members.
	// Direct bindings are preferred and reflection is used only when
	// the declared callable differs from the member's own shape.
	Synthesizer struct{}

	// Callable is a synthesized binding.
	Callable struct {
		Shape    Shape
		Strategy Strategy
		Value    any
		Member   *catalog.Member
	}

	// converter adapts a declared argument to a member parameter.
	converter func(reflect.Value) reflect.Value
)

var callType = reflect.TypeFor[Call]()

// Synthesize builds the callable d declares for member m.
func (s *Synthesizer) Synthesize(
	m *catalog.Member,
	d *Descriptor,
) (Callable, error) {
	if !d.Shape.Accepts(m.Kind()) {
		return Callable{}, s.fail(m, d, fmt.Errorf("%v cannot bind a %v", d.Shape, m.Kind()))
	}
	if direct := d.direct; direct != nil {
		if fn, ok := direct(m); ok {
			return Callable{d.Shape, Direct, fn, m}, nil
		}
	}
	var (
		fn       any
		strategy = Dynamic
		err      error
	)
	switch d.Shape {
	case GetterShape:
		fn, err = s.getter(m, d.Callable)
	case SetterShape:
		fn, err = s.setter(m, d.Callable)
	case InvokerShape:
		fn, strategy, err = s.invoker(m, d.Callable)
	case MemberInfoShape:
		fn, strategy = func() *catalog.Member { return m }, Direct
	case EventShape:
		if d.event == nil {
			err = errors.New("no event adapter declared")
		} else {
			fn, err = d.event(&eventSource{member: m})
		}
	}
	if err != nil {
		return Callable{}, s.fail(m, d, err)
	}
	return Callable{d.Shape, strategy, fn, m}, nil
}

func (s *Synthesizer) fail(
	m      *catalog.Member,
	d      *Descriptor,
	reason error,
) error {
	return &SynthesisError{Binding: d.Identity(), Member: m, Reason: reason}
}

func (s *Synthesizer) getter(
	m  *catalog.Member,
	ct reflect.Type,
) (any, error) {
	if !m.Readable() {
		return nil, errors.New("member is not readable")
	}
	if out := ct.Out(0); !m.Type().AssignableTo(out) {
		return nil, fmt.Errorf("%v is not assignable to %v", m.Type(), out)
	}
	if m.Static() {
		switch m.Kind() {
		case catalog.Field:
			v := m.Var()
			return reflect.MakeFunc(ct, func([]reflect.Value) []reflect.Value {
				return []reflect.Value{v}
			}).Interface(), nil
		default:
			get := m.Getter()
			return reflect.MakeFunc(ct, func([]reflect.Value) []reflect.Value {
				return get.Call(nil)
			}).Interface(), nil
		}
	}
	recv, err := receiverOf(ct.In(0), m.Owner(), false)
	if err != nil {
		return nil, err
	}
	switch m.Kind() {
	case catalog.Field:
		index := m.Index()
		return reflect.MakeFunc(ct, func(args []reflect.Value) []reflect.Value {
			f, err := access.Field(recv(args[0]), index)
			if err != nil {
				panic(fmt.Errorf("get %v: %w", m, err))
			}
			return []reflect.Value{f}
		}).Interface(), nil
	default:
		get := m.Getter()
		return reflect.MakeFunc(ct, func(args []reflect.Value) []reflect.Value {
			return get.Call([]reflect.Value{recv(args[0])})
		}).Interface(), nil
	}
}

func (s *Synthesizer) setter(
	m  *catalog.Member,
	ct reflect.Type,
) (any, error) {
	if !m.Writable() {
		return nil, errors.New("member is read-only")
	}
	conv, err := convert(ct.In(ct.NumIn()-1), m.Type())
	if err != nil {
		return nil, err
	}
	if m.Static() {
		switch m.Kind() {
		case catalog.Field:
			v := m.Var()
			return reflect.MakeFunc(ct, func(args []reflect.Value) []reflect.Value {
				v.Set(conv(args[0]))
				return nil
			}).Interface(), nil
		default:
			set := m.Setter()
			return reflect.MakeFunc(ct, func(args []reflect.Value) []reflect.Value {
				return set.Call([]reflect.Value{conv(args[0])})
			}).Interface(), nil
		}
	}
	recv, err := receiverOf(ct.In(0), m.Owner(), true)
	if err != nil {
		return nil, err
	}
	switch m.Kind() {
	case catalog.Field:
		index := m.Index()
		return reflect.MakeFunc(ct, func(args []reflect.Value) []reflect.Value {
			f, err := access.Field(recv(args[0]), index)
			if err != nil {
				panic(fmt.Errorf("set %v: %w", m, err))
			}
			f.Set(conv(args[1]))
			return nil
		}).Interface(), nil
	default:
		set := m.Setter()
		return reflect.MakeFunc(ct, func(args []reflect.Value) []reflect.Value {
			return set.Call([]reflect.Value{recv(args[0]), conv(args[1])})
		}).Interface(), nil
	}
}

func (s *Synthesizer) invoker(
	m  *catalog.Member,
	ct reflect.Type,
) (any, Strategy, error) {
	fn := m.Func()
	if !m.Static() && ct != callType && ct.NumIn() > 0 && ct.In(0) == m.Owner().Reflect() {
		method, ok := m.ValueMethod()
		if !ok {
			return nil, Dynamic, fmt.Errorf("%v requires a pointer receiver", m.Name())
		}
		fn = method.Func
	}
	ft := fn.Type()
	if ct == ft {
		return fn.Interface(), Direct, nil
	}
	if ct == callType {
		return boxed(m, fn), Dynamic, nil
	}
	if ct.NumIn() != ft.NumIn() || ct.IsVariadic() != ft.IsVariadic() {
		return nil, Dynamic, fmt.Errorf("%v does not match %v", ct, ft)
	}
	params := make([]converter, ct.NumIn())
	for i := range params {
		conv, err := convert(ct.In(i), ft.In(i))
		if err != nil {
			return nil, Dynamic, fmt.Errorf("parameter %d: %w", i, err)
		}
		params[i] = conv
	}
	results, err := adaptResults(m, ct, ft)
	if err != nil {
		return nil, Dynamic, err
	}
	variadic := ft.IsVariadic()
	return reflect.MakeFunc(ct, func(args []reflect.Value) []reflect.Value {
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			in[i] = params[i](arg)
		}
		if variadic {
			return results(fn.CallSlice(in))
		}
		return results(fn.Call(in))
	}).Interface(), Dynamic, nil
}

// adaptResults checks the member results can satisfy the declared
// ones. Constructors may also be declared to return a pointer when
// they return a value, or an error they do not produce.
func adaptResults(
	m  *catalog.Member,
	ct reflect.Type,
	ft reflect.Type,
) (func([]reflect.Value) []reflect.Value, error) {
	pad := ct.NumOut() - ft.NumOut()
	ctor := m.Kind() == catalog.Constructor
	if pad != 0 && !(ctor && pad == 1 && ct.Out(ct.NumOut()-1) == internal.ErrorType) {
		return nil, fmt.Errorf("%v does not match %v", ct, ft)
	}
	var wrap bool
	for i := 0; i < ft.NumOut(); i++ {
		if out := ft.Out(i); !out.AssignableTo(ct.Out(i)) {
			if ctor && i == 0 && ct.Out(0) == reflect.PointerTo(out) {
				wrap = true
				continue
			}
			return nil, fmt.Errorf("result %d: %v is not assignable to %v", i, out, ct.Out(i))
		}
	}
	if !wrap && pad == 0 {
		return func(out []reflect.Value) []reflect.Value { return out }, nil
	}
	return func(out []reflect.Value) []reflect.Value {
		if wrap {
			p := reflect.New(out[0].Type())
			p.Elem().Set(out[0])
			out[0] = p
		}
		if pad > 0 {
			out = append(out, reflect.Zero(internal.ErrorType))
		}
		return out
	}, nil
}

// boxed adapts fn to the universal Call shape.
func boxed(m *catalog.Member, fn reflect.Value) Call {
	ft := fn.Type()
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
	}
	errResult := ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == internal.ErrorType
	return func(args ...any) (results []any, err error) {
		if len(args) < fixed || (!ft.IsVariadic() && len(args) > fixed) {
			return nil, fmt.Errorf("%v expects %d arguments, received %d", m, ft.NumIn(), len(args))
		}
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			pt := paramType(ft, i)
			if arg == nil {
				if !internal.Nillable(pt) {
					return nil, fmt.Errorf("%v argument %d: %v cannot be nil", m, i, pt)
				}
				in[i] = reflect.Zero(pt)
				continue
			}
			v := reflect.ValueOf(arg)
			if !v.Type().AssignableTo(pt) {
				return nil, fmt.Errorf("%v argument %d: %v is not assignable to %v", m, i, v.Type(), pt)
			}
			in[i] = v
		}
		defer func() {
			if r := recover(); r != nil {
				results, err = nil, fmt.Errorf("%v panicked: %v", m, r)
			}
		}()
		out := fn.Call(in)
		if errResult {
			last := out[len(out)-1]
			out = out[:len(out)-1]
			if !last.IsNil() {
				err = last.Interface().(error)
			}
		}
		results = make([]any, len(out))
		for i, o := range out {
			results[i] = o.Interface()
		}
		return results, err
	}
}

func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}

// convert returns a converter from declared type from to member
// type to. Interface typed arguments are unboxed on each call.
func convert(from, to reflect.Type) (converter, error) {
	if from.AssignableTo(to) {
		return func(v reflect.Value) reflect.Value { return v }, nil
	}
	if from.Kind() != reflect.Interface || !to.Implements(from) {
		return nil, fmt.Errorf("%v is not assignable to %v", from, to)
	}
	return func(v reflect.Value) reflect.Value {
		if e := v.Elem(); !e.IsValid() {
			return reflect.Zero(to)
		} else if e.Type().AssignableTo(to) {
			return e
		} else {
			panic(fmt.Errorf("%v is not assignable to %v", e.Type(), to))
		}
	}, nil
}

// receiverOf adapts a declared receiver to a pointer to owner.
// Value receivers are copied so they can only be read.
func receiverOf(
	declared reflect.Type,
	owner    *catalog.Type,
	write    bool,
) (converter, error) {
	typ := owner.Reflect()
	ptr := reflect.PointerTo(typ)
	copyOf := func(v reflect.Value) reflect.Value {
		p := reflect.New(typ)
		p.Elem().Set(v)
		return p
	}
	switch {
	case declared == ptr:
		return func(v reflect.Value) reflect.Value { return v }, nil
	case declared == typ:
		if write {
			return nil, fmt.Errorf("receiver %v must be a pointer to be written", declared)
		}
		return copyOf, nil
	case declared.Kind() == reflect.Interface && ptr.Implements(declared):
		return func(v reflect.Value) reflect.Value {
			switch e := v.Elem(); {
			case !e.IsValid():
				panic(fmt.Errorf("nil receiver for %v", typ))
			case e.Type() == ptr:
				return e
			case e.Type() == typ && !write:
				return copyOf(e)
			default:
				panic(fmt.Errorf("receiver %v is not a %v", e.Type(), ptr))
			}
		}, nil
	}
	return nil, fmt.Errorf("receiver %v does not match %v", declared, ptr)
}

func checkReceiver(
	declared reflect.Type,
	owner    *catalog.Type,
	write    bool,
) error {
	_, err := receiverOf(declared, owner, write)
	return err
}
