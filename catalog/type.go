package catalog

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/miruken-go/reflected/internal"
)

// Type describes a host type and the members it exposes.
type Type struct {
	typ     reflect.Type
	module  *Module
	statics []*Member
	info    *Member
	once    sync.Once
	members []*Member
}

// TypeOf returns a new Type describing T.
func TypeOf[T any]() *Type {
	return Of(reflect.TypeFor[T]())
}

// Of returns a new Type describing typ.
// Pointer types are reduced to the named type they point to.
func Of(typ reflect.Type) *Type {
	if typ = internal.Indirect(typ); typ == nil {
		panic("type cannot be nil")
	}
	if typ.Name() == "" {
		panic(fmt.Errorf("type %v is not a named type", typ))
	}
	t := &Type{typ: typ}
	t.info = &Member{kind: TypeInfo, name: typ.Name(), owner: t, static: true, typ: typ}
	return t
}

// Name returns the unqualified type name.
func (t *Type) Name() string {
	return t.typ.Name()
}

func (t *Type) PkgPath() string {
	return t.typ.PkgPath()
}

// FullName returns the type name qualified by its full package path.
func (t *Type) FullName() string {
	if pkg := t.typ.PkgPath(); pkg != "" {
		return pkg + "." + t.typ.Name()
	}
	return t.typ.Name()
}

// Reflect returns the underlying reflect.Type.
func (t *Type) Reflect() reflect.Type {
	return t.typ
}

func (t *Type) Module() *Module {
	return t.module
}

// Matches reports whether name refers to the type, either by its
// full name, its package qualified name or its unqualified name.
func (t *Type) Matches(name string) bool {
	return name == t.FullName() || name == t.typ.String() || name == t.typ.Name()
}

// Info returns the TypeInfo member describing the type itself.
func (t *Type) Info() *Member {
	return t.info
}

// StaticField registers the package level variable ptr points to.
func (t *Type) StaticField(name string, ptr any) *Type {
	v := t.variable(name, ptr)
	return t.addStatic(&Member{
		kind: Field, name: name, owner: t, static: true,
		typ: v.Type(), value: v,
	})
}

// StaticProperty registers a package level property from its
// accessors. Either get or set may be nil but not both.
func (t *Type) StaticProperty(name string, get, set any) *Type {
	m := &Member{kind: Property, name: name, owner: t, static: true}
	if get != nil {
		g := reflect.ValueOf(get)
		gt := g.Type()
		if gt.Kind() != reflect.Func || gt.NumIn() != 0 || gt.NumOut() != 1 {
			panic(fmt.Errorf("property %v.%v getter must be func() V, found %v", t, name, gt))
		}
		m.getter, m.typ = g, gt.Out(0)
	}
	if set != nil {
		s := reflect.ValueOf(set)
		st := s.Type()
		if st.Kind() != reflect.Func || st.NumIn() != 1 || st.NumOut() != 0 {
			panic(fmt.Errorf("property %v.%v setter must be func(V), found %v", t, name, st))
		}
		if m.typ != nil && st.In(0) != m.typ {
			panic(fmt.Errorf("property %v.%v setter type %v does not match getter %v",
				t, name, st.In(0), m.typ))
		}
		m.setter, m.typ = s, st.In(0)
	}
	if m.typ == nil {
		panic(fmt.Errorf("property %v.%v requires a getter or setter", t, name))
	}
	return t.addStatic(m)
}

// StaticMethod registers a package level function.
// Registering the same name more than once declares overloads.
func (t *Type) StaticMethod(name string, fn any) *Type {
	v := t.function(name, fn)
	return t.addStatic(&Member{
		kind: Method, name: name, owner: t, static: true,
		typ: v.Type(), value: v,
	})
}

// Constructor registers fn as a way to create the type.
// fn must return the type or a pointer to it, optionally
// followed by an error. Unexported constructors are allowed.
func (t *Type) Constructor(fn any) *Type {
	v := t.function("constructor", fn)
	ft := v.Type()
	if ft.NumOut() == 0 || ft.NumOut() > 2 || internal.Indirect(ft.Out(0)) != t.typ ||
		(ft.NumOut() == 2 && ft.Out(1) != internal.ErrorType) {
		panic(fmt.Errorf("constructor of %v must return %v or *%v and an optional error, found %v",
			t, t.typ, t.typ, ft))
	}
	return t.addStatic(&Member{
		kind: Constructor, name: funcName(v), owner: t, static: true,
		typ: ft, value: v,
	})
}

// StaticEvent registers the package level handler variable ptr
// points to. The variable must be a func or a slice of funcs.
func (t *Type) StaticEvent(name string, ptr any) *Type {
	v := t.variable(name, ptr)
	if !isEventType(v.Type()) {
		panic(fmt.Errorf("event %v.%v must be a func or []func, found %v", t, name, v.Type()))
	}
	return t.addStatic(&Member{
		kind: Event, name: name, owner: t, static: true,
		typ: v.Type(), value: v,
	})
}

// Members returns every member of the type, statics first
// in registration order followed by instance members.
func (t *Type) Members() []*Member {
	t.once.Do(t.reflectMembers)
	all := make([]*Member, 0, len(t.statics)+len(t.members))
	return append(append(all, t.statics...), t.members...)
}

// Lookup returns the members of kind named name in declaration order.
// Constructors match any name when name is empty, as does TypeInfo.
func (t *Type) Lookup(kind Kind, name string) []*Member {
	if kind == TypeInfo {
		if name == "" || t.Matches(name) {
			return []*Member{t.info}
		}
		return nil
	}
	var found []*Member
	for _, m := range t.Members() {
		if m.kind == kind && (m.name == name || (kind == Constructor && name == "")) {
			found = append(found, m)
		}
	}
	return found
}

func (t *Type) String() string {
	return t.typ.String()
}

func (t *Type) addStatic(m *Member) *Type {
	t.statics = append(t.statics, m)
	return t
}

func (t *Type) variable(name string, ptr any) reflect.Value {
	if name == "" {
		panic(fmt.Errorf("static member of %v requires a name", t))
	}
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic(fmt.Errorf("static %v.%v must be a non-nil pointer, found %T", t, name, ptr))
	}
	return v.Elem()
}

func (t *Type) function(name string, fn any) reflect.Value {
	if name == "" {
		panic(fmt.Errorf("static member of %v requires a name", t))
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Errorf("%v.%v must be a non-nil func, found %T", t, name, fn))
	}
	return v
}

// reflectMembers discovers the instance members of the type.
func (t *Type) reflectMembers() {
	typ := t.typ
	if typ.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(typ) {
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				continue
			}
			if isEventType(f.Type) {
				t.members = append(t.members, &Member{
					kind: Event, name: f.Name, owner: t, typ: f.Type, index: f.Index,
				})
			}
			t.members = append(t.members, &Member{
				kind: Field, name: f.Name, owner: t, typ: f.Type, index: f.Index,
			})
		}
	}
	ptr := reflect.PointerTo(typ)
	props := make(map[string]*Member)
	var order []string
	property := func(name string) *Member {
		if p, ok := props[name]; ok {
			return p
		}
		p := &Member{kind: Property, name: name, owner: t}
		props[name] = p
		order = append(order, name)
		return p
	}
	for i := 0; i < ptr.NumMethod(); i++ {
		method := ptr.Method(i)
		mt := method.Type
		t.members = append(t.members, &Member{
			kind: Method, name: method.Name, owner: t, typ: mt, value: method.Func,
		})
		switch {
		case mt.NumIn() == 1 && mt.NumOut() == 1:
			name := method.Name
			if get, ok := strings.CutPrefix(name, "Get"); ok && get != "" {
				if _, direct := ptr.MethodByName(get); direct {
					continue
				}
				name = get
			}
			if p := property(name); !p.getter.IsValid() {
				p.getter, p.typ = method.Func, mt.Out(0)
			}
		case mt.NumIn() == 2 && mt.NumOut() == 0:
			if set, ok := strings.CutPrefix(method.Name, "Set"); ok && set != "" {
				property(set).setter = method.Func
			}
		}
	}
	for _, name := range order {
		p := props[name]
		if p.setter.IsValid() {
			st := p.setter.Type().In(1)
			if p.typ == nil {
				p.typ = st
			} else if st != p.typ {
				p.setter = reflect.Value{}
			}
		}
		t.members = append(t.members, p)
	}
}

func isEventType(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Func:
		return true
	case reflect.Slice:
		return typ.Elem().Kind() == reflect.Func
	}
	return false
}

func funcName(fn reflect.Value) string {
	if f := runtime.FuncForPC(fn.Pointer()); f != nil {
		name := f.Name()
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	return "constructor"
}
