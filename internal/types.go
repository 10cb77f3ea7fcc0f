package internal

import "reflect"

var ErrorType = reflect.TypeFor[error]()

// IsNil determines if val is nil or a typed nil.
func IsNil(val any) bool {
	if val == nil {
		return true
	}
	v := reflect.ValueOf(val)
	return Nillable(v.Type()) && v.IsNil()
}

// Nillable reports whether values of typ can be nil.
func Nillable(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Map, reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
		return true
	}
	return false
}

// Indirect returns the struct type behind pointer typ.
func Indirect(typ reflect.Type) reflect.Type {
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ
}
