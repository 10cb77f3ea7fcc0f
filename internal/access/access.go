// Package access is the low-level accessor layer used to reach members
// a host does not export. It works on raw addresses and field offsets,
// so nothing outside the binding machinery should call it directly:
// consumers only ever see the typed callables built on top of it.
package access

import (
	"errors"
	"reflect"
	"unsafe"
)

var (
	// ErrNilReceiver is returned when a field is read through a nil pointer.
	ErrNilReceiver = errors.New("access: nil receiver")

	// ErrNotStruct is returned when the receiver is not a struct pointer.
	ErrNotStruct = errors.New("access: receiver is not a pointer to struct")
)

// Field returns a settable view of the field at index inside the
// struct addressed by ptr, unexported fields included.
func Field(ptr reflect.Value, index []int) (reflect.Value, error) {
	if ptr.Kind() != reflect.Ptr {
		return reflect.Value{}, ErrNotStruct
	}
	if ptr.IsNil() {
		return reflect.Value{}, ErrNilReceiver
	}
	elem := ptr.Elem()
	if elem.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotStruct
	}
	f, err := elem.FieldByIndexErr(index)
	if err != nil {
		return reflect.Value{}, err
	}
	return Settable(f), nil
}

// Settable exposes an addressable v for writing even when it was
// reached through an unexported field.
func Settable(v reflect.Value) reflect.Value {
	if v.CanSet() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

// Offset computes the byte offset of the field at index from the start
// of typ. ok is false when the path dereferences an embedded pointer,
// since the field then has no fixed position.
func Offset(typ reflect.Type, index []int) (offset uintptr, ok bool) {
	for i, idx := range index {
		if typ.Kind() != reflect.Struct {
			return 0, false
		}
		f := typ.Field(idx)
		offset += f.Offset
		typ = f.Type
		if i < len(index)-1 && typ.Kind() == reflect.Ptr {
			return 0, false
		}
	}
	return offset, true
}

// Get reads the T stored offset bytes past the address held by r.
// R must be a pointer type.
func Get[R, T any](r R, offset uintptr) T {
	return *(*T)(unsafe.Add(base(r), offset))
}

// Set writes v offset bytes past the address held by r.
// R must be a pointer type.
func Set[R, T any](r R, offset uintptr, v T) {
	*(*T)(unsafe.Add(base(r), offset)) = v
}

func base[R any](r R) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&r))
}

// FuncIdentity returns the closure word of the func stored in the
// addressable value v. Func values compare equal by identity only
// when they are the very same closure.
func FuncIdentity(v reflect.Value) uintptr {
	if v.Kind() != reflect.Func || !v.CanAddr() {
		return 0
	}
	return *(*uintptr)(unsafe.Pointer(v.UnsafeAddr()))
}
