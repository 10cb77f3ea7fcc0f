package slices

import (
	"fmt"
)

// Contains checks for the existence of v in s.
func Contains[E comparable](s []E, v E) bool {
	for _, s := range s {
		if v == s {
			return true
		}
	}
	return false
}

// ContainsFunc checks for an element of s satisfying f.
func ContainsFunc[E any](s []E, f func(E) bool) bool {
	for _, e := range s {
		if f(e) {
			return true
		}
	}
	return false
}

type MapFunc[IN, OUT any] interface {
	~func(int, IN) OUT | ~func(IN) OUT
}

// Map turns a []IN to a []OUT using a mapping function.
// This function has two type parameters, IN and OUT.
// This works with slices of any type.
func Map[IN, OUT any, F MapFunc[IN, OUT]](in []IN, fun F) []OUT {
	if in == nil {
		return nil
	}
	if len(in) == 0 {
		var out []OUT
		return out
	}
	f := func(i int, item IN) OUT {
		switch typ := any(fun).(type) {
		case func(int, IN) OUT:
			return typ(i, item)
		case func(IN) OUT:
			return typ(item)
		}
		panic(fmt.Sprintf("unrecognized Map function type %T", fun))
	}
	out := make([]OUT, len(in))
	for i, item := range in {
		out[i] = f(i, item)
	}
	return out
}

type FilterFunc[IN any] interface {
	~func(int, IN) bool | ~func(IN) bool
}

// Filter filters values from a slice using a filter function.
// Build returns a new slice with only the elements of s
// for which f returned true.
func Filter[IN any, F FilterFunc[IN]](in []IN, fun F) []IN {
	var out []IN
	if len(in) == 0 {
		return in
	}
	f := func(i int, item IN) bool {
		switch typ := any(fun).(type) {
		case func(int, IN) bool:
			return typ(i, item)
		case func(IN) bool:
			return typ(item)
		default:
			panic(fmt.Sprintf("unrecognized Filter function type %T", fun))
		}
	}
	for i, item := range in {
		if f(i, item) {
			out = append(out, item)
		}
	}
	return out
}
