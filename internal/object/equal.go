package object

import "reflect"

// StrictEqual reports whether a and b are the same value without any
// coercion: both must have the same dynamic type, comparable values must be
// ==, and non-comparable values (slices, maps) must share identity.
// Pointers, including *Function and *Object, compare by identity.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		// Interface-typed fields inside structs may still hold
		// non-comparable values; treat a panic as "not equal".
		return safeEqual(a, b)
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		if va.Len() != vb.Len() {
			return false
		}
		if va.Len() == 0 {
			return va.IsNil() == vb.IsNil()
		}
		return va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}

func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
