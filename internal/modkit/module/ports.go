package module

import (
	"fmt"
	"reflect"
)

// PortsOf finds a T in m.Ports(): either the bundle itself or one of its
// exported struct fields
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	if m == nil || m.Ports() == nil {
		return zero, false
	}
	p := m.Ports()
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return zero, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf panics when m does not expose a T
func MustPortsOf[T any](m Module) T {
	if v, ok := PortsOf[T](m); ok {
		return v
	}
	var zero T
	panic(fmt.Sprintf("module %s: no port of type %T", m.Name(), &zero))
}
