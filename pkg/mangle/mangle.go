// Package mangle implements the name-mangling formula of spec.md §3,
// shared by pkg/visitors (which computes a FunDef's declared mangled id
// and a call site's candidate id) and pkg/codegen (which keys
// vm.FrameTemplate by the same id).
package mangle

import "strings"

// ParamType is the minimal shape mangle needs from a parameter or
// argument: its base type-name text and whether it is an array.
type ParamType struct {
	Name    string
	IsArray bool
}

// ID forms mangled_id(f) = name(f) ⊕ "_" ⊕ type(p1) ⊕ ... ⊕ "_" ⊕
// type(pn), each type(pi) suffixed with "array" when the parameter is an
// array. A zero-argument function has no suffix at all.
func ID(name string, params []ParamType) string {
	if len(params) == 0 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	for _, p := range params {
		sb.WriteByte('_')
		sb.WriteString(p.Name)
		if p.IsArray {
			sb.WriteString("array")
		}
	}
	return sb.String()
}

// LengthArrayID forms the reserved built-in id "length_<T>array" used to
// block user redefinition of the length operator over T's array form
// (spec.md §4.3).
func LengthArrayID(typeName string) string {
	return "length_" + typeName + "array"
}
