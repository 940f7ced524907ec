package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// builtinFunc implements one built-in's behavior: pop argCount operands
// off the caller's frame (in declared order, since the call protocol has
// already delivered them there) and, if the built-in returns a value,
// push it.
type builtinFunc func(vm *VM, argCount int) error

// builtins is the catalog of spec.md §6, keyed by mangled id. The
// analyzer resolves CallExpr nodes against this same id space (see
// pkg/visitors) so a call site's ResolvedID, once validated, always
// names either a user FrameTemplate or an entry here.
var builtins = map[string]builtinFunc{
	"print_string": printBuiltin,
	"print_int":    printBuiltin,
	"print_double": printBuiltin,
	"print_bool":   printBuiltin,

	"input": func(vm *VM, argCount int) error {
		f := vm.current()
		line, _ := vm.Stdin.ReadString('\n')
		f.push(Str(strings.TrimSpace(line)))
		return nil
	},

	"itos_int": func(vm *VM, argCount int) error {
		f := vm.current()
		v := f.pop()
		f.push(Str(strconv.Itoa(v.I)))
		return nil
	},
	"dtos_double": func(vm *VM, argCount int) error {
		f := vm.current()
		v := f.pop()
		f.push(Str(v.String()))
		return nil
	},
	"itod_int": func(vm *VM, argCount int) error {
		f := vm.current()
		v := f.pop()
		f.push(Double(float64(v.I)))
		return nil
	},
	"dtoi_double": func(vm *VM, argCount int) error {
		f := vm.current()
		v := f.pop()
		f.push(Int(int(v.D)))
		return nil
	},
	"stoi_string": func(vm *VM, argCount int) error {
		f := vm.current()
		v := f.pop()
		n, err := strconv.Atoi(strings.TrimSpace(v.S))
		if err != nil {
			return vm.runtimeErr("stoi: cannot parse %q as int", v.S)
		}
		f.push(Int(n))
		return nil
	},
	"stod_string": func(vm *VM, argCount int) error {
		f := vm.current()
		v := f.pop()
		d, err := strconv.ParseFloat(strings.TrimSpace(v.S), 64)
		if err != nil {
			return vm.runtimeErr("stod: cannot parse %q as double", v.S)
		}
		f.push(Double(d))
		return nil
	},
	"length_string": func(vm *VM, argCount int) error {
		f := vm.current()
		v := f.pop()
		f.push(Int(len([]rune(v.S))))
		return nil
	},
	"get_int_string": func(vm *VM, argCount int) error {
		f := vm.current()
		s := f.pop()
		idx := f.pop()
		runes := []rune(s.S)
		if idx.I < 0 || idx.I >= len(runes) {
			return vm.runtimeErr("get: index %d out of bounds", idx.I)
		}
		f.push(Str(string(runes[idx.I])))
		return nil
	},
}

func printBuiltin(vm *VM, argCount int) error {
	f := vm.current()
	v := f.pop()
	fmt.Fprint(vm.out(), v.String())
	return nil
}

// IsBuiltin reports whether id names any built-in: a catalog entry or a
// per-type "length_Tarray" id. The semantic analyzer uses this to reject
// user function definitions that collide with a built-in id (spec.md
// §4.3) and to resolve call sites (pkg/visitors).
func IsBuiltin(id string) bool {
	if _, ok := builtins[id]; ok {
		return true
	}
	return IsLengthArrayBuiltin(id)
}

// BuiltinType mirrors mangle.ParamType without importing pkg/mangle from
// pkg/vm (which pkg/mangle does not depend on either way, but keeping
// pkg/vm free of upward dependencies on the analysis layer keeps the
// pipeline's dependency direction lexer->parser->analyzer->codegen->vm
// one-way).
type BuiltinType struct {
	Name    string
	IsArray bool
}

// BuiltinReturnType reports the declared return type of a built-in id,
// per the catalog of spec.md §6.
func BuiltinReturnType(id string) (BuiltinType, bool) {
	switch id {
	case "print_string", "print_int", "print_double", "print_bool":
		return BuiltinType{Name: "void"}, true
	case "input", "itos_int", "dtos_double", "get_int_string":
		return BuiltinType{Name: "string"}, true
	case "itod_int", "stod_string":
		return BuiltinType{Name: "double"}, true
	case "dtoi_double", "stoi_string", "length_string":
		return BuiltinType{Name: "int"}, true
	}
	if IsLengthArrayBuiltin(id) {
		return BuiltinType{Name: "int"}, true
	}
	return BuiltinType{}, false
}

// IsLengthArrayBuiltin reports whether id names a per-type array-length
// built-in ("length_Tarray" for base type or struct T), which the
// analyzer's global pass reserves against user redefinition (spec.md
// §4.3) and which this package implements uniformly here rather than
// enumerating one entry per type.
func IsLengthArrayBuiltin(id string) bool {
	return strings.HasSuffix(id, "array") && strings.HasPrefix(id, "length_")
}

// lengthArray is the shared implementation every "length_Tarray" id maps
// to at call time (see VM.call's builtin lookup): array length built-ins
// are dispatched by suffix match (IsLengthArrayBuiltin) rather than one
// map entry per struct/base type, since T ranges over user struct names
// unknown to this package.
func lengthArray(vm *VM, argCount int) error {
	f := vm.current()
	v := f.pop()
	arr, ok := vm.arrayHeap[v.I]
	if !ok {
		return vm.runtimeErr("length: object %d is not an array", v.I)
	}
	f.push(Int(len(arr)))
	return nil
}
