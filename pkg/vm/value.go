package vm

import (
	"strconv"

	"github.com/CalebLefcort/mypl/internal/numformat"
)

// Kind tags the dynamic type of a Value. There is no static typing left
// to enforce at this layer; the semantic analyzer has already checked the
// program, but the VM still distinguishes dynamic kinds for arithmetic
// and equality (spec.md §4.5).
type Kind int

const (
	NullKind Kind = iota
	IntKind
	DoubleKind
	BoolKind
	StringKind
	ObjKind // a struct-heap or array-heap object id
)

// Value is a tagged union over the VM's runtime value space: integer,
// double, boolean, string, null, or an object id referencing the struct
// or array heap.
type Value struct {
	Kind Kind
	I    int
	D    float64
	B    bool
	S    string
}

var Null = Value{Kind: NullKind}

func Int(i int) Value       { return Value{Kind: IntKind, I: i} }
func Double(d float64) Value { return Value{Kind: DoubleKind, D: d} }
func Bool(b bool) Value     { return Value{Kind: BoolKind, B: b} }
func Str(s string) Value    { return Value{Kind: StringKind, S: s} }
func Obj(id int) Value      { return Value{Kind: ObjKind, I: id} }

func (v Value) IsNull() bool { return v.Kind == NullKind }

// String renders a Value with the canonical text WRITE/TOSTR use: null,
// true, false lower-case; doubles via internal/numformat's deterministic
// formatter; everything else verbatim.
func (v Value) String() string {
	switch v.Kind {
	case NullKind:
		return "null"
	case IntKind:
		return strconv.Itoa(v.I)
	case DoubleKind:
		return numformat.Double(v.D)
	case BoolKind:
		if v.B {
			return "true"
		}
		return "false"
	case StringKind:
		return v.S
	case ObjKind:
		return "obj#" + strconv.Itoa(v.I)
	}
	return "?"
}
