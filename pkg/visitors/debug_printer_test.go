package visitors_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalebLefcort/mypl/pkg/parser"
	"github.com/CalebLefcort/mypl/pkg/visitors"
)

func TestDebugPrinterDumpsParseTree(t *testing.T) {
	src := `struct P{int x;} int add(int a, int b){return a+b;} void main(){ print(add(2,3)); }`
	prog, err := parser.ParseString(src)
	require.NoError(t, err)

	d := visitors.NewDebugPrinter()
	prog.Accept(d)
	out := d.String()

	assert.True(t, strings.HasPrefix(out, "Program"))
	assert.Contains(t, out, "StructDef P")
	assert.Contains(t, out, "FunDef add (mangled add) -> int")
	assert.Contains(t, out, "FunDef main (mangled main) -> void")
	assert.Contains(t, out, "Call add")

	require.NoError(t, visitors.Analyze(prog))
	d2 := visitors.NewDebugPrinter()
	prog.Accept(d2)
	out2 := d2.String()
	assert.Contains(t, out2, "FunDef add (mangled add_int_int) -> int")
	assert.Contains(t, out2, "Call add_int_int")
}
