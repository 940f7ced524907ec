package codegen_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalebLefcort/mypl/pkg/codegen"
	"github.com/CalebLefcort/mypl/pkg/parser"
	"github.com/CalebLefcort/mypl/pkg/visitors"
	"github.com/CalebLefcort/mypl/pkg/vm"
)

// run parses, analyzes, generates, and executes src, returning stdout.
func run(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.ParseString(src)
	require.NoError(t, err)
	require.NoError(t, visitors.Analyze(prog))

	templates := codegen.New(prog).Generate(prog)
	m := vm.New(templates)

	var out bytes.Buffer
	m.Stdout = &out
	require.NoError(t, m.Run())
	return out.String()
}

func TestPrintHelloWorldEndToEnd(t *testing.T) {
	out := run(t, `void main(){ print("hi"); }`)
	assert.Equal(t, "hi", out)
}

func TestAddFunctionCallEndToEnd(t *testing.T) {
	out := run(t, `int add(int a, int b){ return a+b; } void main(){ print(add(2,3)); }`)
	assert.Equal(t, "5", out)
}

func TestOverloadedFunctionsEndToEnd(t *testing.T) {
	src := `
		int f(int x){ return x+1; }
		int f(string s){ return length(s); }
		void main(){ print(f(4)); print(" "); print(f("abcd")); }
	`
	out := run(t, src)
	assert.Equal(t, "5 4", out)
}

func TestArrayEndToEnd(t *testing.T) {
	src := `
		void main(){
			array int xs = new int[3];
			xs[0] = 10;
			xs[1] = 20;
			xs[2] = xs[0] + xs[1];
			print(xs[2]);
		}
	`
	out := run(t, src)
	assert.Equal(t, "30", out)
}

func TestStructEndToEnd(t *testing.T) {
	src := `
		struct Point { int x; int y; }
		void main(){
			Point p = new Point(3, 4);
			print(p.x + p.y);
		}
	`
	out := run(t, src)
	assert.Equal(t, "7", out)
}

func TestWhileLoopEndToEnd(t *testing.T) {
	src := `
		void main(){
			int i = 0;
			int total = 0;
			while (i < 5) {
				total = total + i;
				i = i + 1;
			}
			print(total);
		}
	`
	out := run(t, src)
	assert.Equal(t, "10", out)
}

func TestIfElseIfElseEndToEnd(t *testing.T) {
	src := `
		void classify(int n){
			if (n > 0) {
				print("pos");
			} elseif (n < 0) {
				print("neg");
			} else {
				print("zero");
			}
		}
		void main(){ classify(5); classify(0 - 5); classify(0); }
	`
	out := run(t, src)
	assert.Equal(t, "posnegzero", out)
}

func TestForLoopEndToEnd(t *testing.T) {
	src := `
		void main(){
			int total = 0;
			for (int i = 0; i < 4; i = i + 1) {
				total = total + i;
			}
			print(total);
		}
	`
	out := run(t, src)
	assert.Equal(t, "6", out)
}
