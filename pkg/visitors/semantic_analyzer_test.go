package visitors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalebLefcort/mypl/pkg/parser"
	"github.com/CalebLefcort/mypl/pkg/visitors"
)

func analyze(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.ParseString(src)
	require.NoError(t, err)
	return visitors.Analyze(prog)
}

func TestValidProgramAnalyzes(t *testing.T) {
	err := analyze(t, `int add(int a, int b){return a+b;} void main(){ print(add(2,3)); }`)
	assert.NoError(t, err)
}

func TestOverloadResolutionByArgType(t *testing.T) {
	src := `int f(int x){return x;} int f(string s){return length(s);} void main(){print(f(4)); print(f("abc"));}`
	err := analyze(t, src)
	assert.NoError(t, err)
}

func TestMissingMainIsStaticError(t *testing.T) {
	err := analyze(t, `int f(){return 1;}`)
	require.Error(t, err)
}

func TestDuplicateStructNameIsStaticError(t *testing.T) {
	err := analyze(t, `struct P{int x;} struct P{int y;} void main(){}`)
	require.Error(t, err)
}

func TestRedefiningBuiltinIsStaticError(t *testing.T) {
	err := analyze(t, `void print(int x){} void main(){}`)
	require.Error(t, err)
}

func TestCallingUndefinedFunctionIsStaticError(t *testing.T) {
	err := analyze(t, `void main(){ nope(); }`)
	require.Error(t, err)
}

func TestReturningWrongTypeIsStaticError(t *testing.T) {
	err := analyze(t, `int f(){ return "x"; } void main(){}`)
	require.Error(t, err)
}

func TestIndexingNonArrayIsStaticError(t *testing.T) {
	err := analyze(t, `void main(){ int x = 0; print(x[0]); }`)
	require.Error(t, err)
}

func TestAccessingAbsentFieldIsStaticError(t *testing.T) {
	err := analyze(t, `struct P{int x;} void main(){ P p = new P(1); print(p.y); }`)
	require.Error(t, err)
}

func TestNullUnifiesWithAnyAssignment(t *testing.T) {
	err := analyze(t, `struct P{int x;} void main(){ P p = null; }`)
	assert.NoError(t, err)
}

func TestStructFieldOrderAndArrayOfStruct(t *testing.T) {
	src := `struct P{int x; int y;} void main(){ P p = new P(7,9); print(p.y); array P ps = new P[2]; ps[0] = p; print(ps[0].y); }`
	err := analyze(t, src)
	assert.NoError(t, err)
}

// TestNotAppliesToCombinedResultType verifies "not" scopes over the whole
// binary expression (not (a==b)), matching the parser's right-leaning
// {Not, First, Op, Rest} tree and the codegen's NOT-after-the-op emission,
// rather than over the First term alone.
func TestNotAppliesToCombinedResultType(t *testing.T) {
	src := `void main(){ int a = 1; int b = 2; bool c = not a == b; print(c); }`
	err := analyze(t, src)
	assert.NoError(t, err)
}
