package lower_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cthulhu-project/cthulhu/internal/cookie"
	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/digit"
	"github.com/cthulhu-project/cthulhu/internal/lower"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/ssa"
	"github.com/cthulhu-project/cthulhu/internal/tree"
	"github.com/cthulhu-project/cthulhu/internal/types"
)

// TestScenarioCycle covers spec scenario 3: two globals a = b + 1, b = a + 1.
// resolve must emit exactly one CyclicDependency diagnostic naming both, and
// both symbols must lower to nothing.
func TestScenarioCycle(t *testing.T) {
	reg := types.NewRegistry()
	intType := reg.Digit(digit.Signed, digit.Int)
	sink := diag.NewSink()
	c := cookie.New(sink)

	var aDecl, bDecl *tree.Decl
	aSpan := source.Span{Handle: source.NewHandle("a.demo", "demo", nil), FirstLine: 1}
	bSpan := source.Span{Handle: source.NewHandle("b.demo", "demo", nil), FirstLine: 1}

	aDecl = tree.NewDecl(tree.NewForward(tree.KindGlobal, func(ctx tree.ResolutionContext) tree.Node {
		bResolved := ctx.Resolve(bDecl)
		if tree.IsError(bResolved) {
			return bResolved
		}
		one := tree.NewDigitLiteral(sink, aSpan, intType, digit.FromInt64(1))
		return tree.NewGlobal(aSpan, intType, "a", &tree.Binary{Op: tree.BinaryAdd, LHS: &tree.Name{Ref: bDecl}, RHS: one})
	}))
	bDecl = tree.NewDecl(tree.NewForward(tree.KindGlobal, func(ctx tree.ResolutionContext) tree.Node {
		aResolved := ctx.Resolve(aDecl)
		if tree.IsError(aResolved) {
			return aResolved
		}
		one := tree.NewDigitLiteral(sink, bSpan, intType, digit.FromInt64(1))
		return tree.NewGlobal(bSpan, intType, "b", &tree.Binary{Op: tree.BinaryAdd, LHS: &tree.Name{Ref: aDecl}, RHS: one})
	}))

	mod := tree.NewModule("m", nil, 0)
	mod.AddDecl(tree.TagValues, "a", aDecl)
	mod.AddDecl(tree.TagValues, "b", bDecl)

	c.Resolve(aDecl)

	require.Equal(t, 1, sink.Count(diag.Error), "exactly one CyclicDependency diagnostic")
	require.Equal(t, tree.ErrCyclicDependency, sink.Messages()[0].Code)
	require.True(t, tree.IsError(aDecl.Current()), "a ends as Error")
	require.True(t, tree.IsError(bDecl.Current()), "b ends as Error")

	l := lower.New(sink)
	out := l.LowerAll(map[string]*tree.Module{"m": mod})
	_, aOK := out["m::a"]
	_, bOK := out["m::b"]
	require.False(t, aOK, "lower emits no SSA for a")
	require.False(t, bOK, "lower emits no SSA for b")
}

// TestScenarioIfElseReturnNoJoinBlock covers spec scenario 4 exactly: both
// arms end in their own Return, so no join block is ever created.
func TestScenarioIfElseReturnNoJoinBlock(t *testing.T) {
	reg := types.NewRegistry()
	intType := reg.Digit(digit.Signed, digit.Int)
	closureType := reg.Closure([]types.Field{{Name: "x", Type: intType}}, intType, false)

	param := tree.NewParam(source.Builtin, intType, "x")
	paramDecl := tree.NewDecl(param)

	zero := tree.NewDigitLiteral(diag.NewSink(), source.Builtin, intType, digit.FromInt64(0))
	one := tree.NewDigitLiteral(diag.NewSink(), source.Builtin, intType, digit.FromInt64(1))
	two := tree.NewDigitLiteral(diag.NewSink(), source.Builtin, intType, digit.FromInt64(2))

	cond := &tree.Compare{Op: tree.CompareEq, LHS: &tree.Name{Ref: paramDecl}, RHS: zero}
	branch := &tree.Branch{
		Cond: cond,
		Then: &tree.Return{Value: one},
		Else: &tree.Return{Value: two},
	}
	fn := tree.NewFunction(source.Builtin, closureType, "f", []*tree.Decl{paramDecl}, nil, branch)

	mod := tree.NewModule("m", nil, 0)
	mod.Add(tree.TagProcs, "f", fn)

	l := lower.New(diag.NewSink())
	out := l.LowerAll(map[string]*tree.Module{"m": mod})

	sym := out["m::f"]
	require.Len(t, sym.Blocks, 3, "entry, then, else — no join block when both arms terminate")

	entry := sym.Blocks[0]
	entryTerm := entry.Terminator()
	require.NotNil(t, entryTerm)
	require.Equal(t, ssa.OpBranch, entryTerm.Opcode)

	thenBB := entryTerm.Then.Block
	elseBB := entryTerm.Else.Block
	require.Equal(t, ssa.OpReturn, thenBB.Terminator().Opcode)
	require.Equal(t, int64(1), thenBB.Terminator().ReturnValue.Imm.Digit.Int().Int64())
	require.Equal(t, ssa.OpReturn, elseBB.Terminator().Opcode)
	require.Equal(t, int64(2), elseBB.Terminator().ReturnValue.Imm.Digit.Int().Int64())
}

// TestScenarioCrossModuleReference covers spec scenario 6: module m2's
// global initializer names m1's exported global directly, and resolution
// makes both references point at the same tree node.
func TestScenarioCrossModuleReference(t *testing.T) {
	reg := types.NewRegistry()
	intType := reg.Digit(digit.Signed, digit.Int)
	sink := diag.NewSink()

	lit := tree.NewDigitLiteral(sink, source.Builtin, intType, digit.FromInt64(9))
	k := tree.NewGlobal(source.Builtin, intType, "k", lit)
	kDecl := tree.NewDecl(k)

	m1 := tree.NewModule("m1", nil, 0)
	m1.AddDecl(tree.TagValues, "k", kDecl)

	k2 := tree.NewGlobal(source.Builtin, intType, "k2", &tree.Name{Ref: kDecl})
	m2 := tree.NewModule("m2", nil, 0)
	m2.Add(tree.TagValues, "k2", k2)

	l := lower.New(sink)
	out := l.LowerAll(map[string]*tree.Module{"m1": m1, "m2": m2})

	k2Sym, ok := out["m2::k2"]
	require.True(t, ok)
	require.Nil(t, k2Sym.Value, "k's value isn't folded through automatically")
	require.NotNil(t, k2Sym.Entry)
	require.Equal(t, ssa.OpLoad, k2Sym.Entry.Steps[0].Opcode)
	require.Equal(t, "m1::k", k2Sym.Entry.Steps[0].Operand.Global.Name)
}
