package verify_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/digit"
	"github.com/cthulhu-project/cthulhu/internal/lower"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/ssa"
	"github.com/cthulhu-project/cthulhu/internal/tree"
	"github.com/cthulhu-project/cthulhu/internal/types"
	"github.com/cthulhu-project/cthulhu/internal/verify"
)

func TestVerifyAcceptsLoweredIdentityFunction(t *testing.T) {
	reg := types.NewRegistry()
	intType := reg.Digit(digit.Signed, digit.Int)
	closureType := reg.Closure([]types.Field{{Name: "v", Type: intType}}, intType, false)

	param := tree.NewParam(source.Builtin, intType, "v")
	paramDecl := tree.NewDecl(param)
	fn := tree.NewFunction(source.Builtin, closureType, "id",
		[]*tree.Decl{paramDecl}, nil, &tree.Return{Value: &tree.Name{Ref: paramDecl}})

	mod := tree.NewModule("m", nil, 0)
	mod.Add(tree.TagProcs, "id", fn)

	l := lower.New(diag.NewSink())
	out := l.LowerAll(map[string]*tree.Module{"m": mod})

	res := verify.Symbol(out["m::id"])
	require.True(t, res.OK(), "%v", res.Errors)
}

func TestVerifyAcceptsLoweredBranch(t *testing.T) {
	reg := types.NewRegistry()
	intType := reg.Digit(digit.Signed, digit.Int)
	closureType := reg.Closure([]types.Field{{Name: "x", Type: intType}}, intType, false)

	param := tree.NewParam(source.Builtin, intType, "x")
	paramDecl := tree.NewDecl(param)
	zero := tree.NewDigitLiteral(diag.NewSink(), source.Builtin, intType, digit.FromInt64(0))
	one := tree.NewDigitLiteral(diag.NewSink(), source.Builtin, intType, digit.FromInt64(1))
	two := tree.NewDigitLiteral(diag.NewSink(), source.Builtin, intType, digit.FromInt64(2))

	cmp := &tree.Compare{Op: tree.CompareEq, LHS: &tree.Name{Ref: paramDecl}, RHS: zero}
	branch := &tree.Branch{Cond: cmp, Then: &tree.Return{Value: one}, Else: &tree.Return{Value: two}}

	fn := tree.NewFunction(source.Builtin, closureType, "f", []*tree.Decl{paramDecl}, nil, branch)

	mod := tree.NewModule("m", nil, 0)
	mod.Add(tree.TagProcs, "f", fn)

	l := lower.New(diag.NewSink())
	out := l.LowerAll(map[string]*tree.Module{"m": mod})

	res := verify.Symbol(out["m::f"])
	require.True(t, res.OK(), "%v", res.Errors)
}

func TestVerifyRejectsUnterminatedBlock(t *testing.T) {
	sym := &ssa.Symbol{
		Name:  "bad",
		Entry: &ssa.Block{Name: "entry"},
	}
	sym.Blocks = []*ssa.Block{sym.Entry}

	res := verify.Symbol(sym)
	require.False(t, res.OK())
	require.Len(t, res.Errors, 1)
}

func TestVerifyRejectsRegFromNonDominatingBlock(t *testing.T) {
	entry := &ssa.Block{Name: "entry"}
	thenBB := &ssa.Block{Name: "then"}
	elseBB := &ssa.Block{Name: "else"}
	join := &ssa.Block{Name: "join"}

	immStep := thenBB.Append(&ssa.Step{Opcode: ssa.OpImm, Value: &ssa.Value{}})
	thenBB.Append(&ssa.Step{Opcode: ssa.OpJump, Target: ssa.BlockOperand(join)})
	elseBB.Append(&ssa.Step{Opcode: ssa.OpJump, Target: ssa.BlockOperand(join)})
	entry.Append(&ssa.Step{Opcode: ssa.OpBranch, Cond: ssa.Empty, Then: ssa.BlockOperand(thenBB), Else: ssa.BlockOperand(elseBB)})
	join.Append(&ssa.Step{Opcode: ssa.OpReturn, ReturnValue: ssa.RegOperand(immStep)})

	sym := &ssa.Symbol{Name: "bad", Entry: entry, Blocks: []*ssa.Block{entry, thenBB, elseBB, join}}

	res := verify.Symbol(sym)
	require.False(t, res.OK())
}
