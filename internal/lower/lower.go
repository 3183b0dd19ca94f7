// Package lower implements the tree (HLIR) to SSA lowering pass described
// in §4.7: each resolved Global/Function reachable from a lifetime's
// collected modules becomes an ssa.Symbol, with expressions and statements
// walked into ssa.Step sequences. original_source/ does not carry a
// standalone lowering source file alongside ssa.h (only the header and an
// older eval.c debug printer survive in this retrieval), so this package is
// grounded directly on spec.md §4.7's per-node rules rather than on a
// literal original file.
package lower

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/ssa"
	"github.com/cthulhu-project/cthulhu/internal/tree"
	"github.com/cthulhu-project/cthulhu/internal/types"
)

// Lowerer carries the diagnostics sink and the cross-reference table every
// Name lowering needs to find the ssa.Symbol a Global or Function resolves
// to, regardless of which module is lowered first. It also keeps the most
// recent LowerAll's flat output around so Module can group it back up.
type Lowerer struct {
	sink    *diag.Sink
	symbols map[tree.Node]*ssa.Symbol
	out     map[string]*ssa.Symbol
}

// New constructs a Lowerer reporting through sink.
func New(sink *diag.Sink) *Lowerer {
	return &Lowerer{sink: sink, symbols: make(map[tree.Node]*ssa.Symbol)}
}

// LowerAll lowers every module in modules (as returned by
// lifetime.Lifetime.CollectModules) into one flat, qualified-name-keyed
// symbol table. Modules are visited in sorted-path order for determinism,
// matching the rest of the pipeline's §5 ordering guarantee; a stub pass
// builds every symbol's name/type/signature first so that a Global
// initializer or Function body can reference a sibling declared later in
// source order.
func (l *Lowerer) LowerAll(modules map[string]*tree.Module) map[string]*ssa.Symbol {
	out := make(map[string]*ssa.Symbol)
	paths := make([]string, 0, len(modules))
	for p := range modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		l.stubModule(modules[p], out)
	}
	for _, p := range paths {
		l.lowerModuleBodies(modules[p])
	}
	l.out = out
	return out
}

// Module returns the subset of the most recent LowerAll's output belonging
// to the module qualified by name — every symbol whose qualified name is
// name itself or starts with "name::" — letting a caller print one module's
// worth of SSA at a time instead of walking the flat table LowerAll
// returns. Returns an empty map if LowerAll has not run yet or name has no
// symbols.
func (l *Lowerer) Module(name string) map[string]*ssa.Symbol {
	out := make(map[string]*ssa.Symbol)
	prefix := name + "::"
	for qname, sym := range l.out {
		if qname == name || strings.HasPrefix(qname, prefix) {
			out[qname] = sym
		}
	}
	return out
}

func (l *Lowerer) stubModule(m *tree.Module, out map[string]*ssa.Symbol) {
	if m == nil {
		return
	}
	for _, e := range m.TagMap(tree.TagValues) {
		g, ok := e.Decl.Current().(*tree.Global)
		if !ok {
			l.reportUnresolved(e.Decl.Current(), e.Name)
			continue
		}
		sym := &ssa.Symbol{Name: qualify(m, e.Name), Type: Type(g.Type())}
		l.symbols[g] = sym
		out[sym.Name] = sym
	}
	for _, e := range m.TagMap(tree.TagProcs) {
		fn, ok := e.Decl.Current().(*tree.Function)
		if !ok {
			l.reportUnresolved(e.Decl.Current(), e.Name)
			continue
		}
		sym := &ssa.Symbol{Name: qualify(m, e.Name), Type: Type(fn.Type())}
		for _, p := range fn.Params {
			if pd, ok := p.Current().(*tree.Param); ok {
				sym.Params = append(sym.Params, ssa.Param{Name: pd.Name, Type: Type(pd.Type())})
			}
		}
		for _, ld := range fn.Locals {
			if ldv, ok := ld.Current().(*tree.Local); ok {
				sym.Locals = append(sym.Locals, ssa.Local{Name: ldv.Name, Type: Type(ldv.Type())})
			}
		}
		l.symbols[fn] = sym
		out[sym.Name] = sym
	}
	for _, e := range m.TagMap(tree.TagModules) {
		if child, ok := e.Decl.Current().(*tree.Module); ok {
			l.stubModule(child, out)
		}
	}
}

func (l *Lowerer) lowerModuleBodies(m *tree.Module) {
	if m == nil {
		return
	}
	for _, e := range m.TagMap(tree.TagValues) {
		if g, ok := e.Decl.Current().(*tree.Global); ok {
			if sym, ok := l.symbols[g]; ok {
				l.lowerGlobalInit(g, sym)
			}
		}
	}
	for _, e := range m.TagMap(tree.TagProcs) {
		if fn, ok := e.Decl.Current().(*tree.Function); ok {
			if sym, ok := l.symbols[fn]; ok {
				l.lowerFunction(fn, sym)
			}
		}
	}
	for _, e := range m.TagMap(tree.TagModules) {
		if child, ok := e.Decl.Current().(*tree.Module); ok {
			l.lowerModuleBodies(child)
		}
	}
}

func (l *Lowerer) reportUnresolved(n tree.Node, name string) {
	span := source.Builtin
	if n != nil {
		span = n.Span()
	}
	l.sink.ReportCode(diag.Internal, tree.ErrInternalInvariant, span,
		"cannot lower unresolved or poison decl %q", name)
}

func qualify(m *tree.Module, name string) string {
	if p := m.Path(); p != "" {
		return p + "::" + name
	}
	return name
}

// Type projects a tree type onto the flattened ssa type lattice: Follow
// resolves through aliases first, then Pointer/Array/Record/Union/opaque
// alias all collapse to Qualify, a named reference back to the tree type,
// since a backend only needs to print that name, not re-derive structure.
// A tree Void result (nothing to return) and tree Empty (never a value)
// both lower to ssa's single Empty kind — the original ssa_kind_t has no
// separate void case either.
func Type(t *types.Type) ssa.Type {
	ft := types.Follow(t)
	if ft == nil {
		return ssa.Type{Kind: ssa.TypeEmpty, Name: "empty"}
	}
	switch ft.Kind() {
	case types.KindEmpty, types.KindVoid:
		return ssa.Type{Kind: ssa.TypeEmpty, Name: ft.String()}
	case types.KindUnit:
		return ssa.Type{Kind: ssa.TypeUnit, Name: "unit"}
	case types.KindBool:
		return ssa.Type{Kind: ssa.TypeBool, Name: "bool"}
	case types.KindDigit:
		return ssa.Type{Kind: ssa.TypeDigit, Sign: ft.Sign(), Width: ft.Width()}
	case types.KindString:
		return ssa.Type{Kind: ssa.TypeString, Name: "string"}
	case types.KindClosure:
		return ssa.Type{Kind: ssa.TypeClosure, Name: ft.String()}
	default:
		return ssa.Type{Kind: ssa.TypeQualify, Name: ft.String()}
	}
}

// funcState is the per-function (or per-global-initializer) lowering
// context: the block currently being appended to, the index a Param/Local
// decl lowers to, and the head/exit blocks a Break/Continue inside a Loop
// targets.
type funcState struct {
	l   *Lowerer
	sym *ssa.Symbol

	paramIndex map[*tree.Decl]int
	localIndex map[*tree.Decl]int

	loopHead map[*tree.Loop]*ssa.Block
	loopExit map[*tree.Loop]*ssa.Block

	blocks   []*ssa.Block
	cur      *ssa.Block
	blockSeq int
}

func newFuncState(l *Lowerer, sym *ssa.Symbol) *funcState {
	return &funcState{
		l:          l,
		sym:        sym,
		paramIndex: make(map[*tree.Decl]int),
		localIndex: make(map[*tree.Decl]int),
		loopHead:   make(map[*tree.Loop]*ssa.Block),
		loopExit:   make(map[*tree.Loop]*ssa.Block),
	}
}

func (fs *funcState) newBlock(prefix string) *ssa.Block {
	fs.blockSeq++
	b := &ssa.Block{Name: fmt.Sprintf("%s_%d", prefix, fs.blockSeq)}
	fs.blocks = append(fs.blocks, b)
	return b
}

func (fs *funcState) jump(target *ssa.Block) {
	fs.cur.Append(&ssa.Step{Opcode: ssa.OpJump, Target: ssa.BlockOperand(target)})
}

func (fs *funcState) terminateWithJumpIfOpen(target *ssa.Block) {
	if fs.cur.Terminator() == nil {
		fs.jump(target)
	}
}

func (l *Lowerer) lowerFunction(fn *tree.Function, sym *ssa.Symbol) {
	if fn.Body == nil {
		return
	}
	fs := newFuncState(l, sym)
	for i, p := range fn.Params {
		fs.paramIndex[p] = i
	}
	for i, p := range fn.Locals {
		fs.localIndex[p] = i
	}

	entry := fs.newBlock("entry")
	fs.cur = entry
	sym.Entry = entry
	fs.lowerStmt(fn.Body)

	if fs.cur.Terminator() == nil {
		result := resultType(fn.Type())
		if result == nil || result.Kind() == types.KindVoid || result.Kind() == types.KindEmpty {
			fs.cur.Append(&ssa.Step{Opcode: ssa.OpReturn, ReturnValue: ssa.Empty})
		} else {
			l.sink.ReportCode(diag.Internal, tree.ErrInternalInvariant, fn.Span(),
				"function %q falls off the end without a return", fn.Name)
			fs.cur.Append(&ssa.Step{Opcode: ssa.OpReturn, ReturnValue: ssa.Empty})
		}
	}
	sym.Blocks = fs.blocks
}

func resultType(closureType *types.Type) *types.Type {
	ft := types.Follow(closureType)
	if ft == nil || ft.Kind() != types.KindClosure {
		return nil
	}
	return ft.Result()
}

// lowerGlobalInit spins a temporary entry block for the initializer
// expression. A pure Imm result is attached directly as sym.Value and the
// block discarded; anything else keeps the block, leaving the backend to
// emit a real constructor at load time.
func (l *Lowerer) lowerGlobalInit(g *tree.Global, sym *ssa.Symbol) {
	if g.Init == nil {
		return
	}
	fs := newFuncState(l, sym)
	tmp := fs.newBlock("init")
	fs.cur = tmp

	val := fs.lowerValue(g.Init)
	if val.Kind == ssa.OperandImm {
		sym.Value = val.Imm
		return
	}
	tmp.Append(&ssa.Step{Opcode: ssa.OpReturn, ReturnValue: val})
	sym.Entry = tmp
	sym.Blocks = []*ssa.Block{tmp}
}

func (fs *funcState) lowerStmt(n tree.Node) {
	if n == nil || tree.IsError(n) {
		return
	}
	switch v := n.(type) {
	case *tree.Stmts:
		for _, s := range v.List {
			fs.lowerStmt(s)
			if fs.cur.Terminator() != nil {
				return
			}
		}

	case *tree.Branch:
		fs.lowerBranch(v)

	case *tree.Loop:
		fs.lowerLoop(v)

	case *tree.Break:
		if target, ok := fs.loopExit[v.Target]; ok {
			fs.jump(target)
		}

	case *tree.Continue:
		if target, ok := fs.loopHead[v.Target]; ok {
			fs.jump(target)
		}

	case *tree.Assign:
		src := fs.lowerValue(v.Src)
		dst := fs.lowerAddress(v.Dst)
		fs.cur.Append(&ssa.Step{Opcode: ssa.OpStore, Dst: dst, Src: src})

	case *tree.Return:
		val := ssa.Empty
		if v.Value != nil {
			val = fs.lowerValue(v.Value)
		}
		fs.cur.Append(&ssa.Step{Opcode: ssa.OpReturn, ReturnValue: val})

	default:
		// An expression used as a statement (e.g. a bare Call for its
		// side effect): lower it for effect and discard the result.
		fs.lowerValue(n)
	}
}

// lowerBranch splits on a two-way conditional. A join block is only ever
// materialized if some arm actually falls through without a terminator —
// when both arms end in their own Return (or Break/Continue), no join
// block is created at all, matching scenario 4's "no join block required".
func (fs *funcState) lowerBranch(v *tree.Branch) {
	cond := fs.lowerValue(v.Cond)
	thenBB := fs.newBlock("then")

	var elseBB *ssa.Block
	falseTarget := thenBB
	if v.Else != nil {
		elseBB = fs.newBlock("else")
		falseTarget = elseBB
	}

	var joinBB *ssa.Block
	ensureJoin := func() *ssa.Block {
		if joinBB == nil {
			joinBB = fs.newBlock("join")
		}
		return joinBB
	}
	if v.Else == nil {
		falseTarget = ensureJoin()
	}

	branchStep := &ssa.Step{Opcode: ssa.OpBranch, Cond: cond, Then: ssa.BlockOperand(thenBB), Else: ssa.BlockOperand(falseTarget)}
	fs.cur.Append(branchStep)

	fs.cur = thenBB
	fs.lowerStmt(v.Then)
	if fs.cur.Terminator() == nil {
		fs.jump(ensureJoin())
	}
	lastArm := thenBB

	if v.Else != nil {
		fs.cur = elseBB
		fs.lowerStmt(v.Else)
		if fs.cur.Terminator() == nil {
			fs.jump(ensureJoin())
		}
		lastArm = elseBB
	}

	if joinBB != nil {
		fs.cur = joinBB
	} else {
		fs.cur = lastArm
	}
}

// lowerLoop splits a pre-tested loop into head/body/exit blocks. When Else
// is present this core's resolved reading of Loop.Else (see
// tree.Loop's doc comment) requires the natural false-condition exit to run
// Else while a Break skips straight past it, so an extra block sits between
// the head's false edge and the common post-loop join in that case.
func (fs *funcState) lowerLoop(v *tree.Loop) {
	headBB := fs.newBlock("head")
	bodyBB := fs.newBlock("body")
	exitBB := fs.newBlock("exit")

	fs.jump(headBB)
	fs.cur = headBB
	cond := fs.lowerValue(v.Cond)

	if v.Else == nil {
		fs.cur.Append(&ssa.Step{Opcode: ssa.OpBranch, Cond: cond, Then: ssa.BlockOperand(bodyBB), Else: ssa.BlockOperand(exitBB)})
		fs.loopHead[v] = headBB
		fs.loopExit[v] = exitBB

		fs.cur = bodyBB
		fs.lowerStmt(v.Body)
		fs.terminateWithJumpIfOpen(headBB)

		fs.cur = exitBB
		return
	}

	naturalBB := fs.newBlock("loop_else")
	fs.cur.Append(&ssa.Step{Opcode: ssa.OpBranch, Cond: cond, Then: ssa.BlockOperand(bodyBB), Else: ssa.BlockOperand(naturalBB)})
	fs.loopHead[v] = headBB
	fs.loopExit[v] = exitBB

	fs.cur = bodyBB
	fs.lowerStmt(v.Body)
	fs.terminateWithJumpIfOpen(headBB)

	fs.cur = naturalBB
	fs.lowerStmt(v.Else)
	fs.terminateWithJumpIfOpen(exitBB)

	fs.cur = exitBB
}

// lowerValue lowers n for its value: literals fold to Imm with no step,
// a Param/Local/Function Name yields its slot operand directly, a Global
// Name always goes through an explicit Load (it is a real memory read),
// and every other node emits the step(s) §4.7 describes for it.
func (fs *funcState) lowerValue(n tree.Node) ssa.Operand {
	if n == nil || tree.IsError(n) {
		return ssa.Empty
	}
	switch v := n.(type) {
	case *tree.DigitLiteral:
		return ssa.ImmOperand(ssa.Value{Type: Type(n.Type()), Digit: v.Value})
	case *tree.BoolLiteral:
		return ssa.ImmOperand(ssa.Value{Type: Type(n.Type()), Bool: v.Value})
	case *tree.StringLiteral:
		return ssa.ImmOperand(ssa.Value{Type: Type(n.Type()), String: v.Bytes})

	case *tree.Name:
		return fs.lowerName(v)

	case *tree.AddrOf:
		addr := fs.lowerAddress(v.Operand)
		step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpAddress, Type: Type(n.Type()), Operand: addr})
		return ssa.RegOperand(step)

	case *tree.Load:
		ptr := fs.lowerValue(v.Operand)
		step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpLoad, Type: Type(n.Type()), Operand: ptr})
		return ssa.RegOperand(step)

	case *tree.Unary:
		operand := fs.lowerValue(v.Operand)
		step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpUnary, Type: Type(n.Type()), UnaryOp: v.Op, Operand: operand})
		return ssa.RegOperand(step)

	case *tree.Binary:
		lhs, rhs := fs.lowerValue(v.LHS), fs.lowerValue(v.RHS)
		step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpBinary, Type: Type(n.Type()), BinaryOp: v.Op, LHS: lhs, RHS: rhs})
		return ssa.RegOperand(step)

	case *tree.Compare:
		lhs, rhs := fs.lowerValue(v.LHS), fs.lowerValue(v.RHS)
		step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpCompare, Type: Type(n.Type()), CompareOp: v.Op, LHS: lhs, RHS: rhs})
		return ssa.RegOperand(step)

	case *tree.Cast:
		operand := fs.lowerValue(v.Operand)
		step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpCast, Type: Type(n.Type()), Operand: operand, CastTo: Type(n.Type())})
		return ssa.RegOperand(step)

	case *tree.Call:
		fn := fs.lowerCallee(v.Fn)
		args := make([]ssa.Operand, len(v.Args))
		for i, a := range v.Args {
			args[i] = fs.lowerValue(a)
		}
		step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpCall, Type: Type(n.Type()), Function: fn, Args: args})
		return ssa.RegOperand(step)

	case *tree.Index:
		addr := fs.lowerAddress(v)
		step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpLoad, Type: Type(n.Type()), Operand: addr})
		return ssa.RegOperand(step)

	case *tree.Member:
		addr := fs.lowerAddress(v)
		step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpLoad, Type: Type(n.Type()), Operand: addr})
		return ssa.RegOperand(step)
	}

	fs.l.sink.ReportCode(diag.Internal, tree.ErrInternalInvariant, n.Span(),
		"%s has no lowering rule", n.Kind())
	return ssa.Empty
}

func (fs *funcState) lowerName(v *tree.Name) ssa.Operand {
	target := v.Ref.Current()
	switch t := target.(type) {
	case *tree.Param:
		if i, ok := fs.paramIndex[v.Ref]; ok {
			return ssa.ParamOperand(i)
		}
	case *tree.Local:
		if i, ok := fs.localIndex[v.Ref]; ok {
			return ssa.LocalOperand(i)
		}
	case *tree.Function:
		if sym, ok := fs.l.symbols[t]; ok {
			return ssa.FunctionOperand(sym)
		}
	case *tree.Global:
		if sym, ok := fs.l.symbols[t]; ok {
			step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpLoad, Type: Type(t.Type()), Operand: ssa.GlobalOperand(sym)})
			return ssa.RegOperand(step)
		}
	}
	fs.l.sink.ReportCode(diag.Internal, tree.ErrInternalInvariant, v.Span(),
		"name reference to an unresolved or untracked decl")
	return ssa.Empty
}

// lowerAddress lowers n as an assignable location rather than its value:
// a Param/Local/Global Name yields its slot/global operand directly (no
// Load), Index/Member emit the pointer-producing step and hand back that
// register, and a Load used as a target treats its operand (the pointer
// itself) as the address, i.e. `*ptr = x` stores through ptr's value.
func (fs *funcState) lowerAddress(n tree.Node) ssa.Operand {
	switch v := n.(type) {
	case *tree.Name:
		target := v.Ref.Current()
		switch t := target.(type) {
		case *tree.Param:
			if i, ok := fs.paramIndex[v.Ref]; ok {
				return ssa.ParamOperand(i)
			}
		case *tree.Local:
			if i, ok := fs.localIndex[v.Ref]; ok {
				return ssa.LocalOperand(i)
			}
		case *tree.Global:
			if sym, ok := fs.l.symbols[t]; ok {
				return ssa.GlobalOperand(sym)
			}
		}
	case *tree.Index:
		arr := fs.lowerValue(v.Array)
		idx := fs.lowerValue(v.Idx)
		step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpIndex, Type: Type(n.Type()), Array: arr, Index: idx})
		return ssa.RegOperand(step)
	case *tree.Member:
		obj := fs.lowerValue(v.Object)
		step := fs.cur.Append(&ssa.Step{Opcode: ssa.OpMember, Type: Type(n.Type()), Object: obj, Field: v.Field})
		return ssa.RegOperand(step)
	case *tree.Load:
		return fs.lowerValue(v.Operand)
	}
	fs.l.sink.ReportCode(diag.Internal, tree.ErrInternalInvariant, n.Span(),
		"%s is not a valid assignment target", n.Kind())
	return ssa.Empty
}

// lowerCallee lowers a call target without forcing a Load the way an
// ordinary Name rvalue would: invoking a function addresses code, it does
// not read a value, so a direct Name(Function) keeps the Function operand
// untouched. Anything else (a function pointer stored in a global or
// local, say) falls back to normal value lowering.
func (fs *funcState) lowerCallee(n tree.Node) ssa.Operand {
	if name, ok := n.(*tree.Name); ok {
		if fn, ok := name.Ref.Current().(*tree.Function); ok {
			if sym, ok := fs.l.symbols[fn]; ok {
				return ssa.FunctionOperand(sym)
			}
		}
	}
	return fs.lowerValue(n)
}
