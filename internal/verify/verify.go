// Package verify implements the standalone SSA verifier §9's design notes
// call for: a pass checking §8's block-termination and operand
// well-formedness invariants, meant to run after every lowering in debug
// builds and unconditionally in the test harness.
package verify

import (
	"fmt"

	"github.com/cthulhu-project/cthulhu/internal/ssa"
)

// Result collects every invariant violation found in one symbol. A zero
// Result (nil Errors) means the symbol verified clean.
type Result struct {
	Errors []string
}

// OK reports whether no violation was recorded.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Symbol verifies one lowered symbol: every block ends with exactly one
// terminator, and every Reg operand refers to a step that either appears
// earlier in the same block or lives in a block that dominates the block
// doing the referencing.
func Symbol(sym *ssa.Symbol) Result {
	var res Result
	blocks := sym.Blocks
	if len(blocks) == 0 {
		return res
	}

	blockIndex := make(map[*ssa.Block]int, len(blocks))
	for i, b := range blocks {
		blockIndex[b] = i
	}

	for _, b := range blocks {
		if b.Terminator() == nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: block %q does not end with Return, Branch, or Jump", sym.Name, b.Name))
		}
		for si := 0; si < len(b.Steps)-1; si++ {
			if b.Steps[si].Opcode.IsTerminator() {
				res.Errors = append(res.Errors, fmt.Sprintf("%s: block %q has a terminator at step %d before its end", sym.Name, b.Name, si))
			}
		}
	}

	stepBlock, stepIndex := indexSteps(blocks)

	entryIdx := 0
	if sym.Entry != nil {
		if i, ok := blockIndex[sym.Entry]; ok {
			entryIdx = i
		}
	}
	idom := computeIdom(blocks, entryIdx, blockIndex)

	for bi, b := range blocks {
		for si, step := range b.Steps {
			for _, op := range operandsOf(step) {
				if op.Kind != ssa.OperandReg || op.Reg == nil {
					continue
				}
				defBlock, ok := stepBlock[op.Reg]
				if !ok {
					res.Errors = append(res.Errors, fmt.Sprintf(
						"%s: block %q step %d references a Reg from no known step", sym.Name, b.Name, si))
					continue
				}
				defSi := stepIndex[op.Reg]
				if defBlock == bi {
					if defSi >= si {
						res.Errors = append(res.Errors, fmt.Sprintf(
							"%s: block %q step %d uses a Reg defined at or after itself", sym.Name, b.Name, si))
					}
					continue
				}
				if !dominates(idom, defBlock, bi) {
					res.Errors = append(res.Errors, fmt.Sprintf(
						"%s: block %q step %d uses a Reg from block %q, which does not dominate it",
						sym.Name, b.Name, si, blocks[defBlock].Name))
				}
			}
		}
	}

	return res
}

func indexSteps(blocks []*ssa.Block) (map[*ssa.Step]int, map[*ssa.Step]int) {
	block := make(map[*ssa.Step]int)
	index := make(map[*ssa.Step]int)
	for bi, b := range blocks {
		for si, s := range b.Steps {
			block[s] = bi
			index[s] = si
		}
	}
	return block, index
}

// operandsOf lists every operand field a step might carry. Fields unused
// by a step's opcode hold the zero Operand (Kind: OperandEmpty), which the
// caller skips, so it is harmless to list them unconditionally.
func operandsOf(s *ssa.Step) []ssa.Operand {
	ops := []ssa.Operand{
		s.Dst, s.Src, s.Operand,
		s.LHS, s.RHS,
		s.Function, s.ReturnValue,
		s.Cond, s.Then, s.Else, s.Target,
		s.Array, s.Index, s.Object,
	}
	return append(ops, s.Args...)
}

func successors(b *ssa.Block, idx map[*ssa.Block]int) []int {
	t := b.Terminator()
	if t == nil {
		return nil
	}
	switch t.Opcode {
	case ssa.OpBranch:
		return []int{blockOperandIndex(t.Then, idx), blockOperandIndex(t.Else, idx)}
	case ssa.OpJump:
		return []int{blockOperandIndex(t.Target, idx)}
	default:
		return nil
	}
}

func blockOperandIndex(op ssa.Operand, idx map[*ssa.Block]int) int {
	if op.Kind != ssa.OperandBlock || op.Block == nil {
		return -1
	}
	i, ok := idx[op.Block]
	if !ok {
		return -1
	}
	return i
}

// postorder runs a DFS from entryIdx over the block CFG (built from
// Branch/Jump terminator targets) and returns block indices in postorder —
// blocks unreachable from entry are simply absent.
func postorder(blocks []*ssa.Block, entryIdx int, idx map[*ssa.Block]int) []int {
	visited := make([]bool, len(blocks))
	var order []int
	var visit func(i int)
	visit = func(i int) {
		if i < 0 || i >= len(blocks) || visited[i] {
			return
		}
		visited[i] = true
		for _, s := range successors(blocks[i], idx) {
			visit(s)
		}
		order = append(order, i)
	}
	visit(entryIdx)
	return order
}

// computeIdom runs the standard Cooper/Harvey/Kennedy iterative dominator
// algorithm over the reachable subset of blocks.
func computeIdom(blocks []*ssa.Block, entryIdx int, idx map[*ssa.Block]int) []int {
	n := len(blocks)
	preds := make([][]int, n)
	for i, b := range blocks {
		for _, s := range successors(b, idx) {
			if s >= 0 {
				preds[s] = append(preds[s], i)
			}
		}
	}

	order := postorder(blocks, entryIdx, idx)
	postNum := make([]int, n)
	for i := range postNum {
		postNum[i] = -1
	}
	for k, bi := range order {
		postNum[bi] = k
	}

	rpo := make([]int, len(order))
	for i, bi := range order {
		rpo[len(order)-1-i] = bi
	}

	idom := make([]int, n)
	for i := range idom {
		idom[i] = -1
	}
	idom[entryIdx] = entryIdx

	for changed := true; changed; {
		changed = false
		for _, bi := range rpo {
			if bi == entryIdx {
				continue
			}
			newIdom := -1
			for _, p := range preds[bi] {
				if idom[p] == -1 {
					continue
				}
				if newIdom == -1 {
					newIdom = p
				} else {
					newIdom = intersect(idom, postNum, newIdom, p)
				}
			}
			if newIdom != -1 && idom[bi] != newIdom {
				idom[bi] = newIdom
				changed = true
			}
		}
	}
	return idom
}

func intersect(idom, postNum []int, a, b int) int {
	for a != b {
		for postNum[a] < postNum[b] {
			a = idom[a]
		}
		for postNum[b] < postNum[a] {
			b = idom[b]
		}
	}
	return a
}

func dominates(idom []int, a, b int) bool {
	if a >= len(idom) || b >= len(idom) || idom[b] == -1 {
		return false
	}
	for cur := b; ; {
		if cur == a {
			return true
		}
		if idom[cur] == cur {
			return false
		}
		cur = idom[cur]
	}
}
