// Package ssa implements the block-based SSA model the tree lowerer
// (internal/lower) produces and the verifier (internal/verify) checks.
// Grounded directly on original_source/cthulhu/include/cthulhu/ssa/ssa.h's
// ssa_type_t/ssa_operand_t/ssa_step_t/ssa_block_t/ssa_symbol_t — the field
// names below track that header's shape, translated from tagged C unions
// into small Go structs plus a kind enum the way internal/tree does for the
// HLIR side.
package ssa

import (
	"fmt"

	"github.com/cthulhu-project/cthulhu/internal/digit"
	"github.com/cthulhu-project/cthulhu/internal/tree"
)

// TypeKind mirrors ssa_kind_t. SSA types are a flattened projection of the
// richer tree type system — pointer/array/record/union/alias all become
// Qualify, a named reference back to the tree type they were lowered from,
// since the backend only needs to print a name, not re-derive structure.
type TypeKind int

const (
	TypeEmpty TypeKind = iota
	TypeUnit
	TypeBool
	TypeDigit
	TypeString
	TypeClosure
	TypeQualify
)

func (k TypeKind) String() string {
	switch k {
	case TypeEmpty:
		return "empty"
	case TypeUnit:
		return "unit"
	case TypeBool:
		return "bool"
	case TypeDigit:
		return "digit"
	case TypeString:
		return "string"
	case TypeClosure:
		return "closure"
	case TypeQualify:
		return "qualify"
	default:
		return "type"
	}
}

// Type is an SSA-level type: a kind tag, a display name, and (for Digit) the
// sign/width the value lowers from.
type Type struct {
	Kind  TypeKind
	Name  string
	Sign  digit.Sign
	Width digit.Width
}

func (t Type) String() string {
	if t.Kind == TypeDigit {
		return fmt.Sprintf("%s %s", t.Sign, t.Width)
	}
	return t.Name
}

// Value is a constant carried by an Imm operand — ssa_value_t.
type Value struct {
	Type   Type
	Digit  digit.Value
	Bool   bool
	String []byte
}

// OperandKind mirrors ssa_opkind_t.
type OperandKind int

const (
	OperandEmpty OperandKind = iota
	OperandImm
	OperandBlock
	OperandGlobal
	OperandLocal
	OperandParam
	OperandReg
	OperandFunction
)

func (k OperandKind) String() string {
	switch k {
	case OperandEmpty:
		return "empty"
	case OperandImm:
		return "imm"
	case OperandBlock:
		return "block"
	case OperandGlobal:
		return "global"
	case OperandLocal:
		return "local"
	case OperandParam:
		return "param"
	case OperandReg:
		return "reg"
	case OperandFunction:
		return "function"
	default:
		return "operand"
	}
}

// Operand is ssa_operand_t rendered as a Go discriminated struct instead of
// a union: only the field matching Kind is meaningful.
type Operand struct {
	Kind OperandKind

	Imm      *Value
	Block    *Block
	Global   *Symbol
	Function *Symbol
	Local    int
	Param    int
	Reg      *Step
}

// Empty is the canonical empty operand (void results, no-initializer
// globals).
var Empty = Operand{Kind: OperandEmpty}

// ImmOperand wraps a constant value as an operand.
func ImmOperand(v Value) Operand { return Operand{Kind: OperandImm, Imm: &v} }

// BlockOperand names a block as a branch/jump target.
func BlockOperand(b *Block) Operand { return Operand{Kind: OperandBlock, Block: b} }

// GlobalOperand references a global symbol.
func GlobalOperand(s *Symbol) Operand { return Operand{Kind: OperandGlobal, Global: s} }

// FunctionOperand references a function symbol.
func FunctionOperand(s *Symbol) Operand { return Operand{Kind: OperandFunction, Function: s} }

// LocalOperand references a local slot by index.
func LocalOperand(i int) Operand { return Operand{Kind: OperandLocal, Local: i} }

// ParamOperand references a parameter slot by index.
func ParamOperand(i int) Operand { return Operand{Kind: OperandParam, Param: i} }

// RegOperand references the virtual register produced by an earlier step.
func RegOperand(s *Step) Operand { return Operand{Kind: OperandReg, Reg: s} }

// Opcode mirrors ssa_opcode_t.
type Opcode int

const (
	OpStore Opcode = iota
	OpLoad
	OpAddress

	OpImm
	OpUnary
	OpBinary
	OpCompare

	OpCast
	OpCall

	OpIndex
	OpMember

	OpReturn
	OpBranch
	OpJump
)

func (op Opcode) String() string {
	switch op {
	case OpStore:
		return "store"
	case OpLoad:
		return "load"
	case OpAddress:
		return "address"
	case OpImm:
		return "imm"
	case OpUnary:
		return "unary"
	case OpBinary:
		return "binary"
	case OpCompare:
		return "compare"
	case OpCast:
		return "cast"
	case OpCall:
		return "call"
	case OpIndex:
		return "index"
	case OpMember:
		return "member"
	case OpReturn:
		return "return"
	case OpBranch:
		return "branch"
	case OpJump:
		return "jump"
	default:
		return "op"
	}
}

// IsTerminator reports whether op ends a block (Return, Branch, or Jump) —
// the shape every block must end with exactly one of, per §8.
func (op Opcode) IsTerminator() bool {
	return op == OpReturn || op == OpBranch || op == OpJump
}

// Step is one instruction — ssa_step_t. It produces at most one virtual
// register (itself, referenced as a Reg operand by later steps) except for
// Store and the terminators, which produce none.
type Step struct {
	Opcode Opcode
	Type   Type // the type of the value this step produces, if any

	// Store
	Dst Operand
	Src Operand

	// Load / Address
	Operand Operand

	// Imm
	Value *Value

	// Unary
	UnaryOp tree.UnaryOp

	// Binary
	BinaryOp tree.BinaryOp

	// Compare
	CompareOp tree.CompareOp
	LHS       Operand
	RHS       Operand

	// Cast
	CastTo Type

	// Call
	Function Operand
	Args     []Operand

	// Index
	Array Operand
	Index Operand

	// Member
	Object Operand
	Field  string

	// Return
	ReturnValue Operand

	// Branch
	Cond Operand
	Then Operand
	Else Operand

	// Jump
	Target Operand
}

// Block is ssa_block_t: a named, ordered instruction list.
type Block struct {
	Name  string
	Steps []*Step
}

// Terminator returns the block's last step if it is a terminator, or nil.
func (b *Block) Terminator() *Step {
	if len(b.Steps) == 0 {
		return nil
	}
	last := b.Steps[len(b.Steps)-1]
	if !last.Opcode.IsTerminator() {
		return nil
	}
	return last
}

// Append adds step to the block and returns it, so lowering code can write
// `reg := blk.Append(...)`.
func (b *Block) Append(step *Step) *Step {
	b.Steps = append(b.Steps, step)
	return step
}

// Param is ssa_param_t.
type Param struct {
	Name string
	Type Type
}

// Local is ssa_local_t.
type Local struct {
	Name string
	Type Type
}

// Field is ssa_field_t.
type Field struct {
	Name string
	Type Type
}

// Symbol is ssa_symbol_t: a function (Entry set, Value nil) or a global. A
// global whose initializer folds to a constant has Value set and Entry nil;
// one with any other initializer keeps its initializer block as Entry with
// Value nil; one with no initializer has neither.
type Symbol struct {
	Name   string
	Type   Type
	Value  *Value
	Entry  *Block
	Blocks []*Block
	Locals []Local
	Params []Param
}

// Module is ssa_module_t: one compiled translation unit's flattened symbol
// list.
type Module struct {
	Name    string
	Symbols []*Symbol
}
