// Package tree implements the typed tree IR shared by every language driver:
// a uniform, typed node representation with tagged-namespace modules,
// forward-declared (lazily resolved) symbols, and the type kinds described
// by internal/types. This is the Go rendering of the original hlir_t tagged
// union (cthulhu/include/cthulhu/hlir/hlir.h), split into one small
// concrete type per node kind rather than one C-style union struct.
package tree

import (
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/types"
)

// Kind tags which concrete node type a Node value holds.
type Kind int

const (
	// Literals
	KindDigitLiteral Kind = iota
	KindBoolLiteral
	KindStringLiteral

	// Expressions
	KindName
	KindUnary
	KindBinary
	KindCompare
	KindCall
	KindIndex
	KindMember
	KindCast
	KindAddrOf
	KindLoad

	// Statements
	KindStmts
	KindBranch
	KindLoop
	KindBreak
	KindContinue
	KindAssign
	KindReturn

	// Declarations
	KindGlobal
	KindFunction
	KindParam
	KindLocal
	KindField

	// Structural
	KindModule
	KindForward
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindDigitLiteral:
		return "DigitLiteral"
	case KindBoolLiteral:
		return "BoolLiteral"
	case KindStringLiteral:
		return "StringLiteral"
	case KindName:
		return "Name"
	case KindUnary:
		return "Unary"
	case KindBinary:
		return "Binary"
	case KindCompare:
		return "Compare"
	case KindCall:
		return "Call"
	case KindIndex:
		return "Index"
	case KindMember:
		return "Member"
	case KindCast:
		return "Cast"
	case KindAddrOf:
		return "AddrOf"
	case KindLoad:
		return "Load"
	case KindStmts:
		return "Stmts"
	case KindBranch:
		return "Branch"
	case KindLoop:
		return "Loop"
	case KindBreak:
		return "Break"
	case KindContinue:
		return "Continue"
	case KindAssign:
		return "Assign"
	case KindReturn:
		return "Return"
	case KindGlobal:
		return "Global"
	case KindFunction:
		return "Function"
	case KindParam:
		return "Param"
	case KindLocal:
		return "Local"
	case KindField:
		return "Field"
	case KindModule:
		return "Module"
	case KindForward:
		return "Forward"
	case KindError:
		return "Error"
	default:
		return "<invalid kind>"
	}
}

// Linkage is the closed set of linkage attributes a declaration can carry.
type Linkage int

const (
	Internal Linkage = iota
	Import
	Export
)

func (l Linkage) String() string {
	switch l {
	case Internal:
		return "internal"
	case Import:
		return "import"
	case Export:
		return "export"
	default:
		return "internal"
	}
}

// Visibility supplements Linkage. Default is ordinary visibility; ReadOnly
// marks an exported declaration that external modules may read but never
// assign to — the "public-read-only" flag referenced by one driver in the
// original sources but never threaded through the shared tree there. We
// close that open question by giving it a real, if unenforced-by-the-core,
// home on every node's Attribs.
type Visibility int

const (
	VisibilityDefault Visibility = iota
	VisibilityReadOnly
)

// Attribs carries the linkage, visibility, and name-mangling hints every
// tree node is described as carrying in the data model.
type Attribs struct {
	Linkage     Linkage
	Visibility  Visibility
	MangledName string
}

// IsImported reports whether a node's attributes mark it as an import.
func IsImported(n Node) bool { return n != nil && n.Attribs().Linkage == Import }

// IsExported reports whether a node's attributes mark it as an export.
func IsExported(n Node) bool { return n != nil && n.Attribs().Linkage == Export }

// Node is the common interface implemented by every tree IR node.
type Node interface {
	Kind() Kind
	Span() source.Span
	Type() *types.Type
	Attribs() *Attribs

	// EnclosingModule returns the module this node was filed into, or nil
	// for a node that was never added to a module's tag table (an
	// expression or statement deep inside a function body, say). This is
	// the Go home for the original HLIR's parentDecl back-reference (see
	// SPEC_FULL.md §3). Module.AddDecl sets it and the resolution cookie
	// carries it over to a resolved decl; nothing in the core reads it.
	EnclosingModule() *Module
	SetEnclosingModule(m *Module)
}

// base is embedded by every concrete node type to supply the span, type,
// and attribs every node carries per the data model.
type base struct {
	span      source.Span
	typ       *types.Type
	attribs   Attribs
	enclosing *Module
}

func (b *base) Span() source.Span     { return b.span }
func (b *base) Type() *types.Type     { return b.typ }
func (b *base) Attribs() *Attribs     { return &b.attribs }
func (b *base) setType(t *types.Type) { b.typ = t }

func (b *base) EnclosingModule() *Module          { return b.enclosing }
func (b *base) SetEnclosingModule(m *Module)      { b.enclosing = m }
