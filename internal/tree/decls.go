package tree

import (
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/types"
)

// Global is a module- or file-scoped variable declaration.
type Global struct {
	base
	Name string
	Init Node // nil if uninitialized
}

func (n *Global) Kind() Kind { return KindGlobal }

// NewGlobal constructs a global declaration. Global/Function construction is
// not in the §4.3 validated-constructor list (only the expression/statement
// builders enforce shape there), so this is a plain constructor the way
// BoolLiteral/StringLiteral are.
func NewGlobal(span source.Span, typ *types.Type, name string, init Node) *Global {
	return &Global{base: base{span: span, typ: typ}, Name: name, Init: init}
}

// Function is a procedure declaration: its Type() is a Closure type (the
// signature); Locals and Params describe the slots a lowering pass will
// assign indices to; Body is nil for an imported/declared-only function.
type Function struct {
	base
	Name   string
	Params []*Decl
	Locals []*Decl
	Body   Node
}

func (n *Function) Kind() Kind { return KindFunction }

// NewFunction constructs a function declaration. Body is nil for an
// imported/declared-only function — lowering skips those.
func NewFunction(span source.Span, typ *types.Type, name string, params, locals []*Decl, body Node) *Function {
	return &Function{base: base{span: span, typ: typ}, Name: name, Params: params, Locals: locals, Body: body}
}

// Param is one parameter of an enclosing Function.
type Param struct {
	base
	Name string
}

func (n *Param) Kind() Kind { return KindParam }

// NewParam constructs a function parameter of the given type.
func NewParam(span source.Span, typ *types.Type, name string) *Param {
	return &Param{base: base{span: span, typ: typ}, Name: name}
}

// Local is one local variable of an enclosing Function.
type Local struct {
	base
	Name string
}

func (n *Local) Kind() Kind { return KindLocal }

// NewLocal constructs a function-local variable of the given type.
func NewLocal(span source.Span, typ *types.Type, name string) *Local {
	return &Local{base: base{span: span, typ: typ}, Name: name}
}

// FieldDecl is one member of a Record or Union type declaration.
type FieldDecl struct {
	base
	Name string
}

func (n *FieldDecl) Kind() Kind { return KindField }

// NewFieldDecl constructs a record/union field of the given type.
func NewFieldDecl(span source.Span, typ *types.Type, name string) *FieldDecl {
	return &FieldDecl{base: base{span: span, typ: typ}, Name: name}
}
