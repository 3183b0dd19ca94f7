// This file implements the validated expression/statement constructors from
// §4.3: each one enforces a shape invariant, reports a diagnostic and
// returns poison on violation, and propagates poison from its operands
// without re-reporting (§4.8 — an Error subtree already means a diagnostic
// was reported at the site that produced it).
package tree

import (
	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/types"
)

func anyError(nodes ...Node) Node {
	for _, n := range nodes {
		if n != nil && IsError(n) {
			return n
		}
	}
	return nil
}

// Binary validates and constructs a Binary expression. Both operands must
// follow to equal digit types; the result has that common type.
func Binary(sink *diag.Sink, span source.Span, op BinaryOp, lhs, rhs Node) Node {
	if poison := anyError(lhs, rhs); poison != nil {
		return poison
	}
	lt, rt := types.Follow(lhs.Type()), types.Follow(rhs.Type())
	if lt == nil || lt.Kind() != types.KindDigit || rt == nil || rt.Kind() != types.KindDigit {
		sink.ReportCode(diag.Error, ErrTypeMismatch, span,
			"operands of %s must be digit types, got %s and %s", op, typeName(lhs.Type()), typeName(rhs.Type()))
		return NewError(span, "binary type mismatch")
	}
	if !types.Equals(lt, rt) {
		sink.ReportCode(diag.Error, ErrTypeMismatch, span,
			"operands of %s have mismatched types %s and %s", op, lt, rt)
		return NewError(span, "binary type mismatch")
	}
	return &Binary{base: base{span: span, typ: lhs.Type()}, Op: op, LHS: lhs, RHS: rhs}
}

// Compare validates and constructs a Compare expression. Both operands
// must have equal types (of any kind); the result is always Bool.
func Compare(sink *diag.Sink, span source.Span, boolType *types.Type, op CompareOp, lhs, rhs Node) Node {
	if poison := anyError(lhs, rhs); poison != nil {
		return poison
	}
	if !types.Equals(lhs.Type(), rhs.Type()) {
		sink.ReportCode(diag.Error, ErrTypeMismatch, span,
			"operands of %s have mismatched types %s and %s", op, lhs.Type(), rhs.Type())
		return NewError(span, "compare type mismatch")
	}
	return &Compare{base: base{span: span, typ: boolType}, Op: op, LHS: lhs, RHS: rhs}
}

// Call validates and constructs a Call expression: fn must be
// closure-typed, and the argument list's arity/types must match the
// signature (variadic closures accept any number of trailing arguments
// beyond the declared parameters).
func Call(sink *diag.Sink, span source.Span, fn Node, args []Node) Node {
	if poison := anyError(append([]Node{fn}, args...)...); poison != nil {
		return poison
	}
	sig := types.Follow(fn.Type())
	if sig == nil || sig.Kind() != types.KindClosure {
		sink.ReportCode(diag.Error, ErrTypeMismatch, span, "called expression is not a function")
		return NewError(span, "call of non-function")
	}
	params := sig.Params()
	if sig.Variadic() {
		if len(args) < len(params) {
			sink.ReportCode(diag.Error, ErrShapeMismatch, span,
				"call expects at least %d argument(s), got %d", len(params), len(args))
			return NewError(span, "call arity mismatch")
		}
	} else if len(args) != len(params) {
		sink.ReportCode(diag.Error, ErrShapeMismatch, span,
			"call expects %d argument(s), got %d", len(params), len(args))
		return NewError(span, "call arity mismatch")
	}
	for i, p := range params {
		if !types.Equals(args[i].Type(), p.Type) {
			sink.ReportCode(diag.Error, ErrTypeMismatch, span,
				"argument %d has type %s, expected %s", i, args[i].Type(), p.Type)
			return NewError(span, "call argument type mismatch")
		}
	}
	cp := make([]Node, len(args))
	copy(cp, args)
	return &Call{base: base{span: span, typ: sig.Result()}, Fn: fn, Args: cp}
}

// castPermitted implements the cast compatibility rules: widening
// digit->digit of the same sign, any pointer<->pointer, and an explicit
// alias<->its target.
func castPermitted(from, to *types.Type) bool {
	ff, ft := types.Follow(from), types.Follow(to)
	if types.Equals(ff, ft) {
		return true
	}
	if ff.Kind() == types.KindDigit && ft.Kind() == types.KindDigit {
		return ff.Sign() == ft.Sign() && ft.Width() >= ff.Width()
	}
	if ff.Kind() == types.KindPointer && ft.Kind() == types.KindPointer {
		return true
	}
	// Explicit alias<->target: either side is an (opaque) alias whose
	// target equals the other side.
	if from.Kind() == types.KindAlias && types.Equals(from.Target(), to) {
		return true
	}
	if to.Kind() == types.KindAlias && types.Equals(to.Target(), from) {
		return true
	}
	return false
}

// Cast validates and constructs a Cast expression.
func Cast(sink *diag.Sink, span source.Span, target *types.Type, expr Node) Node {
	if poison := anyError(expr); poison != nil {
		return poison
	}
	if !castPermitted(expr.Type(), target) {
		sink.ReportCode(diag.Error, ErrTypeMismatch, span,
			"cannot cast %s to %s", expr.Type(), target)
		return NewError(span, "invalid cast")
	}
	return &Cast{base: base{span: span, typ: target}, Operand: expr}
}

// isLvalue reports whether dst is a valid assignment target: a Name
// referencing a Global, Local, or Param decl, an Index, a Member, or a
// Load (dereference).
func isLvalue(dst Node) bool {
	switch d := dst.(type) {
	case *Name:
		switch d.Ref.Current().(type) {
		case *Global, *Local, *Param:
			return true
		}
		return false
	case *Index, *Member, *Load:
		return true
	default:
		return false
	}
}

// Assign validates and constructs an Assign statement.
func Assign(sink *diag.Sink, span source.Span, dst, src Node) Node {
	if poison := anyError(dst, src); poison != nil {
		return poison
	}
	if !isLvalue(dst) {
		sink.ReportCode(diag.Error, ErrShapeMismatch, span, "assignment target is not an lvalue")
		return NewError(span, "invalid assignment target")
	}
	if !types.Equals(dst.Type(), src.Type()) {
		sink.ReportCode(diag.Error, ErrTypeMismatch, span,
			"cannot assign %s to %s", src.Type(), dst.Type())
		return NewError(span, "assignment type mismatch")
	}
	return &Assign{base: base{span: span}, Dst: dst, Src: src}
}

// Return validates and constructs a Return statement against the result
// type of its enclosing function.
func Return(sink *diag.Sink, span source.Span, resultType *types.Type, value Node) Node {
	if value == nil {
		if resultType != nil && types.Follow(resultType).Kind() != types.KindVoid {
			sink.ReportCode(diag.Error, ErrTypeMismatch, span,
				"missing return value for result type %s", resultType)
			return NewError(span, "missing return value")
		}
		return &Return{base: base{span: span}, Value: nil}
	}
	if poison := anyError(value); poison != nil {
		return poison
	}
	if !types.Equals(value.Type(), resultType) {
		sink.ReportCode(diag.Error, ErrTypeMismatch, span,
			"return value has type %s, expected %s", value.Type(), resultType)
		return NewError(span, "return type mismatch")
	}
	return &Return{base: base{span: span}, Value: value}
}

func typeName(t *types.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}

// ClosureParams returns the parameter fields of n's closure type (Follow'd
// first, as the original closure_params query does).
func ClosureParams(n Node) []types.Field {
	t := types.Follow(n.Type())
	if t == nil || t.Kind() != types.KindClosure {
		return nil
	}
	return t.Params()
}

// ClosureResult returns the result type of n's closure type.
func ClosureResult(n Node) *types.Type {
	t := types.Follow(n.Type())
	if t == nil || t.Kind() != types.KindClosure {
		return nil
	}
	return t.Result()
}

// ClosureVariadic reports whether n's closure type accepts variadic
// arguments.
func ClosureVariadic(n Node) bool {
	t := types.Follow(n.Type())
	return t != nil && t.Kind() == types.KindClosure && t.Variadic()
}
