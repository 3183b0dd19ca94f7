package tree

import "fmt"

// ArrayLen implements types.ArrayLength for a tree-level constant length
// expression, so the types package can key and display array types without
// importing tree (see types.ArrayLength's doc comment for why the
// dependency runs this direction).
type ArrayLen struct {
	// Expr is the constant expression naming the length. In practice this
	// is always a *DigitLiteral today (nothing in the core builds a dynamic
	// array length), but the field holds a general
	// Node so a future const-folding pass has somewhere to attach a richer
	// expression without changing this type's shape.
	Expr Node
}

// NewArrayLen wraps expr as an array length operand.
func NewArrayLen(expr Node) ArrayLen {
	return ArrayLen{Expr: expr}
}

// Key returns a stable dedup key: the literal's decimal value when Expr is
// a resolved DigitLiteral, or an identity-derived fallback otherwise so two
// distinct unresolved lengths never accidentally collide.
func (a ArrayLen) Key() string {
	if lit, ok := a.Expr.(*DigitLiteral); ok {
		return lit.Value.String()
	}
	return fmt.Sprintf("expr:%p", a.Expr)
}

func (a ArrayLen) String() string {
	if lit, ok := a.Expr.(*DigitLiteral); ok {
		return lit.Value.String()
	}
	return "<n>"
}
