package tree

// These are the library-level error kinds from the error taxonomy: the
// `Code` attached to a diag.Message when a tree builder (see builder.go) or
// the resolution cookie rejects something. They are not a transport-level
// error type — they just let tests and tooling identify which invariant
// fired without string-matching message text.
const (
	ErrTypeMismatch      = "TypeMismatch"
	ErrShapeMismatch     = "ShapeMismatch"
	ErrUndefinedReference = "UndefinedReference"
	ErrRedefinition      = "Redefinition"
	ErrCyclicDependency  = "CyclicDependency"
	ErrInvalidLiteral    = "InvalidLiteral"
	ErrInternalInvariant = "InternalInvariant"
)
