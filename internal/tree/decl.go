package tree

import "github.com/cthulhu-project/cthulhu/internal/source"

// Decl is the mutable box every potentially forward-declared symbol is
// referenced through: module tag tables, and any expression node that
// names a declaration (Name.Ref, Call targets reached through a name,
// etc.), all hold a *Decl rather than a Node directly. Resolution (see
// internal/cookie) replaces the boxed Node in place once a Forward
// placeholder is resolved, so every existing reference observes the
// finished declaration without needing to be patched individually.
type Decl struct {
	current Node
}

// NewDecl boxes n, which may be a finished node or a Forward placeholder
// still to be resolved.
func NewDecl(n Node) *Decl {
	return &Decl{current: n}
}

// Current returns the node currently boxed — a *Forward if this decl has
// not yet been resolved, or the finished declaration (or an *Error) once
// it has.
func (d *Decl) Current() Node {
	if d == nil {
		return nil
	}
	return d.current
}

// Replace swaps the boxed node. Only internal/cookie's Resolve should call
// this; it is exported because cookie lives in a separate package but the
// two are tightly coupled by design (see internal/cookie's doc comment).
func (d *Decl) Replace(n Node) {
	d.current = n
}

// IsForward reports whether this decl is still an unresolved placeholder.
func (d *Decl) IsForward() bool {
	return d != nil && d.current != nil && d.current.Kind() == KindForward
}

// ResolutionContext is the narrow interface a Forward node's resolver
// callback uses to recursively resolve other decls it touches while
// building its own result. internal/cookie's *Cookie implements this; tree
// depends on no part of cookie so the two packages don't form a cycle.
type ResolutionContext interface {
	Resolve(decl *Decl) Node
}

// Resolver is the deferred construction routine stored on a Forward node.
// It is expected to build and return the finished node (of ExpectedKind),
// using ctx to resolve any other decls it needs along the way. Any sema
// state the resolver needs (symbol environment, parse context, etc.) is
// captured by the closure itself when the driver creates the Forward node.
type Resolver func(ctx ResolutionContext) Node

// Forward is a placeholder for a not-yet-built declaration. It promises
// that, once resolved, the decl will be of ExpectedKind.
type Forward struct {
	base
	ExpectedKind Kind
	Fn           Resolver
}

func (f *Forward) Kind() Kind { return KindForward }

// NewForward constructs a Forward placeholder for a decl expected to
// eventually resolve to expectedKind, using fn to perform the deferred
// construction.
func NewForward(expectedKind Kind, fn Resolver) *Forward {
	return &Forward{ExpectedKind: expectedKind, Fn: fn}
}

// Error is poison: the result of a failed construction or a broken cycle.
// Diagnostics must already have been reported at the site that produced
// it — Error itself carries only a human-readable summary for debugging.
type Error struct {
	base
	Message string
}

func (e *Error) Kind() Kind { return KindError }

// NewError constructs a poison Error node at span with the given message.
func NewError(span source.Span, message string) *Error {
	return &Error{base: base{span: span}, Message: message}
}

// IsError reports whether n is an Error node. For a Decl, pass
// decl.Current().
func IsError(n Node) bool {
	_, ok := n.(*Error)
	return ok
}
