// Package cookie implements the resolution cookie: the single stack-based
// cycle detector that every lazy forward-declaration in the tree IR resolves
// through (see internal/tree's Forward/Decl types and §4.4 of the design
// notes). There is exactly one Cookie per lifetime, shared by every driver.
package cookie

import (
	"strings"

	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/tree"
)

// Cookie tracks the decls currently being resolved, in call order, so a
// resolver that (directly or transitively) re-enters one of its own
// ancestors is caught rather than recursing forever. It implements
// tree.ResolutionContext.
type Cookie struct {
	sink  *diag.Sink
	stack []*tree.Decl
}

// New constructs an empty resolution cookie reporting through sink.
func New(sink *diag.Sink) *Cookie {
	return &Cookie{sink: sink}
}

// Resolve forces decl to its finished form, per §4.4:
//  1. If decl is not currently boxing a Forward placeholder, return the
//     boxed node as-is (resolution idempotence — a second call on an
//     already-resolved decl is a no-op).
//  2. If decl is already on the stack, the resolver attempting to resolve
//     it again is a cycle: report CyclicDependency listing the path from
//     the repeated decl to the top, replace decl with an Error of the same
//     span, and return that.
//  3. Otherwise push decl, run its resolver with this cookie, pop, and
//     return the (by then replaced) boxed node.
func (c *Cookie) Resolve(decl *tree.Decl) tree.Node {
	if decl == nil {
		return nil
	}
	if !decl.IsForward() {
		return decl.Current()
	}
	if i := c.indexOf(decl); i >= 0 {
		return c.reportCycle(decl, i)
	}
	fwd := decl.Current().(*tree.Forward)
	enclosing := fwd.EnclosingModule()

	c.stack = append(c.stack, decl)
	result := fwd.Fn(c)
	c.stack = c.stack[:len(c.stack)-1]

	if result != nil && !tree.IsError(result) {
		result.SetEnclosingModule(enclosing)
	}

	if result == nil {
		c.sink.ReportCode(diag.Internal, tree.ErrInternalInvariant, decl.Current().Span(),
			"resolver for %s returned no node", fwd.ExpectedKind)
		decl.Replace(tree.NewError(decl.Current().Span(), "resolver produced no node"))
		return decl.Current()
	}
	if !tree.IsError(result) && result.Kind() != fwd.ExpectedKind {
		c.sink.ReportCode(diag.Internal, tree.ErrInternalInvariant, result.Span(),
			"resolver for %s produced %s", fwd.ExpectedKind, result.Kind())
		decl.Replace(tree.NewError(result.Span(), "resolver kind mismatch"))
		return decl.Current()
	}
	decl.Replace(result)
	return decl.Current()
}

func (c *Cookie) indexOf(decl *tree.Decl) int {
	for i, d := range c.stack {
		if d == decl {
			return i
		}
	}
	return -1
}

func (c *Cookie) reportCycle(decl *tree.Decl, at int) tree.Node {
	span := decl.Current().Span()
	var names []string
	for _, d := range c.stack[at:] {
		names = append(names, d.Current().Span().String())
	}
	names = append(names, span.String())
	c.sink.ReportCode(diag.Error, tree.ErrCyclicDependency, span,
		"cyclic dependency: %s", strings.Join(names, " -> "))
	errNode := tree.NewError(span, "cyclic resolution")
	decl.Replace(errNode)
	return errNode
}

// Depth reports how many resolutions are currently in progress; mainly
// useful for tests asserting the stack unwinds cleanly after each top-level
// Resolve call.
func (c *Cookie) Depth() int { return len(c.stack) }

var _ tree.ResolutionContext = (*Cookie)(nil)
