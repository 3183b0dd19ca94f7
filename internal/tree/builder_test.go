package tree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/digit"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/tree"
	"github.com/cthulhu-project/cthulhu/internal/types"
)

func TestCallVariadicAcceptsExtraArguments(t *testing.T) {
	reg := types.NewRegistry()
	intType := reg.Digit(digit.Signed, digit.Int)
	sig := reg.Closure([]types.Field{{Name: "a", Type: intType}}, intType, true)
	sink := diag.NewSink()

	fn := &stubNode{typ: sig}
	a := &stubNode{typ: intType}
	b := &stubNode{typ: intType}
	c := &stubNode{typ: intType}

	n := tree.Call(sink, source.Builtin, fn, []tree.Node{a, b, c})
	require.False(t, tree.IsError(n))
	require.Equal(t, 0, sink.Count(diag.Error))
}

func TestCallVariadicWithFewerThanParamsIsShapeMismatch(t *testing.T) {
	reg := types.NewRegistry()
	intType := reg.Digit(digit.Signed, digit.Int)
	sig := reg.Closure([]types.Field{{Name: "a", Type: intType}, {Name: "b", Type: intType}}, intType, true)
	sink := diag.NewSink()

	fn := &stubNode{typ: sig}
	a := &stubNode{typ: intType}

	n := tree.Call(sink, source.Builtin, fn, []tree.Node{a})
	require.True(t, tree.IsError(n))
	require.Equal(t, tree.ErrShapeMismatch, sink.Messages()[0].Code)
}

func TestCallNonVariadicRejectsWrongArity(t *testing.T) {
	reg := types.NewRegistry()
	intType := reg.Digit(digit.Signed, digit.Int)
	sig := reg.Closure([]types.Field{{Name: "a", Type: intType}}, intType, false)
	sink := diag.NewSink()

	fn := &stubNode{typ: sig}
	n := tree.Call(sink, source.Builtin, fn, nil)
	require.True(t, tree.IsError(n))
	require.Equal(t, tree.ErrShapeMismatch, sink.Messages()[0].Code)
}

func TestBinaryPropagatesPoisonWithoutReReporting(t *testing.T) {
	reg := types.NewRegistry()
	intType := reg.Digit(digit.Signed, digit.Int)
	sink := diag.NewSink()

	poison := tree.NewError(source.Builtin, "already broken")
	rhs := &stubNode{typ: intType}

	n := tree.Binary(sink, source.Builtin, tree.BinaryAdd, poison, rhs)
	require.Same(t, poison, n)
	require.Equal(t, 0, sink.Count(diag.Error), "poison propagation must not re-report")
}

// stubNode is a minimal Node implementation for builder tests that only
// need a Type() and a stable Kind/Span, not a real expression shape.
type stubNode struct {
	typ     *types.Type
	attribs tree.Attribs
}

func (s *stubNode) Kind() tree.Kind                 { return tree.KindError }
func (s *stubNode) Span() source.Span               { return source.Builtin }
func (s *stubNode) Type() *types.Type               { return s.typ }
func (s *stubNode) Attribs() *tree.Attribs          { return &s.attribs }
func (s *stubNode) EnclosingModule() *tree.Module   { return nil }
func (s *stubNode) SetEnclosingModule(*tree.Module) {}
