package tree

import (
	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/digit"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/types"
)

// DigitLiteral is an arbitrary-precision integer constant.
type DigitLiteral struct {
	base
	Value digit.Value
}

func (n *DigitLiteral) Kind() Kind { return KindDigitLiteral }

// NewDigitLiteral validates that value fits within typ's representable
// range before constructing the literal. Out-of-range literals are an
// InvalidLiteral error: the sink receives a diagnostic and the caller gets
// back an Error node rather than a DigitLiteral.
func NewDigitLiteral(sink *diag.Sink, span source.Span, typ *types.Type, value digit.Value) Node {
	if typ == nil || typ.Kind() != types.KindDigit {
		sink.ReportCode(diag.Internal, ErrInternalInvariant, span, "digit literal requires a digit type")
		return NewError(span, "digit literal requires a digit type")
	}
	if !value.InRange(typ.Sign(), typ.Width()) {
		sink.ReportCode(diag.Error, ErrInvalidLiteral, span,
			"digit literal %s out of range for %s %s", value.String(), typ.Sign(), typ.Width())
		return NewError(span, "invalid digit literal")
	}
	return &DigitLiteral{base: base{span: span, typ: typ}, Value: value}
}

// BoolLiteral is a boolean constant.
type BoolLiteral struct {
	base
	Value bool
}

func (n *BoolLiteral) Kind() Kind { return KindBoolLiteral }

// NewBoolLiteral constructs a bool literal of the registry's canonical Bool
// type.
func NewBoolLiteral(span source.Span, boolType *types.Type, value bool) *BoolLiteral {
	return &BoolLiteral{base: base{span: span, typ: boolType}, Value: value}
}

// StringLiteral is a string constant, stored as raw bytes plus its length
// (mirroring string_view_t in the reference implementation so multi-encoding
// strings can be added later without changing this shape).
type StringLiteral struct {
	base
	Bytes []byte
}

func (n *StringLiteral) Kind() Kind { return KindStringLiteral }

// Len returns the byte length of the literal.
func (n *StringLiteral) Len() int { return len(n.Bytes) }

// NewStringLiteral constructs a string literal of the registry's canonical
// String type.
func NewStringLiteral(span source.Span, stringType *types.Type, data []byte) *StringLiteral {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &StringLiteral{base: base{span: span, typ: stringType}, Bytes: cp}
}
