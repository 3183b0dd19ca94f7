// Package types implements the tree type system: the TreeType discriminated
// union, its structural/nominal equality rules, and the canonicalizing
// Registry that constructs and deduplicates types the way the original
// hlir type system does (see cthulhu/include/cthulhu/hlir/hlir.h in the
// reference C sources this was distilled from).
package types

import (
	"fmt"
	"strings"

	"github.com/cthulhu-project/cthulhu/internal/digit"
)

// Kind tags which TreeType variant a Type value holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindUnit
	KindBool
	KindVoid
	KindDigit
	KindString
	KindPointer
	KindArray
	KindRecord
	KindUnion
	KindClosure
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindVoid:
		return "void"
	case KindDigit:
		return "digit"
	case KindString:
		return "string"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	case KindClosure:
		return "closure"
	case KindAlias:
		return "alias"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ArrayLength is the length operand of an array type. Array lengths are
// themselves tree values (a constant expression in the general case), so
// this package only depends on a small key/string interface rather than
// importing the tree package — avoiding a types<->tree import cycle. The
// tree package supplies the concrete implementation (see tree.ArrayLen).
type ArrayLength interface {
	// Key returns a value stable enough to use for structural equality and
	// deduplication: the decimal value for a resolved constant length, or
	// some identity-derived string for an as-yet-unresolved expression.
	Key() string
	String() string
}

// Field is one member of a Record or Union type, or one parameter of a
// Closure type.
type Field struct {
	Name string
	Type *Type
}

// Type is a canonical tree type. The zero value is not a valid Type; always
// obtain one through a Registry constructor.
type Type struct {
	kind Kind

	// Digit
	sign  digit.Sign
	width digit.Width

	// Pointer
	elem      *Type
	indexable bool

	// Array
	length ArrayLength

	// Record / Union
	name   string
	fields []Field

	// Closure
	params   []Field
	result   *Type
	variadic bool

	// Alias
	target *Type
	opaque bool
}

// Kind returns the discriminant of this type.
func (t Type) Kind() Kind { return t.kind }

// Sign returns the sign of a Digit type; only meaningful when Kind() ==
// KindDigit.
func (t Type) Sign() digit.Sign { return t.sign }

// Width returns the width of a Digit type; only meaningful when Kind() ==
// KindDigit.
func (t Type) Width() digit.Width { return t.width }

// Elem returns the pointee/element type of a Pointer or Array type.
func (t Type) Elem() *Type { return t.elem }

// Indexable reports whether a Pointer type supports index arithmetic.
func (t Type) Indexable() bool { return t.indexable }

// Length returns the length operand of an Array type.
func (t Type) Length() ArrayLength { return t.length }

// Name returns the nominal name of a Record or Union type.
func (t Type) Name() string { return t.name }

// Fields returns the ordered field list of a Record or Union type.
func (t Type) Fields() []Field { return t.fields }

// Params returns the ordered parameter list of a Closure type.
func (t Type) Params() []Field { return t.params }

// Result returns the result type of a Closure type.
func (t Type) Result() *Type { return t.result }

// Variadic reports whether a Closure type accepts a variable argument
// tail.
func (t Type) Variadic() bool { return t.variadic }

// Target returns the aliased type of an Alias type.
func (t Type) Target() *Type { return t.target }

// Opaque reports whether an Alias type is a "newtype" (never folds on
// equality) as opposed to a transparent alias (folds to its target).
func (t Type) Opaque() bool { return t.opaque }

func (t Type) String() string {
	switch t.kind {
	case KindEmpty:
		return "empty"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindVoid:
		return "void"
	case KindString:
		return "string"
	case KindDigit:
		return fmt.Sprintf("%s %s", t.sign, t.width)
	case KindPointer:
		if t.indexable {
			return fmt.Sprintf("%s[]*", t.elem.String())
		}
		return fmt.Sprintf("%s*", t.elem.String())
	case KindArray:
		return fmt.Sprintf("%s[%s]", t.elem.String(), t.length.String())
	case KindRecord:
		return fmt.Sprintf("struct %s", t.name)
	case KindUnion:
		return fmt.Sprintf("union %s", t.name)
	case KindClosure:
		parts := make([]string, len(t.params))
		for i, p := range t.params {
			parts[i] = p.Type.String()
		}
		variadic := ""
		if t.variadic {
			variadic = ", ..."
		}
		return fmt.Sprintf("(%s%s) -> %s", strings.Join(parts, ", "), variadic, t.result.String())
	case KindAlias:
		if t.opaque {
			return fmt.Sprintf("newtype %s", t.name)
		}
		return fmt.Sprintf("alias %s = %s", t.name, t.target.String())
	default:
		return "<invalid type>"
	}
}
