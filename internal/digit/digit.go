// Package digit implements the arbitrary-precision integer values that back
// digit-typed literals and constants throughout the tree IR and SSA model.
//
// The reference C implementation stores literals as GMP mpz_t values; the
// standard library's math/big.Int is the direct Go analogue (immutable by
// convention once constructed, arbitrary precision, well tested) and no
// third-party big-integer library appears anywhere in the example corpus —
// the closest candidates (shopspring/decimal, cockroachdb/apd) are
// fixed-point *decimal* libraries aimed at currency arithmetic, not a
// drop-in replacement for arbitrary-precision integers, so we use math/big
// directly rather than force a poor semantic fit.
package digit

import (
	"fmt"
	"math/big"
)

// Width is the bit width of a digit type, mirroring the original compiler's
// digit_t enum.
type Width int

const (
	Char Width = iota
	Short
	Int
	Long
	Size
	IntPtr
	IntMax
)

func (w Width) String() string {
	switch w {
	case Char:
		return "char"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Size:
		return "size"
	case IntPtr:
		return "intptr"
	case IntMax:
		return "intmax"
	default:
		return fmt.Sprintf("width(%d)", int(w))
	}
}

// Bits returns the number of bits this width occupies on the (single)
// target model the core assumes: LP64-style (32-bit int, 64-bit long),
// with intmax_t as the widest representable digit type.
func (w Width) Bits() int {
	switch w {
	case Char:
		return 8
	case Short:
		return 16
	case Int:
		return 32
	case Long, Size, IntPtr, IntMax:
		return 64
	default:
		return 64
	}
}

// Sign is whether a digit type is signed or unsigned.
type Sign int

const (
	Signed Sign = iota
	Unsigned
)

func (s Sign) String() string {
	if s == Unsigned {
		return "unsigned"
	}
	return "signed"
}

// Value is an immutable arbitrary-precision integer literal value. Values
// are never mutated after construction; this package offers no arithmetic
// on them.
type Value struct {
	i *big.Int
}

// New wraps an existing big.Int, cloning it so the returned Value can never
// be mutated through the caller's reference.
func New(i *big.Int) Value {
	return Value{i: new(big.Int).Set(i)}
}

// FromInt64 builds a Value from a machine integer.
func FromInt64(v int64) Value {
	return Value{i: big.NewInt(v)}
}

// Parse parses a decimal (or 0x/0o/0b prefixed) integer literal.
func Parse(text string) (Value, bool) {
	i, ok := new(big.Int).SetString(text, 0)
	if !ok {
		return Value{}, false
	}
	return Value{i: i}, true
}

// Int returns the underlying big.Int. Callers must not mutate it.
func (v Value) Int() *big.Int {
	if v.i == nil {
		return big.NewInt(0)
	}
	return v.i
}

func (v Value) String() string {
	return v.Int().String()
}

// Bounds returns the inclusive [min, max] representable range for a digit
// type of the given sign and width.
func Bounds(sign Sign, width Width) (min, max *big.Int) {
	bits := width.Bits()
	if sign == Unsigned {
		max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
		return big.NewInt(0), max
	}
	half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	min = new(big.Int).Neg(half)
	max = new(big.Int).Sub(half, big.NewInt(1))
	return min, max
}

// InRange reports whether v fits within the representable range of a digit
// type of the given sign and width. A literal outside this range is an
// InvalidLiteral error at the tree-builder level.
func (v Value) InRange(sign Sign, width Width) bool {
	min, max := Bounds(sign, width)
	n := v.Int()
	return n.Cmp(min) >= 0 && n.Cmp(max) <= 0
}
