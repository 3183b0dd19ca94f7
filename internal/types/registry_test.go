package types

import (
	"testing"

	"github.com/cthulhu-project/cthulhu/internal/digit"
	"github.com/stretchr/testify/require"
)

type constLength string

func (c constLength) Key() string    { return string(c) }
func (c constLength) String() string { return string(c) }

func TestStructuralTypesDedupAndEqual(t *testing.T) {
	r := NewRegistry()

	i32a := r.Digit(digit.Signed, digit.Int)
	i32b := r.Digit(digit.Signed, digit.Int)
	require.Same(t, i32a, i32b, "digit types must be interned by shape")
	require.True(t, Equals(i32a, i32b))

	ptrA := r.Pointer(i32a, false)
	ptrB := r.Pointer(i32b, false)
	require.Same(t, ptrA, ptrB)

	arrA := r.Array(i32a, constLength("4"))
	arrB := r.Array(i32a, constLength("4"))
	require.Same(t, arrA, arrB)

	closA := r.Closure([]Field{{Name: "x", Type: i32a}}, r.Bool(), false)
	closB := r.Closure([]Field{{Name: "x", Type: i32a}}, r.Bool(), false)
	require.Same(t, closA, closB)
}

func TestNominalTypesAreNeverEqual(t *testing.T) {
	r := NewRegistry()
	a := r.Record("Point", []Field{{Name: "x", Type: r.Digit(digit.Signed, digit.Int)}})
	b := r.Record("Point", []Field{{Name: "x", Type: r.Digit(digit.Signed, digit.Int)}})
	require.NotSame(t, a, b)
	require.False(t, Equals(a, b), "two independently constructed nominal types must never be equal")
}

func TestAliasTransparency(t *testing.T) {
	r := NewRegistry()
	i32 := r.Digit(digit.Signed, digit.Int)

	transparent := r.Alias("MyInt", i32, false)
	require.True(t, Equals(transparent, i32), "a transparent alias must equal its target")

	opaque := r.Alias("MyInt", i32, true)
	require.False(t, Equals(opaque, i32), "an opaque alias must never equal its target")

	opaque2 := r.Alias("MyInt", i32, true)
	require.False(t, Equals(opaque, opaque2), "distinct opaque aliases are never equal")
}

func TestFollowPeelsOnlyTransparentAliases(t *testing.T) {
	r := NewRegistry()
	i32 := r.Digit(digit.Signed, digit.Int)
	transparent := r.Alias("MyInt", i32, false)
	chained := r.Alias("YourInt", transparent, false)
	require.Same(t, i32, Follow(chained))

	opaque := r.Alias("Handle", i32, true)
	require.Same(t, opaque, Follow(opaque), "Follow must not peel an opaque alias")
}

func TestClosureEqualityRequiresArityVariadicAndParams(t *testing.T) {
	r := NewRegistry()
	i32 := r.Digit(digit.Signed, digit.Int)
	b := r.Bool()

	c1 := r.Closure([]Field{{Name: "a", Type: i32}}, b, false)
	c2 := r.Closure([]Field{{Name: "a", Type: i32}, {Name: "b", Type: i32}}, b, false)
	require.False(t, Equals(c1, c2))

	c3 := r.Closure([]Field{{Name: "a", Type: i32}}, b, true)
	require.False(t, Equals(c1, c3), "variadic flag must factor into equality")
}
