package digit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cthulhu-project/cthulhu/internal/digit"
)

func TestUnsignedCharBoundaryIsInRange(t *testing.T) {
	v, ok := digit.Parse("255")
	require.True(t, ok)
	require.True(t, v.InRange(digit.Unsigned, digit.Char))
}

func TestUnsignedCharOverflowIsOutOfRange(t *testing.T) {
	v, ok := digit.Parse("256")
	require.True(t, ok)
	require.False(t, v.InRange(digit.Unsigned, digit.Char))
}

func TestSignedCharBounds(t *testing.T) {
	min, ok := digit.Parse("-128")
	require.True(t, ok)
	require.True(t, min.InRange(digit.Signed, digit.Char))

	max, ok := digit.Parse("127")
	require.True(t, ok)
	require.True(t, max.InRange(digit.Signed, digit.Char))

	over, ok := digit.Parse("128")
	require.True(t, ok)
	require.False(t, over.InRange(digit.Signed, digit.Char))
}

func TestParseRejectsMalformedLiteral(t *testing.T) {
	_, ok := digit.Parse("not-a-number")
	require.False(t, ok)
}

func TestParseAcceptsPrefixedLiterals(t *testing.T) {
	hex, ok := digit.Parse("0x2a")
	require.True(t, ok)
	require.Equal(t, int64(42), hex.Int().Int64())
}
