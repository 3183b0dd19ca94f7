package demodriver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cthulhu-project/cthulhu/internal/demodriver"
	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/lifetime"
	"github.com/cthulhu-project/cthulhu/internal/lower"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/types"
	"github.com/cthulhu-project/cthulhu/internal/verify"
)

func TestDemoDriverParsesGlobalsAndFunctions(t *testing.T) {
	reg := types.NewRegistry()
	lt := lifetime.NewLifetime(lifetime.NewMediator("test", "0.0.0"))
	d := demodriver.New(reg)
	lt.AddLanguage(d)

	src := "# a comment\nglobal x = 41\nfunc id(v) = v\n"
	handle := source.NewHandle("a.demo", demodriver.ID, []byte(src))
	lt.ParseExtension(demodriver.Extension, handle)

	require.Equal(t, 0, lt.Sink().Count(diag.Error))

	lt.Resolve()
	require.Equal(t, 0, lt.Sink().Count(diag.Error))

	l := lower.New(lt.Sink())
	symbols := l.LowerAll(lt.CollectModules())

	x, ok := symbols["a::x"]
	require.True(t, ok)
	require.NotNil(t, x.Value)
	require.Equal(t, int64(41), x.Value.Digit.Int().Int64())

	id, ok := symbols["a::id"]
	require.True(t, ok)
	res := verify.Symbol(id)
	require.True(t, res.OK(), "%v", res.Errors)
}

func TestDemoDriverReportsRedefinition(t *testing.T) {
	reg := types.NewRegistry()
	lt := lifetime.NewLifetime(lifetime.NewMediator("test", "0.0.0"))
	d := demodriver.New(reg)
	lt.AddLanguage(d)

	src := "global x = 1\nglobal x = 2\n"
	handle := source.NewHandle("b.demo", demodriver.ID, []byte(src))
	lt.ParseExtension(demodriver.Extension, handle)

	require.Equal(t, 1, lt.Sink().Count(diag.Error))
}

func TestDemoDriverReportsUnrecognizedStatement(t *testing.T) {
	reg := types.NewRegistry()
	lt := lifetime.NewLifetime(lifetime.NewMediator("test", "0.0.0"))
	lt.AddLanguage(demodriver.New(reg))

	handle := source.NewHandle("c.demo", demodriver.ID, []byte("not a valid line\n"))
	lt.ParseExtension(demodriver.Extension, handle)

	require.Equal(t, 1, lt.Sink().Count(diag.Error))
}
