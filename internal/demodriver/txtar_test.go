package demodriver_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/cthulhu-project/cthulhu/internal/demodriver"
	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/lifetime"
	"github.com/cthulhu-project/cthulhu/internal/lower"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/types"
	"github.com/cthulhu-project/cthulhu/internal/verify"
)

// fixture bundles several translation units into one golden file, the way
// multi-file Go test corpora are commonly packaged — each -- name.demo --
// section becomes its own parsed module.
const fixture = `
-- a.demo --
global x = 1
func id(v) = v

-- b.demo --
global y = 2
func sq(v) = 4
`

func TestDemoDriverFixtureParsesEveryArchiveFile(t *testing.T) {
	arc := txtar.Parse([]byte(fixture))
	require.Len(t, arc.Files, 2)

	reg := types.NewRegistry()
	lt := lifetime.NewLifetime(lifetime.NewMediator("test", "0.0.0"))
	lt.AddLanguage(demodriver.New(reg))

	for _, f := range arc.Files {
		handle := source.NewHandle(f.Name, demodriver.ID, f.Data)
		lt.ParseExtension(demodriver.Extension, handle)
	}
	require.Equal(t, 0, lt.Sink().Count(diag.Error))

	lt.Resolve()
	require.Equal(t, 0, lt.Sink().Count(diag.Error))

	l := lower.New(lt.Sink())
	symbols := l.LowerAll(lt.CollectModules())

	x, ok := symbols["a::x"]
	require.True(t, ok)
	require.Equal(t, int64(1), x.Value.Digit.Int().Int64())

	y, ok := symbols["b::y"]
	require.True(t, ok)
	require.Equal(t, int64(2), y.Value.Digit.Int().Int64())

	sq, ok := symbols["b::sq"]
	require.True(t, ok)
	res := verify.Symbol(sq)
	require.True(t, res.OK(), "%v", res.Errors)
}
