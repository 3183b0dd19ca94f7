package lifetime_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/cthulhu-project/cthulhu/internal/demodriver"
	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/lifetime"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/types"
)

// A fixture bundling two independent translation units in one golden file;
// ParseExtension/Resolve must process every context it names regardless of
// the order the archive lists them in, per §5's sorted-path determinism.
const twoUnitFixture = `
-- one.demo --
global first = 10

-- two.demo --
global second = 20
`

func TestResolveProcessesEveryFixtureFile(t *testing.T) {
	arc := txtar.Parse([]byte(twoUnitFixture))

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

	modules := lt.CollectModules()
	require.Len(t, modules, 2)
	require.Contains(t, modules, "one.demo")
	require.Contains(t, modules, "two.demo")
}
