package lifetime_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/driver"
	"github.com/cthulhu-project/cthulhu/internal/lifetime"
	"github.com/cthulhu-project/cthulhu/internal/tree"
)

func TestAddLanguageRegistersExtensions(t *testing.T) {
	lt := lifetime.NewLifetime(lifetime.NewMediator("test", "0.0.0"))
	d := &driver.Driver{ID: "demo", DisplayName: "Demo", Extensions: []string{".demo"}}

	lt.AddLanguage(d)

	got, ok := lt.Registry.ByExtension(".demo")
	require.True(t, ok)
	require.Same(t, d, got)
	require.Equal(t, 0, lt.Sink().Count(diag.Internal))
}

func TestAddLanguageClashReportsInternal(t *testing.T) {
	lt := lifetime.NewLifetime(lifetime.NewMediator("test", "0.0.0"))
	a := &driver.Driver{ID: "a", Extensions: []string{".x"}}
	b := &driver.Driver{ID: "b", Extensions: []string{".x"}}

	lt.AddLanguage(a)
	lt.AddLanguage(b)

	require.Equal(t, 1, lt.Sink().Count(diag.Internal))
	got, _ := lt.Registry.ByExtension(".x")
	require.Same(t, a, got, "first registrant keeps the extension")
}

func TestResolveWalksModulesInCanonicalOrder(t *testing.T) {
	lt := lifetime.NewLifetime(lifetime.NewMediator("test", "0.0.0"))

	resolved := map[string]bool{}
	var order []string
	makeGlobal := func(name string) *tree.Decl {
		d := tree.NewDecl(nil)
		d.Replace(tree.NewForward(tree.KindGlobal, func(ctx tree.ResolutionContext) tree.Node {
			resolved[name] = true
			order = append(order, name)
			return &tree.Global{Name: name}
		}))
		return d
	}

	modB := tree.NewModule("b", nil, 0)
	modB.AddDecl(tree.TagValues, "y", makeGlobal("b.y"))
	modA := tree.NewModule("a", nil, 0)
	modA.AddDecl(tree.TagValues, "x", makeGlobal("a.x"))

	d := &driver.Driver{ID: "demo", Extensions: []string{".demo"}}
	lt.AddLanguage(d)
	lt.AddContext("b", &driver.Context{Host: lt, Driver: d, Root: modB})
	lt.AddContext("a", &driver.Context{Host: lt, Driver: d, Root: modA})

	lt.Resolve()

	require.True(t, resolved["a.x"])
	require.True(t, resolved["b.y"])
	require.Equal(t, []string{"a.x", "b.y"}, order, "contexts are resolved in sorted path order, not registration order")
}

func TestRegionRunsFnEvenWithoutHook(t *testing.T) {
	lt := lifetime.NewLifetime(lifetime.NewMediator("test", "0.0.0"))

	ran := false
	lt.Region("resolve", func() { ran = true })

	require.True(t, ran)
}

func TestRegionInvokesHookAroundFn(t *testing.T) {
	lt := lifetime.NewLifetime(lifetime.NewMediator("test", "0.0.0"))

	var events []string
	lt.SetRegionHook(func(name string, ending bool) {
		if ending {
			events = append(events, name+":end")
			return
		}
		events = append(events, name+":begin")
	})

	lt.Region("resolve", func() { events = append(events, "resolve:fn") })

	require.Equal(t, []string{"resolve:begin", "resolve:fn", "resolve:end"}, events)
}
