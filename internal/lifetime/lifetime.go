// Package lifetime implements the compilation mediator: the lifetime owns
// every driver context, runs drivers through the fixed four-stage sequence,
// and drives cookie-based cross-module resolution. Grounded on
// original_source/cthulhu/src/mediator/interface.c's lifetime_t and its
// lifetime_add_language/lifetime_parse/lifetime_resolve/lifetime_run_stage
// functions, and original_source/cthulhu/include/cthulhu/mediator/mediator.h's
// region_t sequencing.
package lifetime

import (
	"sort"

	"github.com/google/uuid"

	"github.com/cthulhu-project/cthulhu/internal/cookie"
	"github.com/cthulhu-project/cthulhu/internal/diag"
	"github.com/cthulhu-project/cthulhu/internal/driver"
	"github.com/cthulhu-project/cthulhu/internal/source"
	"github.com/cthulhu-project/cthulhu/internal/tree"
)

// Mediator is the top-level, effectively-process-wide identity: a name and
// version, shared by every lifetime constructed under it. Corresponds to
// mediator_t.
type Mediator struct {
	ID      string
	Version string
}

// NewMediator constructs a mediator identity.
func NewMediator(id, version string) *Mediator {
	return &Mediator{ID: id, Version: version}
}

// RegionHook observes the start and end of a named region (see Region). It
// carries no semantic weight; a Lifetime with no hook installed runs
// identically to one with a hook that only logs.
type RegionHook func(name string, ending bool)

// Lifetime owns every context created during one compilation run: the
// driver registry, the shared diagnostics sink, the shared resolution
// cookie, and a canonical-path -> Context map.
type Lifetime struct {
	Parent   *Mediator
	Cookie   *cookie.Cookie
	Registry *driver.Registry

	sink     *diag.Sink
	contexts map[string]*driver.Context
	onRegion RegionHook
}

// NewLifetime constructs an empty lifetime under mediator.
func NewLifetime(parent *Mediator) *Lifetime {
	sink := diag.NewSink()
	return &Lifetime{
		Parent:   parent,
		sink:     sink,
		Cookie:   cookie.New(sink),
		Registry: driver.NewRegistry(),
		contexts: make(map[string]*driver.Context),
	}
}

var _ driver.Host = (*Lifetime)(nil)

// Sink implements driver.Host.
func (l *Lifetime) Sink() *diag.Sink { return l.sink }

// SetRegionHook installs the listener invoked around every Region call. Pass
// nil to remove it.
func (l *Lifetime) SetRegionHook(hook RegionHook) { l.onRegion = hook }

// Region brackets fn with a named region, matching the original
// mediator's eRegionLoadCompiler..eRegionEnd sequencing and its fnRegion
// plugin callback ("called when a region begins"): purely for logging and
// tracing, invoked around each run_stage call by the CLI host. It carries
// no semantic weight and participates in no diagnostic or resolution
// behavior; a Lifetime with no hook installed just runs fn.
func (l *Lifetime) Region(name string, fn func()) {
	if l.onRegion != nil {
		l.onRegion(name, false)
		defer l.onRegion(name, true)
	}
	fn()
}

// AddContext registers ctx under path — it is the driver's responsibility
// to call this from within Parse, matching the original's "it is the
// driver's responsibility to call add_context" contract.
func (l *Lifetime) AddContext(path string, ctx *driver.Context) {
	l.contexts[path] = ctx
}

// AddLanguage registers driver under every extension it lists, then invokes
// its Create callback once. A clashing extension or driver id is reported
// as an Internal diagnostic rather than treated as fatal — matching the
// original's "TODO: handle this" next to its eInternal report, which never
// aborted registration of the rest.
func (l *Lifetime) AddLanguage(d *driver.Driver) {
	for _, msg := range l.Registry.Register(d) {
		l.sink.ReportCode(diag.Internal, tree.ErrInternalInvariant, source.Builtin, "%s", msg)
	}
	if d.Create != nil {
		d.Create(l)
	}
}

// Parse invokes driver.Parse for one source handle. The driver is
// responsible for calling AddContext itself during the call.
func (l *Lifetime) Parse(d *driver.Driver, handle *source.Handle) {
	if d.Parse == nil {
		return
	}
	d.Parse(l, handle)
}

// ParseExtension looks up the driver registered for handle's file extension
// and parses through it; reports an UndefinedReference diagnostic at Error
// level if no driver claims the extension (there's no source-level span to
// blame, so it is reported at the builtin span).
func (l *Lifetime) ParseExtension(ext string, handle *source.Handle) {
	d, ok := l.Registry.ByExtension(ext)
	if !ok {
		l.sink.ReportCode(diag.Error, tree.ErrUndefinedReference, source.Builtin,
			"no driver registered for extension %q", ext)
		return
	}
	l.Parse(d, handle)
}

// Resolve walks every module depth-first and calls Cookie.Resolve on every
// decl reachable through the Values, Types, and Procs tags (that fixed
// order — §5's tag-iteration-order guarantee), recursing into child modules
// filed under the Modules tag. A phase must not proceed if this produced
// any Error+ diagnostics; callers check l.sink.HasErrors() themselves.
func (l *Lifetime) Resolve() {
	for _, path := range l.sortedPaths() {
		ctx := l.contexts[path]
		if ctx == nil || ctx.Root == nil {
			continue
		}
		l.resolveModule(ctx.Root)
	}
}

func (l *Lifetime) resolveModule(m *tree.Module) {
	for _, tag := range []tree.Tag{tree.TagValues, tree.TagTypes, tree.TagProcs} {
		for _, entry := range m.TagMap(tag) {
			l.Cookie.Resolve(entry.Decl)
		}
	}
	for _, entry := range m.TagMap(tree.TagModules) {
		if child, ok := entry.Decl.Current().(*tree.Module); ok {
			l.resolveModule(child)
		}
	}
}

// RunStage invokes stage's callback on every context whose driver declares
// one, skipping contexts that don't require compiling (RequiresCompiling)
// or whose driver has no pass for this stage. Iteration is in canonical
// path order for determinism (§5).
func (l *Lifetime) RunStage(stage driver.Stage) {
	for _, path := range l.sortedPaths() {
		ctx := l.contexts[path]
		if ctx == nil || !ctx.RequiresCompiling() || ctx.Driver == nil {
			continue
		}
		pass := ctx.Driver.PassFor(stage)
		if pass == nil {
			continue
		}
		pass(ctx)
	}
}

// CollectModules returns every root module keyed by its registered path.
func (l *Lifetime) CollectModules() map[string]*tree.Module {
	out := make(map[string]*tree.Module, len(l.contexts))
	for path, ctx := range l.contexts {
		if ctx.Root != nil {
			out[path] = ctx.Root
		}
	}
	return out
}

func (l *Lifetime) sortedPaths() []string {
	paths := make([]string, 0, len(l.contexts))
	for p := range l.contexts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// NewContext constructs a fresh per-translation-unit context tagged with a
// random identity, for a driver's Parse callback to populate and register.
func NewContext(handle *source.Handle, host driver.Host, d *driver.Driver) *driver.Context {
	return &driver.Context{ID: uuid.New(), Host: host, Driver: d, Handle: handle}
}
