package tree

import "sort"

// Tag is the closed set of namespaces a module's declarations are filed
// under. The design notes call for a small fixed-size array of maps rather
// than a single map keyed by tag; Module.tags is exactly that, sized at
// construction so a driver that needs an additional tag can request extra
// slots up front.
type Tag int

const (
	TagValues Tag = iota
	TagTypes
	TagProcs
	TagModules

	// NumBuiltinTags is how many tags every module allocates by default.
	NumBuiltinTags = int(TagModules) + 1
)

func (t Tag) String() string {
	switch t {
	case TagValues:
		return "values"
	case TagTypes:
		return "types"
	case TagProcs:
		return "procs"
	case TagModules:
		return "modules"
	default:
		return "tag"
	}
}

// Entry is one (name, decl) pair from a tag-table snapshot, returned in
// canonical (lexicographic by name) order so iteration is deterministic
// across runs given the same input, per §5's ordering guarantee.
type Entry struct {
	Name string
	Decl *Decl
}

// Module is a namespace: a tag table of declarations plus a (possibly nil)
// parent to chain lookups through. It is itself a tree Node (KindModule).
type Module struct {
	base
	Name   string
	Parent *Module
	tags   []map[string]*Decl
}

func (m *Module) Kind() Kind { return KindModule }

// NewModule constructs an empty module with the builtin tag set plus
// extraTags additional caller-defined tag slots (indexed starting at
// NumBuiltinTags).
func NewModule(name string, parent *Module, extraTags int) *Module {
	n := NumBuiltinTags + extraTags
	tags := make([]map[string]*Decl, n)
	for i := range tags {
		tags[i] = make(map[string]*Decl)
	}
	return &Module{Name: name, Parent: parent, tags: tags}
}

func (m *Module) tableFor(tag Tag) map[string]*Decl {
	if int(tag) < 0 || int(tag) >= len(m.tags) {
		return nil
	}
	return m.tags[tag]
}

// AddDecl inserts an already-boxed decl under (tag, name). If the name is
// already present, AddDecl leaves the table untouched and returns the
// existing decl and added=false (first-write-wins, so callers can report a
// Redefinition diagnostic using the returned decl's span).
func (m *Module) AddDecl(tag Tag, name string, d *Decl) (existing *Decl, added bool) {
	tbl := m.tableFor(tag)
	if tbl == nil {
		return nil, false
	}
	if prior, ok := tbl[name]; ok {
		return prior, false
	}
	tbl[name] = d
	if n := d.Current(); n != nil {
		n.SetEnclosingModule(m)
	}
	return d, true
}

// Add boxes node in a fresh Decl and inserts it under (tag, name); see
// AddDecl for first-write-wins semantics.
func (m *Module) Add(tag Tag, name string, node Node) (existing *Decl, added bool) {
	return m.AddDecl(tag, name, NewDecl(node))
}

// Lookup searches this module's tag table, then its parent chain, for
// name. Returns (nil, false) if not found anywhere in the chain.
func (m *Module) Lookup(tag Tag, name string) (*Decl, bool) {
	for mod := m; mod != nil; mod = mod.Parent {
		if tbl := mod.tableFor(tag); tbl != nil {
			if d, ok := tbl[name]; ok {
				return d, true
			}
		}
	}
	return nil, false
}

// TagMap returns a canonical-order snapshot of this module's own tag table
// (not its parent chain) — the entries a resolve pass should walk for this
// module.
func (m *Module) TagMap(tag Tag) []Entry {
	tbl := m.tableFor(tag)
	out := make([]Entry, 0, len(tbl))
	for name, d := range tbl {
		out = append(out, Entry{Name: name, Decl: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Path returns the dotted canonical path from the root module to m,
// e.g. "a.b.c". The lowerer uses it as the prefix of every qualified symbol
// name; the lifetime sorts contexts by their registered path, not by this.
func (m *Module) Path() string {
	if m == nil {
		return ""
	}
	if m.Parent == nil {
		return m.Name
	}
	return m.Parent.Path() + "." + m.Name
}
