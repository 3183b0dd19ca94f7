package driver

import "fmt"

// Registry maps file extensions to the driver registered for them, mirroring
// add_language_extension's map_t of extension -> language_t.
type Registry struct {
	byID  map[string]*Driver
	byExt map[string]*Driver
}

// NewRegistry constructs an empty driver registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Driver), byExt: make(map[string]*Driver)}
}

// Register adds d under every extension it lists. A clash — either the
// driver ID or one of its extensions already registered to a different
// driver — leaves the earlier registration in place and is reported as a
// diagnostic-worthy condition by returning one message per clash rather
// than panicking; the
// original C mediator treats this the same way ("TODO: handle this" next to
// an eInternal report, never a hard abort).
func (r *Registry) Register(d *Driver) (clashes []string) {
	if prior, ok := r.byID[d.ID]; ok && prior != d {
		clashes = append(clashes, fmt.Sprintf("driver id %q already registered", d.ID))
	} else {
		r.byID[d.ID] = d
	}
	for _, ext := range d.Extensions {
		if prior, ok := r.byExt[ext]; ok && prior != d {
			clashes = append(clashes, fmt.Sprintf("extension %q already registered to driver %q", ext, prior.ID))
			continue
		}
		r.byExt[ext] = d
	}
	return clashes
}

// ByExtension looks up the driver registered for a file extension.
func (r *Registry) ByExtension(ext string) (*Driver, bool) {
	d, ok := r.byExt[ext]
	return d, ok
}

// ByID looks up a driver by its declared id.
func (r *Registry) ByID(id string) (*Driver, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// All returns every registered driver, in no particular order.
func (r *Registry) All() []*Driver {
	seen := make(map[*Driver]bool, len(r.byID))
	out := make([]*Driver, 0, len(r.byID))
	for _, d := range r.byID {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
