package types

import (
	"fmt"
	"strings"

	"github.com/cthulhu-project/cthulhu/internal/digit"
)

// Registry constructs and canonicalizes tree types. Structural types
// (pointer, array, closure, digit) are deduplicated by shape, so two calls
// describing the same shape return the identical *Type and pointer equality
// implies semantic equality for those variants. Named nominal types
// (record, union, opaque alias) are never deduplicated — each construction
// produces a fresh, distinct identity even if given the same name.
//
// A Registry is not safe for concurrent use; per the core's single-threaded
// scheduling model (internal/lifetime) it never needs to be.
type Registry struct {
	singletons map[Kind]*Type
	digits     map[digit.Sign]map[digit.Width]*Type
	pointers   map[string]*Type
	arrays     map[string]*Type
	closures   map[string]*Type
}

// NewRegistry constructs an empty type registry.
func NewRegistry() *Registry {
	return &Registry{
		singletons: make(map[Kind]*Type),
		digits:     make(map[digit.Sign]map[digit.Width]*Type),
		pointers:   make(map[string]*Type),
		arrays:     make(map[string]*Type),
		closures:   make(map[string]*Type),
	}
}

func (r *Registry) singleton(k Kind) *Type {
	if t, ok := r.singletons[k]; ok {
		return t
	}
	t := &Type{kind: k}
	r.singletons[k] = t
	return t
}

// Empty returns the canonical Empty type (never a value).
func (r *Registry) Empty() *Type { return r.singleton(KindEmpty) }

// Unit returns the canonical Unit type.
func (r *Registry) Unit() *Type { return r.singleton(KindUnit) }

// Bool returns the canonical Bool type.
func (r *Registry) Bool() *Type { return r.singleton(KindBool) }

// Void returns the canonical Void type.
func (r *Registry) Void() *Type { return r.singleton(KindVoid) }

// String returns the canonical String type.
func (r *Registry) String() *Type { return r.singleton(KindString) }

// Digit returns the canonical digit type for a sign/width pair.
func (r *Registry) Digit(sign digit.Sign, width digit.Width) *Type {
	byWidth, ok := r.digits[sign]
	if !ok {
		byWidth = make(map[digit.Width]*Type)
		r.digits[sign] = byWidth
	}
	if t, ok := byWidth[width]; ok {
		return t
	}
	t := &Type{kind: KindDigit, sign: sign, width: width}
	byWidth[width] = t
	return t
}

// Pointer returns the canonical pointer type to elem, with or without
// index arithmetic.
func (r *Registry) Pointer(elem *Type, indexable bool) *Type {
	key := fmt.Sprintf("%p:%v", elem, indexable)
	if t, ok := r.pointers[key]; ok {
		return t
	}
	t := &Type{kind: KindPointer, elem: elem, indexable: indexable}
	r.pointers[key] = t
	return t
}

// Array returns the canonical array type of elem with the given length.
func (r *Registry) Array(elem *Type, length ArrayLength) *Type {
	key := fmt.Sprintf("%p:%s", elem, length.Key())
	if t, ok := r.arrays[key]; ok {
		return t
	}
	t := &Type{kind: KindArray, elem: elem, length: length}
	r.arrays[key] = t
	return t
}

// Closure returns the canonical closure type for the given signature.
// Closures are deduplicated structurally: same arity, same variadic flag,
// pairwise-equal parameter types (by pointer, since parameter types are
// themselves canonical), and equal result type all collapse to one Type.
func (r *Registry) Closure(params []Field, result *Type, variadic bool) *Type {
	var b strings.Builder
	fmt.Fprintf(&b, "%p:%v:", result, variadic)
	for _, p := range params {
		fmt.Fprintf(&b, "%p,", p.Type)
	}
	key := b.String()
	if t, ok := r.closures[key]; ok {
		return t
	}
	cp := make([]Field, len(params))
	copy(cp, params)
	t := &Type{kind: KindClosure, params: cp, result: result, variadic: variadic}
	r.closures[key] = t
	return t
}

// Record constructs a fresh, never-deduplicated record (struct) type.
func (r *Registry) Record(name string, fields []Field) *Type {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return &Type{kind: KindRecord, name: name, fields: cp}
}

// Union constructs a fresh, never-deduplicated union type.
func (r *Registry) Union(name string, fields []Field) *Type {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return &Type{kind: KindUnion, name: name, fields: cp}
}

// Alias constructs a fresh named alias. When opaque is false the alias is
// transparent and folds to target on equality (via Follow); when true it is
// a nominal "newtype" and is never deduplicated nor folded.
func (r *Registry) Alias(name string, target *Type, opaque bool) *Type {
	return &Type{kind: KindAlias, name: name, target: target, opaque: opaque}
}

// Follow returns the first type reached by repeatedly peeling transparent
// (non-opaque) aliases. It does not peel opaque aliases or any future
// parameter/generic placeholder kind — see RealType for that. This mirrors
// the original implementation's hlir_follow_type.
func Follow(t *Type) *Type {
	for t != nil && t.kind == KindAlias && !t.opaque {
		t = t.target
	}
	return t
}

// RealType returns the first type reached by peeling transparent aliases
// and any parameter/generic placeholder kind. The core's tree type system
// has no parameter-placeholder kind today (front-end generics are out of
// scope — see Non-goals), so RealType currently behaves identically to
// Follow; it exists as the separate entry point the original
// hlir_real_type occupied, so a future generic extension has somewhere to
// add parameter peeling without disturbing Follow's narrower contract used
// by the binary/compare builders.
func RealType(t *Type) *Type {
	return Follow(t)
}

// Equals implements the tree type system's equality relation: structural
// equality after folding transparent aliases, with record/union/opaque-alias
// types compared nominally (by identity) rather than structurally.
func Equals(a, b *Type) bool {
	a, b = Follow(a), Follow(b)
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindEmpty, KindUnit, KindBool, KindVoid, KindString:
		return true
	case KindDigit:
		return a.sign == b.sign && a.width == b.width
	case KindPointer:
		return a.indexable == b.indexable && Equals(a.elem, b.elem)
	case KindArray:
		return a.length.Key() == b.length.Key() && Equals(a.elem, b.elem)
	case KindClosure:
		if a.variadic != b.variadic || len(a.params) != len(b.params) {
			return false
		}
		for i := range a.params {
			if !Equals(a.params[i].Type, b.params[i].Type) {
				return false
			}
		}
		return Equals(a.result, b.result)
	case KindRecord, KindUnion, KindAlias:
		// Nominal: already checked for pointer identity above; two
		// independently constructed nominal types are never equal, even
		// with identical names/fields/targets.
		return false
	default:
		return false
	}
}
