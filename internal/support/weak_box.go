//go:build go1.24

package support

import "weak"

// WeakBox holds a non-owning reference to obj. Get reports whether the
// referent is still alive, matching spec.md §4.2's using/lifeOf operator
// ("emit (obj, value) while alive; on first next finding obj gone, emit
// terminate").
//
// No third-party library in this lineage (or the wider example corpus)
// exposes weak references — this is the one place the engine reaches
// for the standard library instead of an ecosystem package, because the
// standard library is the only thing in the corpus that does this job.
type WeakBox[T any] struct {
	ptr weak.Pointer[T]
}

// NewWeakBox wraps obj in a weak reference. obj must be a pointer-shaped
// type allocated by the caller (the box never extends its lifetime).
func NewWeakBox[T any](obj *T) WeakBox[T] {
	return WeakBox[T]{ptr: weak.Make(obj)}
}

// Get returns the referent and true if it is still alive, or the zero
// value and false once it has been collected.
func (w WeakBox[T]) Get() (*T, bool) {
	v := w.ptr.Value()
	return v, v != nil
}
