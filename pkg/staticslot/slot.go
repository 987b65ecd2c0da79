package staticslot

import (
	"reflect"
	"sync/atomic"
)

// Releaser is implemented by values that hold resources which must be freed
// when the slot destroys them.
//
// The slot calls Release exactly once on a value it destroys: the value
// replaced by [Slot.Set], the value removed by [Slot.Clear], and the scoped
// value removed by the restore step of [Slot.With]. Values handed to the
// caller by [Slot.Take] or [Slot.Swap] are never released by the slot.
type Releaser interface {
	Release()
}

// Slot holds zero or one heap-allocated value of type T.
//
// The zero value is an empty slot, ready for use as a package-level
// variable. A Slot must not be copied after first use.
//
// Slot is exactly one pointer wide regardless of T.
type Slot[T any] struct {
	// ptr is nil when empty. A non-nil ptr is owned by the slot alone.
	ptr atomic.Pointer[T]
}

// New returns a slot that already holds v.
func New[T any](v T) *Slot[T] {
	s := &Slot[T]{}
	s.ptr.Store(&v)

	return s
}

// IsEmpty reports whether the slot holds no value.
func (s *Slot[T]) IsEmpty() bool {
	return s.ptr.Load() == nil
}

// Get returns a pointer to the current value and true, or nil and false if
// the slot is empty.
//
// The pointer is borrowed. It becomes invalid as soon as any swap (Set,
// Take, Clear, Swap, With) replaces the value, and the slot does not detect
// use after that point.
func (s *Slot[T]) Get() (*T, bool) {
	p := s.ptr.Load()

	return p, p != nil
}

// GetUnchecked returns a pointer to the current value without checking
// whether one is present.
//
// The caller must know the slot is occupied. On an empty slot the returned
// pointer is nil and dereferencing it panics.
func (s *Slot[T]) GetUnchecked() *T {
	return s.ptr.Load()
}

// Set installs v and destroys the previous value, if any.
//
// The caller is responsible for eventually calling [Slot.Take] or
// [Slot.Clear]; otherwise the last value set stays alive until exit.
func (s *Slot[T]) Set(v T) {
	release(s.swap(&v))
}

// Swap installs v and returns the previous value without destroying it.
// ok is false if the slot was empty.
func (s *Slot[T]) Swap(v T) (old T, ok bool) {
	return own(s.swap(&v))
}

// Take empties the slot and returns the value it held. The caller now owns
// the value. ok is false if the slot was already empty.
func (s *Slot[T]) Take() (v T, ok bool) {
	return own(s.swap(nil))
}

// Clear empties the slot, destroys the value it held and reports whether
// there was one.
func (s *Slot[T]) Clear() bool {
	old := s.swap(nil)
	release(old)

	return old != nil
}

// With installs v, calls fn, then restores the value that was present
// before and destroys v. The restore also runs if fn panics.
//
// Nested calls on the same slot restore in reverse order of installation.
// A Set made by another goroutine while fn runs is overwritten by the
// restore.
func (s *Slot[T]) With(v T, fn func()) {
	WithResult(s, v, func() struct{} {
		fn()

		return struct{}{}
	})
}

// WithResult is [Slot.With] for callbacks that return a value. The result of
// fn is returned unchanged.
func WithResult[T, R any](s *Slot[T], v T, fn func() R) R {
	previous := s.swap(&v)

	defer func() {
		release(s.swap(previous))
	}()

	return fn()
}

// swap is the only write path: one atomic exchange of the address word.
// A non-nil result is exclusively owned by the caller.
func (s *Slot[T]) swap(p *T) *T {
	return s.ptr.Swap(p)
}

func own[T any](p *T) (T, bool) {
	if p == nil {
		var zero T

		return zero, false
	}

	return *p, true
}

func release[T any](p *T) {
	if p == nil {
		return
	}

	if r, ok := any(p).(Releaser); ok {
		r.Release()

		return
	}

	// T itself may be a pointer or interface type whose value is the Releaser.
	// A nil payload holds nothing to release.
	r, ok := any(*p).(Releaser)
	if !ok || isNil(r) {
		return
	}

	r.Release()
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
