// Package staticslot provides [Slot], an atomically swappable, nullable
// owning handle to a single heap-allocated value.
//
// A slot is meant to live in a package-level variable. Its zero value is
// empty, so no initialization is needed:
//
//	var current staticslot.Slot[Config]
//
//	current.Set(cfg)
//	if cfg, ok := current.Get(); ok {
//	    use(cfg)
//	}
//	current.Clear()
//
// # Scoped values
//
// [Slot.With] installs a value only for the duration of a callback and
// restores whatever was there before, even if the callback panics. Calls
// nest; restoration is LIFO:
//
//	current.With(testCfg, func() {
//	    // current holds testCfg here
//	})
//	// previous value (or empty) is back
//
// Use [WithResult] when the callback returns a value.
//
// # Ownership
//
// Every install allocates a fresh copy of the value. The slot owns that copy
// until it is swapped out. [Slot.Take] and [Slot.Swap] hand ownership to the
// caller; [Slot.Set], [Slot.Clear] and the restore step of [Slot.With]
// destroy the removed value. Destroying means dropping the slot's reference
// and, if T or *T implements [Releaser], calling Release on it.
//
// A value installed with Set and never taken or cleared stays reachable
// until the process exits. This is accepted; no finalizer is registered.
//
// # Concurrency
//
// All operations are lock-free: a single atomic load ([Slot.Get],
// [Slot.IsEmpty]) or a single atomic swap (everything else). Concurrent
// swaps on one slot are linearizable, so two concurrent Take calls can never
// both receive the same value.
//
// The slot only guards which allocation is current. A pointer returned by
// Get is not protected: it must not be used after a concurrent swap could
// have destroyed it, and concurrent mutation of the pointee needs its own
// synchronization (for example a [sync.Mutex] inside T).
//
// # Unsized values
//
// T may be an interface or pointer type to hold values of varying concrete
// type; the slot stores a pointer to that interface value.
package staticslot
