package staticslot

// Export internal functions and variables for testing.
// This file is only compiled during tests.

// AddressForTesting returns the pointer currently stored in the slot, or nil.
// Tests use it to check that every install allocates a fresh value.
func AddressForTesting[T any](s *Slot[T]) *T {
	return s.ptr.Load()
}
