// Package testutil provides test-only infrastructure for staticslot
// property, metamorphic and fuzz testing.
//
// It includes a deterministic byte stream, an operation generator, and a
// harness that applies the same operations to the model and a real slot.
package testutil
