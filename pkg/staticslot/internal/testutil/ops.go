package testutil

import "fmt"

// Operation is a single public-API call we apply to both the model and the
// real slot.
//
// OpEnter and OpExit are the two halves of one With call. Sequences must keep
// them balanced; see [Balanced].
type Operation interface {
	Name() string
	String() string
}

// OpGet represents a Get() call.
type OpGet struct{}

// Name returns the operation name.
func (OpGet) Name() string   { return "Get" }
func (OpGet) String() string { return "Get()" }

// OpIsEmpty represents an IsEmpty() call.
type OpIsEmpty struct{}

// Name returns the operation name.
func (OpIsEmpty) Name() string   { return "IsEmpty" }
func (OpIsEmpty) String() string { return "IsEmpty()" }

// OpSet represents a Set(v) call.
type OpSet struct {
	Payload int64
}

// Name returns the operation name.
func (OpSet) Name() string { return "Set" }
func (operation OpSet) String() string {
	return fmt.Sprintf("Set(%d)", operation.Payload)
}

// OpSwap represents a Swap(v) call.
type OpSwap struct {
	Payload int64
}

// Name returns the operation name.
func (OpSwap) Name() string { return "Swap" }
func (operation OpSwap) String() string {
	return fmt.Sprintf("Swap(%d)", operation.Payload)
}

// OpTake represents a Take() call.
type OpTake struct{}

// Name returns the operation name.
func (OpTake) Name() string   { return "Take" }
func (OpTake) String() string { return "Take()" }

// OpClear represents a Clear() call.
type OpClear struct{}

// Name returns the operation name.
func (OpClear) Name() string   { return "Clear" }
func (OpClear) String() string { return "Clear()" }

// OpEnter opens a With(v, ...) scope.
type OpEnter struct {
	Payload int64
}

// Name returns the operation name.
func (OpEnter) Name() string { return "Enter" }
func (operation OpEnter) String() string {
	return fmt.Sprintf("With(%d){", operation.Payload)
}

// OpExit closes the innermost open With scope.
type OpExit struct{}

// Name returns the operation name.
func (OpExit) Name() string   { return "Exit" }
func (OpExit) String() string { return "}" }

// Balanced reports whether every OpExit closes an earlier OpEnter and no
// scope is left open.
func Balanced(ops []Operation) bool {
	depth := 0

	for _, op := range ops {
		switch op.(type) {
		case OpEnter:
			depth++
		case OpExit:
			depth--
			if depth < 0 {
				return false
			}
		}
	}

	return depth == 0
}

// FormatOps renders ops as a compact trace for failure messages.
func FormatOps(ops []Operation) string {
	out := make([]byte, 0, len(ops)*8)

	for i, op := range ops {
		if i > 0 {
			out = append(out, ' ')
		}

		out = append(out, op.String()...)
	}

	return string(out)
}
