package testutil

import (
	"math/rand/v2"
	"testing"
)

func Test_OpGenerator_Returns_Balanced_Ops_When_Input_Is_Random(t *testing.T) {
	t.Parallel()

	for seed := range uint64(50) {
		rng := rand.New(rand.NewPCG(seed, seed))
		data := make([]byte, 512)

		for i := range data {
			data[i] = byte(rng.UintN(256))
		}

		ops := NewOpGenerator(data, 4).Generate(DefaultMaxFuzzOperations)
		if !Balanced(ops) {
			t.Fatalf("seed=%d: generated ops are not balanced: %s", seed, FormatOps(ops))
		}
	}
}

func Test_OpGenerator_Respects_MaxDepth_When_Enter_Bytes_Repeat(t *testing.T) {
	t.Parallel()

	// 6 selects OpEnter; the following byte is its payload.
	data := make([]byte, 0, 64)
	for range 32 {
		data = append(data, 6, 1)
	}

	ops := NewOpGenerator(data, 3).Generate(DefaultMaxFuzzOperations)

	depth, maxSeen := 0, 0

	for _, op := range ops {
		switch op.(type) {
		case OpEnter:
			depth++
			maxSeen = max(maxSeen, depth)
		case OpExit:
			depth--
		}
	}

	if maxSeen != 3 {
		t.Fatalf("max nesting depth=%d, want 3", maxSeen)
	}

	if depth != 0 {
		t.Fatalf("open scopes at end=%d, want 0", depth)
	}
}

func Test_OpGenerator_Returns_No_Ops_When_Input_Empty(t *testing.T) {
	t.Parallel()

	ops := NewOpGenerator(nil, 0).Generate(DefaultMaxFuzzOperations)
	if len(ops) != 0 {
		t.Fatalf("got %d ops from empty input, want 0", len(ops))
	}
}

func Test_Balanced_Returns_False_When_Exit_Precedes_Enter(t *testing.T) {
	t.Parallel()

	if Balanced([]Operation{OpExit{}, OpEnter{}}) {
		t.Fatal("exit before enter must not be balanced")
	}

	if Balanced([]Operation{OpEnter{}}) {
		t.Fatal("unclosed enter must not be balanced")
	}

	if !Balanced([]Operation{OpEnter{}, OpSet{}, OpEnter{}, OpExit{}, OpExit{}}) {
		t.Fatal("nested pairs must be balanced")
	}
}

func Test_ByteStream_Returns_Zero_When_Exhausted(t *testing.T) {
	t.Parallel()

	s := NewByteStream([]byte{1, 2})

	if got := s.NextByte(); got != 1 {
		t.Fatalf("NextByte=%d, want 1", got)
	}

	if got := s.NextByte(); got != 2 {
		t.Fatalf("NextByte=%d, want 2", got)
	}

	if s.HasMore() {
		t.Fatal("HasMore=true after exhausting stream")
	}

	if got := s.NextByte(); got != 0 {
		t.Fatalf("NextByte after exhaustion=%d, want 0", got)
	}
}
