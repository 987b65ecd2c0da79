package testutil

// DefaultMaxFuzzOperations bounds the number of ops derived from one input.
const DefaultMaxFuzzOperations = 256

// DefaultMaxDepth bounds how deeply generated With scopes nest.
const DefaultMaxDepth = 8

// OpGenerator derives a balanced operation sequence from fuzz bytes.
type OpGenerator struct {
	stream   *ByteStream
	maxDepth int
	depth    int
}

// NewOpGenerator creates a generator over fuzzBytes. maxDepth <= 0 uses
// [DefaultMaxDepth].
func NewOpGenerator(fuzzBytes []byte, maxDepth int) *OpGenerator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &OpGenerator{
		stream:   NewByteStream(fuzzBytes),
		maxDepth: maxDepth,
	}
}

// Generate returns up to maxOps operations followed by the OpExit calls
// needed to close every open scope. The result always satisfies [Balanced].
func (g *OpGenerator) Generate(maxOps int) []Operation {
	ops := make([]Operation, 0, maxOps)

	for len(ops) < maxOps && g.stream.HasMore() {
		ops = append(ops, g.next())
	}

	for g.depth > 0 {
		ops = append(ops, OpExit{})
		g.depth--
	}

	return ops
}

func (g *OpGenerator) next() Operation {
	const numOps = 8

	switch g.stream.NextByte() % numOps {
	case 0:
		return OpGet{}
	case 1:
		return OpIsEmpty{}
	case 2:
		return OpSet{Payload: g.payload()}
	case 3:
		return OpSwap{Payload: g.payload()}
	case 4:
		return OpTake{}
	case 5:
		return OpClear{}
	case 6:
		if g.depth >= g.maxDepth {
			return OpSet{Payload: g.payload()}
		}

		g.depth++

		return OpEnter{Payload: g.payload()}
	default:
		if g.depth == 0 {
			return OpGet{}
		}

		g.depth--

		return OpExit{}
	}
}

// payload uses a single byte so equal payloads are common and tests cannot
// pass by comparing payloads alone.
func (g *OpGenerator) payload() int64 {
	return int64(g.stream.NextByte())
}
