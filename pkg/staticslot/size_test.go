package staticslot_test

import (
	"testing"
	"unsafe"

	"github.com/calvinalkan/staticslot/pkg/staticslot"
)

func Test_Slot_Is_One_Word_When_Payload_Size_Varies(t *testing.T) {
	t.Parallel()

	word := unsafe.Sizeof(uintptr(0))

	sizes := map[string]uintptr{
		"byte":        unsafe.Sizeof(staticslot.Slot[byte]{}),
		"uint64":      unsafe.Sizeof(staticslot.Slot[uint64]{}),
		"string":      unsafe.Sizeof(staticslot.Slot[string]{}),
		"[4096]byte":  unsafe.Sizeof(staticslot.Slot[[4096]byte]{}),
		"struct{}":    unsafe.Sizeof(staticslot.Slot[struct{}]{}),
		"interface":   unsafe.Sizeof(staticslot.Slot[any]{}),
		"*[1<<20]int": unsafe.Sizeof(staticslot.Slot[*[1 << 20]int]{}),
	}

	for name, size := range sizes {
		if size != word {
			t.Fatalf("Slot[%s] is %d bytes, want one word (%d bytes)", name, size, word)
		}
	}
}
