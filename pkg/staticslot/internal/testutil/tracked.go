package testutil

import (
	"sync"

	"github.com/calvinalkan/staticslot/pkg/staticslot/model"
)

// ReleaseLog records the IDs of released [Tracked] values in order.
// Safe for concurrent use.
type ReleaseLog struct {
	mu  sync.Mutex
	ids []uint64
}

// IDs returns a copy of the recorded IDs (nil if none).
func (l *ReleaseLog) IDs() []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ids == nil {
		return nil
	}

	return append([]uint64{}, l.ids...)
}

// Count returns how many times id was released.
func (l *ReleaseLog) Count(id uint64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0

	for _, got := range l.ids {
		if got == id {
			n++
		}
	}

	return n
}

func (l *ReleaseLog) add(id uint64) {
	l.mu.Lock()
	l.ids = append(l.ids, id)
	l.mu.Unlock()
}

// Tracked is a slot payload that records its own release.
type Tracked struct {
	ID      uint64
	Payload int64

	log *ReleaseLog
}

// NewTracked returns a value that reports to log when released.
func NewTracked(log *ReleaseLog, id uint64, payload int64) Tracked {
	return Tracked{ID: id, Payload: payload, log: log}
}

// Release implements staticslot.Releaser.
func (t *Tracked) Release() {
	if t.log != nil {
		t.log.add(t.ID)
	}
}

// Value converts t to its model form.
func (t Tracked) Value() model.Value {
	return model.Value{ID: t.ID, Payload: t.Payload}
}
