// Package model provides a deliberately simple, in-memory state model of
// staticslot's publicly observable behavior.
//
// The model has no atomics and no pointers into a real slot. It tracks which
// logical value the slot holds, the values saved by open With scopes, and
// the order in which the slot destroyed values, so tests can check both
// results and ownership against the real implementation.
package model

import "errors"

// ErrNoScope is returned by [SlotModel.Exit] when no With scope is open.
var ErrNoScope = errors.New("model: no open scope")

// Value is a logical slot value. ID identifies one install; two installs of
// equal payloads still have different IDs.
type Value struct {
	ID      uint64
	Payload int64
}

// SlotModel is the model of one slot.
type SlotModel struct {
	// Current is the installed value, or nil when empty.
	Current *Value

	// Scopes holds, for each open With scope (innermost last), the value
	// that was current when the scope was entered. Entries may be nil.
	Scopes []*Value

	// Released lists the IDs of destroyed values in destruction order.
	// Values handed out by Take or Swap never appear here.
	Released []uint64
}

// New returns an empty slot model.
func New() *SlotModel {
	return &SlotModel{}
}

// IsEmpty mirrors Slot.IsEmpty.
func (m *SlotModel) IsEmpty() bool {
	return m.Current == nil
}

// Get mirrors Slot.Get.
func (m *SlotModel) Get() (Value, bool) {
	if m.Current == nil {
		return Value{}, false
	}

	return *m.Current, true
}

// Set mirrors Slot.Set.
func (m *SlotModel) Set(v Value) {
	m.destroy(m.Current)
	m.Current = &v
}

// Swap mirrors Slot.Swap.
func (m *SlotModel) Swap(v Value) (Value, bool) {
	old, ok := m.Get()
	m.Current = &v

	return old, ok
}

// Take mirrors Slot.Take.
func (m *SlotModel) Take() (Value, bool) {
	old, ok := m.Get()
	m.Current = nil

	return old, ok
}

// Clear mirrors Slot.Clear.
func (m *SlotModel) Clear() bool {
	had := m.Current != nil
	m.destroy(m.Current)
	m.Current = nil

	return had
}

// Enter models the install step of Slot.With.
func (m *SlotModel) Enter(v Value) {
	m.Scopes = append(m.Scopes, m.Current)
	m.Current = &v
}

// Exit models the restore step of Slot.With: whatever is current is
// destroyed and the value saved by the innermost scope comes back.
func (m *SlotModel) Exit() error {
	if len(m.Scopes) == 0 {
		return ErrNoScope
	}

	last := len(m.Scopes) - 1
	saved := m.Scopes[last]
	m.Scopes = m.Scopes[:last]

	m.destroy(m.Current)
	m.Current = saved

	return nil
}

// Depth returns the number of open With scopes.
func (m *SlotModel) Depth() int {
	return len(m.Scopes)
}

// Clone makes a deep copy so metamorphic tests can fork the exact same state.
// It preserves nil vs empty slices so cmp.Diff(original, clone) is empty.
func (m *SlotModel) Clone() *SlotModel {
	if m == nil {
		return nil
	}

	out := &SlotModel{}

	if m.Current != nil {
		v := *m.Current
		out.Current = &v
	}

	if m.Scopes != nil {
		out.Scopes = make([]*Value, len(m.Scopes))

		for i, s := range m.Scopes {
			if s != nil {
				v := *s
				out.Scopes[i] = &v
			}
		}
	}

	if m.Released != nil {
		out.Released = append([]uint64{}, m.Released...)
	}

	return out
}

func (m *SlotModel) destroy(v *Value) {
	if v == nil {
		return
	}

	m.Released = append(m.Released, v.ID)
}
