package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/staticslot/pkg/staticslot"
	"github.com/calvinalkan/staticslot/pkg/staticslot/model"
)

// Observation is what a caller can see after one operation: the result of
// the call itself and the state a subsequent Get would report.
type Observation struct {
	Step     int
	Op       string
	Result   model.Value
	ResultOK bool
	After    model.Value
	AfterOK  bool
}

// RunResult is the outcome of applying one sequence to one side.
type RunResult struct {
	Observations []Observation
	Released     []uint64
	Final        model.Value
	FinalOK      bool
}

// RunOps applies ops to a fresh model and a fresh real slot and fails tb on
// the first divergence. Values installed at step i get ID i+1 on both sides.
//
// ops must be [Balanced].
func RunOps(tb testing.TB, ops []Operation) RunResult {
	tb.Helper()

	if !Balanced(ops) {
		tb.Fatalf("ops are not balanced: %s", FormatOps(ops))
	}

	want := RunModel(ops)
	got := RunReal(ops)

	if diff := cmp.Diff(want, got); diff != "" {
		tb.Fatalf("real slot diverged from model (-model +real):\n%s\nops: %s", diff, FormatOps(ops))
	}

	return got
}

// RunModel applies ops to a fresh [model.SlotModel].
func RunModel(ops []Operation) RunResult {
	return ApplyModel(model.New(), ops)
}

// ApplyModel applies ops to m in place. Values installed at step i get ID
// i+1, as in [RunOps].
func ApplyModel(m *model.SlotModel, ops []Operation) RunResult {
	var res RunResult

	for i, op := range ops {
		obs := Observation{Step: i, Op: op.Name()}

		switch op := op.(type) {
		case OpGet:
			obs.Result, obs.ResultOK = m.Get()
		case OpIsEmpty:
			obs.ResultOK = m.IsEmpty()
		case OpSet:
			m.Set(valueAt(i, op.Payload))
		case OpSwap:
			obs.Result, obs.ResultOK = m.Swap(valueAt(i, op.Payload))
		case OpTake:
			obs.Result, obs.ResultOK = m.Take()
		case OpClear:
			obs.ResultOK = m.Clear()
		case OpEnter:
			m.Enter(valueAt(i, op.Payload))
		case OpExit:
			_ = m.Exit()
		}

		obs.After, obs.AfterOK = m.Get()
		res.Observations = append(res.Observations, obs)
	}

	res.Released = m.Released
	res.Final, res.FinalOK = m.Get()

	return res
}

// RunReal applies ops to a fresh [staticslot.Slot], running each
// OpEnter/OpExit pair as one nested With call.
func RunReal(ops []Operation) RunResult {
	r := &realRunner{
		slot: &staticslot.Slot[Tracked]{},
		log:  &ReleaseLog{},
		ops:  ops,
	}

	r.run(0)

	res := RunResult{
		Observations: r.obs,
		Released:     r.log.IDs(),
	}
	res.Final, res.FinalOK = r.get()

	return res
}

type realRunner struct {
	slot *staticslot.Slot[Tracked]
	log  *ReleaseLog
	ops  []Operation
	obs  []Observation
}

// run executes ops from index i until the end or until the OpExit that
// closes the current scope, and returns the index after the last consumed op.
func (r *realRunner) run(i int) int {
	for i < len(r.ops) {
		switch op := r.ops[i].(type) {
		case OpExit:
			// Recorded by the enclosing OpEnter once With has restored.
			return i + 1
		case OpEnter:
			enter := i
			next := len(r.ops)

			r.slot.With(r.tracked(i, op.Payload), func() {
				r.record(enter, op, model.Value{}, false)

				next = r.run(enter + 1)
			})

			r.record(next-1, OpExit{}, model.Value{}, false)

			i = next

			continue
		default:
			r.step(i, op)
		}

		i++
	}

	return i
}

func (r *realRunner) step(i int, op Operation) {
	var (
		result model.Value
		ok     bool
	)

	switch op := op.(type) {
	case OpGet:
		result, ok = r.get()
	case OpIsEmpty:
		ok = r.slot.IsEmpty()
	case OpSet:
		r.slot.Set(r.tracked(i, op.Payload))
	case OpSwap:
		var old Tracked

		old, ok = r.slot.Swap(r.tracked(i, op.Payload))
		if ok {
			result = old.Value()
		}
	case OpTake:
		var old Tracked

		old, ok = r.slot.Take()
		if ok {
			result = old.Value()
		}
	case OpClear:
		ok = r.slot.Clear()
	}

	r.record(i, op, result, ok)
}

func (r *realRunner) record(i int, op Operation, result model.Value, ok bool) {
	obs := Observation{Step: i, Op: op.Name(), Result: result, ResultOK: ok}
	obs.After, obs.AfterOK = r.get()
	r.obs = append(r.obs, obs)
}

func (r *realRunner) get() (model.Value, bool) {
	p, ok := r.slot.Get()
	if !ok {
		return model.Value{}, false
	}

	return p.Value(), true
}

func (r *realRunner) tracked(i int, payload int64) Tracked {
	return NewTracked(r.log, uint64(i)+1, payload)
}

func valueAt(i int, payload int64) model.Value {
	return model.Value{ID: uint64(i) + 1, Payload: payload}
}
