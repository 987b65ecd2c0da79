// Package snapshot saves a slot's content to a file and restores it.
//
// A snapshot is a small JSON document:
//
//	{"version": 1, "present": true, "value": <T as JSON>}
//
// Writes replace the file atomically (write temp file, rename), and both
// Save and Load hold an advisory lock on path + ".lock" so concurrent
// processes never interleave a save with a load.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	"github.com/calvinalkan/staticslot/pkg/staticslot"
)

// Sentinel errors returned by Save and Load. Check with [errors.Is].
var (
	// ErrNotFound indicates no snapshot exists at the path.
	ErrNotFound = errors.New("snapshot: not found")

	// ErrCorrupt indicates the file is not a valid snapshot of this version.
	ErrCorrupt = errors.New("snapshot: corrupt")

	// ErrLocked indicates the lock could not be taken before ctx was done.
	ErrLocked = errors.New("snapshot: locked")
)

// Version is the snapshot format version written by Save.
const Version = 1

const filePerms = 0o600

type document[T any] struct {
	Version int  `json:"version"`
	Present bool `json:"present"`
	Value   *T   `json:"value"`
}

// Save writes the current content of s to path. An empty slot is saved as
// present=false. The slot itself is not modified.
//
// The value is read with Get, so the caller must make sure no concurrent
// swap destroys it while Save encodes it.
func Save[T any](ctx context.Context, path string, s *staticslot.Slot[T]) error {
	lock, err := acquireLock(ctx, path)
	if err != nil {
		return err
	}

	defer lock.release()

	doc := document[T]{Version: Version}

	if v, ok := s.Get(); ok {
		doc.Present = true
		doc.Value = v
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	data = append(data, '\n')

	err = atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

// Load reads the snapshot at path into s. A present value is installed with
// Set; an absent one clears the slot. Either way the previous content of s is
// destroyed. Load reports whether a value was installed.
func Load[T any](ctx context.Context, path string, s *staticslot.Slot[T]) (bool, error) {
	lock, err := acquireLock(ctx, path)
	if err != nil {
		return false, err
	}

	defer lock.release()

	data, err := os.ReadFile(path) //nolint:gosec // path is from caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return false, fmt.Errorf("read snapshot: %w", err)
	}

	doc, err := decode[T](data)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}

	if !doc.Present {
		s.Clear()

		return false, nil
	}

	s.Set(*doc.Value)

	return true, nil
}

func decode[T any](data []byte) (document[T], error) {
	var doc document[T]

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	err := dec.Decode(&doc)
	if err != nil {
		return document[T]{}, err
	}

	if doc.Version != Version {
		return document[T]{}, fmt.Errorf("unsupported version %d", doc.Version)
	}

	if doc.Present && doc.Value == nil {
		return document[T]{}, errors.New("present snapshot has no value")
	}

	return doc, nil
}
