package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vehiclereg/internal/client/models"
	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

var (
	ErrSubmissionCancelled  = errors.New("submission cancelled")
	ErrSubmissionComplete   = errors.New("submission already complete")
	ErrSubmissionInProgress = errors.New("submission already in progress")
)

// DuplicateConflictError reports that the registration number is already
// taken, either by the pre-check or by the backend on create. It matches
// common.ErrConflict.
type DuplicateConflictError struct {
	Number string
	Err    error
}

func (e *DuplicateConflictError) Error() string {
	return fmt.Sprintf("registration number %q is already registered", e.Number)
}

func (e *DuplicateConflictError) Is(target error) bool { return target == common.ErrConflict }

func (e *DuplicateConflictError) Unwrap() error { return e.Err }

// SlotFailure describes why one slot did not upload.
type SlotFailure struct {
	Slot vehicle.Slot
	Kind models.FailureKind
	Err  error
}

// ArtifactUploadError lists the slots that failed in one upload round.
// Slots that succeeded in the same round are not listed.
type ArtifactUploadError struct {
	Failures []SlotFailure
}

func (e *ArtifactUploadError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s (%s: %v)", f.Slot, f.Kind, f.Err))
	}
	return "artifact upload failed: " + strings.Join(parts, "; ")
}

// Slots returns the failed slots in order.
func (e *ArtifactUploadError) Slots() []vehicle.Slot {
	out := make([]vehicle.Slot, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Slot)
	}
	return out
}

// Failure returns the failure recorded for slot, if any.
func (e *ArtifactUploadError) Failure(slot vehicle.Slot) (SlotFailure, bool) {
	for _, f := range e.Failures {
		if f.Slot == slot {
			return f, true
		}
	}
	return SlotFailure{}, false
}

func (e *ArtifactUploadError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			out = append(out, f.Err)
		}
	}
	return out
}

// PersistenceError wraps a create or update failure that is neither a
// validation error nor a conflict: transport errors and 5xx responses.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s record: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FlagPatchWarning is recorded when a completion flag could not be set after
// the record was saved. The record itself stays persisted.
type FlagPatchWarning struct {
	RecordID string
	Stage    vehicle.Stage
	Err      error
}

func (w *FlagPatchWarning) Error() string {
	return fmt.Sprintf("record %s: setting %s failed: %v", w.RecordID, w.Stage, w.Err)
}

func (w *FlagPatchWarning) Unwrap() error { return w.Err }
