package services

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vehiclereg/internal/client/models"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// State is a step of the submission state machine.
type State string

const (
	StateIdle               State = "idle"
	StateCheckingDuplicate  State = "checking_duplicate"
	StateUploadingArtifacts State = "uploading_artifacts"
	StatePersistingRecord   State = "persisting_record"
	StateComplete           State = "complete"
	StateFailed             State = "failed"
)

// Submission is one attempt, possibly retried, to save a record together
// with its photos. A failed Submission can be submitted again; only the
// slots without a URL are uploaded then.
type Submission struct {
	ID string

	// Record is the draft. After completion it holds the saved record.
	Record vehicle.Record
	// Stages are the completion flags to set once the record is saved.
	// photosComplete is always added.
	Stages []vehicle.Stage
	Batch  *models.Batch

	originalNumber string

	mu        sync.Mutex
	state     State
	err       error
	history   []State
	warnings  []*FlagPatchWarning
	flagsDone chan struct{}
}

// NewSubmission prepares the creation of a new record.
func NewSubmission(rec vehicle.Record, files map[vehicle.Slot]models.Source, stages ...vehicle.Stage) *Submission {
	rec.ID = ""
	return newSubmission(rec, models.NewBatch(files, rec.Photos), stages)
}

// ResumeSubmission prepares an update of existing with the non-empty fields
// of edits. Photos already stored on existing are kept unless files
// replaces them.
func ResumeSubmission(existing, edits vehicle.Record, files map[vehicle.Slot]models.Source, stages ...vehicle.Stage) (*Submission, error) {
	rec, err := existing.Apply(edits)
	if err != nil {
		return nil, err
	}
	if edits.RegistrationNumber != "" {
		rec.RegistrationNumber = edits.RegistrationNumber
	}
	s := newSubmission(rec, models.NewBatch(files, existing.Photos), stages)
	s.originalNumber = existing.RegistrationNumber
	return s, nil
}

func newSubmission(rec vehicle.Record, batch *models.Batch, stages []vehicle.Stage) *Submission {
	return &Submission{
		ID:        uuid.NewString(),
		Record:    rec,
		Stages:    stages,
		Batch:     batch,
		state:     StateIdle,
		history:   []State{StateIdle},
		flagsDone: make(chan struct{}),
	}
}

// IsUpdate reports whether the submission targets an existing record.
func (s *Submission) IsUpdate() bool { return s.Record.ID != "" }

func (s *Submission) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error of the last failed attempt.
func (s *Submission) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// History returns every state entered so far, starting with StateIdle.
func (s *Submission) History() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// Warnings returns flag patch failures recorded after completion.
func (s *Submission) Warnings() []*FlagPatchWarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.warnings)
}

// FlagsPatched is closed once the post-completion flag patches finished.
func (s *Submission) FlagsPatched() <-chan struct{} {
	return s.flagsDone
}

// flagStages returns Stages plus photosComplete, without duplicates, in
// vehicle.Stages order.
func (s *Submission) flagStages() []vehicle.Stage {
	want := map[vehicle.Stage]bool{vehicle.StagePhotos: true}
	for _, st := range s.Stages {
		want[st] = true
	}
	out := make([]vehicle.Stage, 0, len(want))
	for _, st := range vehicle.Stages {
		if want[st] {
			out = append(out, st)
		}
	}
	return out
}

// claim moves an idle or failed submission into StateCheckingDuplicate. It is
// the guard against running the same submission twice at once.
func (s *Submission) claim() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateComplete:
		return s.state, ErrSubmissionComplete
	case StateIdle, StateFailed:
	default:
		return s.state, ErrSubmissionInProgress
	}
	from := s.state
	s.state = StateCheckingDuplicate
	s.err = nil
	s.history = append(s.history, StateCheckingDuplicate)
	return from, nil
}

func (s *Submission) moveTo(to State, err error) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.state
	s.state = to
	s.history = append(s.history, to)
	if to == StateFailed {
		s.err = err
	}
	return from
}

func (s *Submission) addWarning(w *FlagPatchWarning) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, w)
}
