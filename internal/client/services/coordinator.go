package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vehiclereg/internal/client/client"
	"github.com/dmitrijs2005/vehiclereg/internal/client/metrics"
	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// TransitionHook observes every state change of a submission.
type TransitionHook func(sub *Submission, from, to State)

// Coordinator drives a Submission through
// checking_duplicate -> uploading_artifacts -> persisting_record -> complete.
// Any step may end in failed instead.
type Coordinator struct {
	records RecordRepository
	checker DuplicateChecker
	uploads Uploader

	log     logging.Logger
	metrics *metrics.Metrics
	hook    TransitionHook
}

type CoordinatorOption func(*Coordinator)

func WithLogger(l logging.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.log = l }
}

func WithMetrics(m *metrics.Metrics) CoordinatorOption {
	return func(c *Coordinator) { c.metrics = m }
}

func WithTransitionHook(h TransitionHook) CoordinatorOption {
	return func(c *Coordinator) { c.hook = h }
}

func NewCoordinator(records RecordRepository, checker DuplicateChecker, uploads Uploader, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{records: records, checker: checker, uploads: uploads, log: logging.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit runs sub to a terminal state and returns the saved record.
//
// Cancelling ctx aborts the duplicate check and the uploads; photos uploaded
// by this attempt are then dropped from the batch. Once the record is being
// saved, cancellation no longer has an effect.
//
// On success the completion flags are set in the background; see
// Submission.FlagsPatched and Submission.Warnings.
func (c *Coordinator) Submit(ctx context.Context, sub *Submission, progress func(ProgressEvent)) (vehicle.Record, error) {
	start := time.Now()
	update := sub.IsUpdate()
	number := sub.Record.RegistrationNumber
	log := c.log.With("submission", sub.ID, "registration", number)

	from, err := sub.claim()
	if err != nil {
		return vehicle.Record{}, err
	}
	c.notify(ctx, sub, from, StateCheckingDuplicate)

	fail := func(err error) (vehicle.Record, error) {
		c.transition(ctx, sub, StateFailed, err)
		outcome := metrics.OutcomeFailed
		if errors.Is(err, ErrSubmissionCancelled) {
			outcome = metrics.OutcomeCancelled
		}
		c.metrics.ObserveSubmission(outcome, time.Since(start))
		log.Warn(ctx, "submission failed", "error", err)
		return vehicle.Record{}, err
	}

	// an update keeps its own number, so only a rename can collide
	if update {
		if vehicle.NormalizeRegistration(number) != vehicle.NormalizeRegistration(sub.originalNumber) {
			return fail(&client.ValidationError{Field: "registrationNumber", Message: "registration number cannot be changed"})
		}
	} else {
		exists, err := c.checker.Exists(ctx, number)
		if ctx.Err() != nil {
			return fail(fmt.Errorf("%w: %w", ErrSubmissionCancelled, ctx.Err()))
		}
		if err != nil {
			return fail(err)
		}
		if exists {
			return fail(&DuplicateConflictError{Number: number})
		}
	}
	c.transition(ctx, sub, StateUploadingArtifacts, nil)

	err = c.uploads.Upload(ctx, number, sub.Batch, progress)
	if ctx.Err() != nil {
		sub.Batch.Discard()
		return fail(fmt.Errorf("%w: %w", ErrSubmissionCancelled, ctx.Err()))
	}
	if err != nil {
		return fail(err)
	}

	c.transition(ctx, sub, StatePersistingRecord, nil)
	pctx := context.WithoutCancel(ctx)

	rec := sub.Record
	rec.Photos = sub.Batch.Photos()

	var saved vehicle.Record
	if update {
		saved, err = c.records.Update(pctx, rec.ID, rec)
	} else {
		saved, err = c.records.Create(pctx, rec)
	}
	if err != nil {
		return fail(persistError(update, number, err))
	}

	sub.Record = saved
	c.transition(ctx, sub, StateComplete, nil)
	c.metrics.ObserveSubmission(metrics.OutcomeComplete, time.Since(start))
	log.Info(ctx, "record saved", "id", saved.ID)

	go c.patchFlags(pctx, sub, saved.ID)

	return saved, nil
}

// Discard deletes a record. A record that is already gone counts as deleted.
func (c *Coordinator) Discard(ctx context.Context, id string) error {
	err := c.records.Delete(ctx, id)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error deleting record %s: %w", id, err)
	}
	c.log.Info(ctx, "record discarded", "id", id)
	return nil
}

// patchFlags sets each stage flag in turn. Failures are kept as warnings;
// the record stays saved either way.
func (c *Coordinator) patchFlags(ctx context.Context, sub *Submission, id string) {
	defer close(sub.flagsDone)
	for _, st := range sub.flagStages() {
		if _, err := c.records.PatchStatusFlag(ctx, id, st, true); err != nil {
			w := &FlagPatchWarning{RecordID: id, Stage: st, Err: err}
			sub.addWarning(w)
			c.log.Warn(ctx, "completion flag not set", "id", id, "stage", st, "error", err)
		}
	}
}

func persistError(update bool, number string, err error) error {
	switch {
	case errors.Is(err, common.ErrConflict) && !update:
		return &DuplicateConflictError{Number: number, Err: err}
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrConflict):
		return err
	}
	op := "create"
	if update {
		op = "update"
	}
	return &PersistenceError{Op: op, Err: err}
}

func (c *Coordinator) transition(ctx context.Context, sub *Submission, to State, err error) {
	from := sub.moveTo(to, err)
	c.notify(ctx, sub, from, to)
}

func (c *Coordinator) notify(ctx context.Context, sub *Submission, from, to State) {
	c.log.Debug(ctx, "submission state", "submission", sub.ID, "from", from, "to", to)
	if c.hook != nil {
		c.hook(sub, from, to)
	}
}
