package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dmitrijs2005/vehiclereg/internal/client/client"
	"github.com/dmitrijs2005/vehiclereg/internal/client/models"
	"github.com/dmitrijs2005/vehiclereg/internal/client/services"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// flagWait bounds how long a command waits for the background flag patches
// before returning to the prompt.
var flagWait = 10 * time.Second

// New collects a registration and its photos and submits it.
func (a *App) New(ctx context.Context) error {
	rec, stages, err := InputRecord(a.reader, vehicle.Record{}, a.out)
	if err != nil {
		return err
	}
	files, err := InputPhotos(a.reader, vehicle.Photos{}, a.out)
	if err != nil {
		return err
	}
	return a.submit(ctx, services.NewSubmission(rec, files, stages...))
}

// Resume continues an existing registration: the form is pre-filled from
// the stored record and only photos still missing need a file.
func (a *App) Resume(ctx context.Context, id string) error {
	existing, err := a.records.Get(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}

	if pending := existing.Status.Pending(); len(pending) > 0 {
		fmt.Fprintf(a.out, "Pending sections: %v\n", pending)
	}
	if missing := existing.Photos.Missing(); len(missing) > 0 {
		fmt.Fprintf(a.out, "Missing photos: %v\n", missing)
	}

	edits, stages, err := InputRecord(a.reader, existing, a.out)
	if err != nil {
		return err
	}
	files, err := InputPhotos(a.reader, existing.Photos, a.out)
	if err != nil {
		return err
	}

	sub, err := services.ResumeSubmission(existing, edits, files, stages...)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	return a.submit(ctx, sub)
}

// Retry re-runs the last failed submission. Photos that already uploaded are
// kept; for each failed slot the user may pick a different file.
func (a *App) Retry(ctx context.Context) error {
	sub := a.last
	if sub == nil || sub.State() != services.StateFailed {
		fmt.Fprintln(a.out, "Nothing to retry.")
		return nil
	}

	for _, slot := range sub.Batch.Failed() {
		task := sub.Batch.Task(slot)
		prompt := fmt.Sprintf("Path to %s photo", slot)
		if !task.Source.IsZero() {
			prompt += fmt.Sprintf(" (Enter to retry %s)", task.Source.Name)
		}
		path, err := GetSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if path != "" {
			sub.Batch.Select(slot, models.FileSource(path))
		}
	}

	return a.submit(ctx, sub)
}

// submit runs sub through the coordinator. Ctrl-C cancels the attempt while
// photos are still uploading.
func (a *App) submit(ctx context.Context, sub *services.Submission) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	p := newProgressPrinter(a.out, a.interactive)
	rec, err := a.coordinator.Submit(ctx, sub, p.Handle)
	p.Finish()

	if err != nil {
		a.last = sub
		a.reportSubmitError(err)
		return err
	}
	a.last = nil

	fmt.Fprintf(a.out, "Saved record %s (%s)\n", rec.ID, rec.RegistrationNumber)

	select {
	case <-sub.FlagsPatched():
	case <-time.After(flagWait):
		fmt.Fprintln(a.out, "Completion flags are still being saved.")
		return nil
	}
	for _, w := range sub.Warnings() {
		fmt.Fprintf(a.out, "Warning: %s was not marked complete (%v). Use 'flag %s %s' to try again.\n",
			w.Stage, w.Err, w.RecordID, w.Stage)
	}
	return nil
}

func (a *App) reportSubmitError(err error) {
	var (
		dup     *services.DuplicateConflictError
		uploads *services.ArtifactUploadError
		invalid *client.ValidationError
		persist *services.PersistenceError
	)

	switch {
	case errors.Is(err, services.ErrSubmissionCancelled):
		fmt.Fprintln(a.out, "Submission cancelled; photos uploaded in this attempt were dropped.")
	case errors.As(err, &dup):
		fmt.Fprintf(a.out, "Registration number %s is already registered.\n", dup.Number)
	case errors.As(err, &uploads):
		fmt.Fprintln(a.out, "Some photos could not be uploaded:")
		for _, f := range uploads.Failures {
			fmt.Fprintf(a.out, "  %s: %s (%v)\n", f.Slot, f.Kind, f.Err)
		}
		fmt.Fprintln(a.out, "Type 'retry' to upload the failed photos again.")
	case errors.As(err, &invalid):
		fmt.Fprintf(a.out, "Invalid %s: %s\n", invalid.Field, invalid.Message)
	case errors.As(err, &persist):
		fmt.Fprintf(a.out, "The record could not be saved: %v\nType 'retry' to try again.\n", persist.Err)
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}
