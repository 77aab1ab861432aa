package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.coordinator.Discard(ctx, id); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}

// Flag marks one completion stage of a record as done.
func (a *App) Flag(ctx context.Context, id, stage string) error {
	st, err := ParseStageArg(stage)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v (stages: %v)\n", err, vehicle.Stages)
		return err
	}
	rec, err := a.records.MarkStage(ctx, id, st)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, summary(rec))
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	rec, err := a.records.Get(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "ID: %s\n", rec.ID)
	fmt.Fprintf(a.out, "Registration number: %s\n", rec.RegistrationNumber)
	for _, sec := range formSections {
		fmt.Fprintf(a.out, "-- %s (%s) --\n", sec.title, doneText(rec.Status.Done(sec.stage)))
		for _, f := range sec.fields {
			if v := f.value(&rec.Details); v != "" {
				fmt.Fprintf(a.out, "%s: %s\n", f.label, v)
			}
		}
	}
	fmt.Fprintf(a.out, "-- Photos (%s) --\n", doneText(rec.Status.Done(vehicle.StagePhotos)))
	for _, slot := range vehicle.Slots {
		url := rec.Photos.Get(slot)
		if url == "" {
			url = "missing"
		}
		fmt.Fprintf(a.out, "%s: %s\n", slot, url)
	}
	return nil
}

func (f formField) value(d *vehicle.Details) string {
	if f.num != nil {
		if n := *f.num(d); n != 0 {
			return fmt.Sprint(n)
		}
		return ""
	}
	return *f.text(d)
}

func doneText(done bool) string {
	if done {
		return "complete"
	}
	return "pending"
}
