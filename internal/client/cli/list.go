package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

func (a *App) List(ctx context.Context) error {
	recs, err := a.records.List(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	a.printList(recs)
	return nil
}

// Incomplete lists the records the registry reports as unfinished.
func (a *App) Incomplete(ctx context.Context) error {
	recs, err := a.records.Incomplete(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}
	a.printList(recs)
	return nil
}

func (a *App) printList(recs []vehicle.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No records.")
		return
	}
	for _, r := range recs {
		fmt.Fprintln(a.out, summary(r))
	}
}

func summary(r vehicle.Record) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s %s\tsections %d/%d\tphotos %d/%d",
		r.ID, r.RegistrationNumber, r.OwnerName, r.Make, r.Model,
		len(vehicle.Stages)-len(r.Status.Pending()), len(vehicle.Stages),
		len(vehicle.Slots)-len(r.Photos.Missing()), len(vehicle.Slots))
}
