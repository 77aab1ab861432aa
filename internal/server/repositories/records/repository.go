// Package records stores vehicle registration records for the registry
// server. Two implementations exist: an in-memory one for development and
// tests, and a PostgreSQL one.
//
// Both enforce uniqueness of the normalized registration number and report
// a clash as common.ErrConflict; unknown ids yield common.ErrorNotFound.
package records

import (
	"context"

	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// ModifyFunc receives the stored record and returns its replacement.
type ModifyFunc func(cur vehicle.Record) (vehicle.Record, error)

type Repository interface {
	List(ctx context.Context) ([]vehicle.Record, error)
	Get(ctx context.Context, id string) (vehicle.Record, error)
	ExistsByKey(ctx context.Context, key string) (bool, error)
	// Insert assigns an id and stores rec.
	Insert(ctx context.Context, rec vehicle.Record) (vehicle.Record, error)
	// Modify applies fn to the stored record atomically. The id, the
	// registration number and the status map are not changed by Modify.
	Modify(ctx context.Context, id string, fn ModifyFunc) (vehicle.Record, error)
	// SetStatus sets one completion flag, leaving the others as they are.
	SetStatus(ctx context.Context, id string, stage vehicle.Stage, value bool) (vehicle.Record, error)
	Delete(ctx context.Context, id string) error
}
