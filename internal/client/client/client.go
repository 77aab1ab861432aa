package client

import (
	"context"

	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// Client is the registry backend contract used by the submission pipeline.
type Client interface {
	FetchAll(ctx context.Context) ([]vehicle.Record, error)
	FetchOne(ctx context.Context, id string) (vehicle.Record, error)
	FetchIncomplete(ctx context.Context) ([]vehicle.Record, error)
	Create(ctx context.Context, rec vehicle.Record) (vehicle.Record, error)
	Update(ctx context.Context, id string, rec vehicle.Record) (vehicle.Record, error)
	PatchStatusFlag(ctx context.Context, id string, stage vehicle.Stage, value bool) (vehicle.Record, error)
	Delete(ctx context.Context, id string) error
	CheckDuplicate(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}
