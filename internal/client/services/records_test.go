package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/vehiclereg/internal/client/client"
	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	client.Client

	all        []vehicle.Record
	incomplete []vehicle.Record
	one        map[string]vehicle.Record
	patched    []vehicle.Stage
	pingErr    error
}

func (f *fakeClient) FetchAll(ctx context.Context) ([]vehicle.Record, error) { return f.all, nil }
func (f *fakeClient) FetchIncomplete(ctx context.Context) ([]vehicle.Record, error) {
	return f.incomplete, nil
}
func (f *fakeClient) FetchOne(ctx context.Context, id string) (vehicle.Record, error) {
	r, ok := f.one[id]
	if !ok {
		return vehicle.Record{}, common.ErrorNotFound
	}
	return r, nil
}
func (f *fakeClient) PatchStatusFlag(ctx context.Context, id string, stage vehicle.Stage, value bool) (vehicle.Record, error) {
	f.patched = append(f.patched, stage)
	r := f.one[id]
	r.Status = r.Status.With(stage, value)
	return r, nil
}
func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func TestRecordService(t *testing.T) {
	fc := &fakeClient{
		all:        []vehicle.Record{{ID: "rec_1"}, {ID: "rec_2"}},
		incomplete: []vehicle.Record{{ID: "rec_2"}},
		one:        map[string]vehicle.Record{"rec_1": {ID: "rec_1", RegistrationNumber: "A1"}},
		pingErr:    client.ErrUnavailable,
	}
	s := NewRecordService(fc)
	ctx := context.Background()

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inc, err := s.Incomplete(ctx)
	require.NoError(t, err)
	assert.Equal(t, fc.incomplete, inc)

	_, err = s.Get(ctx, "rec_9")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	rec, err := s.MarkStage(ctx, "rec_1", vehicle.StageOwner)
	require.NoError(t, err)
	assert.True(t, rec.Status.Done(vehicle.StageOwner))
	assert.Equal(t, []vehicle.Stage{vehicle.StageOwner}, fc.patched)

	assert.ErrorIs(t, s.Ping(ctx), client.ErrUnavailable)
}
