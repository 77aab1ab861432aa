package services

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vehiclereg/internal/client/client"
	"github.com/dmitrijs2005/vehiclereg/internal/client/models"
	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/server/httpapi"
	"github.com/dmitrijs2005/vehiclereg/internal/server/repositories/records"
	srvservices "github.com/dmitrijs2005/vehiclereg/internal/server/services"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// registry starts the reference backend in memory and returns a client for it.
func registry(t *testing.T) *client.HTTPClient {
	t.Helper()
	svc := srvservices.NewRecordService(records.NewMemoryRepository(), nil)
	ts := httptest.NewServer(httpapi.NewServer("", nil, svc, httpapi.Options{}).Handler())
	t.Cleanup(ts.Close)
	return client.NewHTTPClient(ts.URL, client.WithHTTPClient(ts.Client()))
}

func e2eCoordinator(api *client.HTTPClient, st *fakeStorage) *Coordinator {
	return NewCoordinator(api, NewDuplicateChecker(api), NewUploadOrchestrator(st))
}

func TestEndToEnd_CreateCompletesRecord(t *testing.T) {
	api := registry(t)
	coord := e2eCoordinator(api, newFakeStorage())
	ctx := context.Background()

	rec := vehicle.Record{
		RegistrationNumber: "WP-CAB-1234",
		Details:            vehicle.Details{OwnerName: "Nimal Perera", Make: "Toyota", Model: "Axio", YearOfManufacture: 2015},
	}
	sub := NewSubmission(rec, allFiles(), vehicle.StageDetails, vehicle.StageOwner, vehicle.StageDocuments)

	saved, err := coord.Submit(ctx, sub, nil)
	require.NoError(t, err)
	assert.Equal(t, "rec_1", saved.ID)
	assert.Equal(t, StateComplete, sub.State())
	waitFlags(t, sub)
	assert.Empty(t, sub.Warnings())

	got, err := api.FetchOne(ctx, "rec_1")
	require.NoError(t, err)
	assert.True(t, got.Complete())
	assert.Equal(t, "Axio", got.Model)
	for _, slot := range vehicle.Slots {
		assert.Contains(t, got.Photos.Get(slot), "registrations/WPCAB1234/"+string(slot)+"-")
	}

	inc, err := api.FetchIncomplete(ctx)
	require.NoError(t, err)
	assert.Empty(t, inc)

	// the same number in another spelling is refused before any upload
	st := newFakeStorage()
	again := NewSubmission(vehicle.Record{RegistrationNumber: "wp cab 1234", Details: vehicle.Details{OwnerName: "X"}}, allFiles())
	_, err = e2eCoordinator(api, st).Submit(ctx, again, nil)
	var dup *DuplicateConflictError
	require.ErrorAs(t, err, &dup)
	for _, slot := range vehicle.Slots {
		assert.Zero(t, st.callsFor(slot))
	}
}

func TestEndToEnd_ConcurrentDuplicateHasOneWinner(t *testing.T) {
	api := registry(t)
	ctx := context.Background()

	const n = 4
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		clashes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := NewSubmission(vehicle.Record{
				RegistrationNumber: "WP-CAB-1234",
				Details:            vehicle.Details{OwnerName: "Nimal"},
			}, allFiles())
			_, err := e2eCoordinator(api, newFakeStorage()).Submit(ctx, sub, nil)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, common.ErrConflict):
				clashes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, clashes)

	all, err := api.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEndToEnd_ResumeIncompleteRecord(t *testing.T) {
	api := registry(t)
	ctx := context.Background()

	created, err := api.Create(ctx, vehicle.Record{
		RegistrationNumber: "CP-XY-0001",
		Details:            vehicle.Details{OwnerName: "Kumari"},
		Photos:             vehicle.Photos{FrontPhoto: "https://cdn/f.jpg", LeftPhoto: "https://cdn/l.jpg", RightPhoto: "https://cdn/r.jpg"},
	})
	require.NoError(t, err)
	_, err = api.PatchStatusFlag(ctx, created.ID, vehicle.StageOwner, true)
	require.NoError(t, err)

	inc, err := api.FetchIncomplete(ctx)
	require.NoError(t, err)
	require.Len(t, inc, 1)
	existing := inc[0]

	st := newFakeStorage()
	files := map[vehicle.Slot]models.Source{vehicle.SlotRear: models.BytesSource("rear.jpg", []byte("rear"))}
	sub, err := ResumeSubmission(existing, vehicle.Record{Details: vehicle.Details{Color: "White"}}, files,
		vehicle.StageDetails, vehicle.StageDocuments)
	require.NoError(t, err)

	saved, err := e2eCoordinator(api, st).Submit(ctx, sub, nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, saved.ID)
	waitFlags(t, sub)

	assert.Equal(t, 1, st.callsFor(vehicle.SlotRear))
	assert.Zero(t, st.callsFor(vehicle.SlotFront))

	got, err := api.FetchOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "White", got.Color)
	assert.Equal(t, "https://cdn/f.jpg", got.FrontPhoto)
	assert.True(t, got.Complete())

	inc, err = api.FetchIncomplete(ctx)
	require.NoError(t, err)
	assert.Empty(t, inc)

	// changing the number of an existing record is refused
	renamed, err := ResumeSubmission(got, vehicle.Record{RegistrationNumber: "CP-XY-0002"}, nil)
	require.NoError(t, err)
	_, err = e2eCoordinator(api, st).Submit(ctx, renamed, nil)
	var ve *client.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "registrationNumber", ve.Field)
}
