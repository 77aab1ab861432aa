package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/dmitrijs2005/vehiclereg/internal/client/models"
	"github.com/dmitrijs2005/vehiclereg/internal/client/storage"
	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// fakeStorage records uploads per slot. Slots listed in fail return that
// error; when gate is set, uploads wait for it or for ctx.
type fakeStorage struct {
	mu       sync.Mutex
	calls    map[vehicle.Slot]int
	fail     map[vehicle.Slot]error
	gate     chan struct{}
	started  chan vehicle.Slot
	inflight int
	peak     int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{calls: map[vehicle.Slot]int{}, fail: map[vehicle.Slot]error{}}
}

func slotOf(key string) vehicle.Slot {
	base := path.Base(key)
	return vehicle.Slot(base[:strings.Index(base, "-")])
}

func (f *fakeStorage) Upload(ctx context.Context, obj storage.Object) (string, error) {
	slot := slotOf(obj.Key)

	f.mu.Lock()
	f.calls[slot]++
	f.inflight++
	if f.inflight > f.peak {
		f.peak = f.inflight
	}
	err := f.fail[slot]
	gate := f.gate
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if f.started != nil {
		f.started <- slot
	}
	if obj.Progress != nil {
		obj.Progress(int64(len(obj.Data))/2, int64(len(obj.Data)))
		obj.Progress(int64(len(obj.Data)), int64(len(obj.Data)))
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "https://cdn.example/" + obj.Key, nil
}

func (f *fakeStorage) callsFor(slot vehicle.Slot) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[slot]
}

func (f *fakeStorage) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeStorage) setFail(slot vehicle.Slot, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, slot)
		return
	}
	f.fail[slot] = err
}

// fakeRecords is an in-memory RecordRepository.
type fakeRecords struct {
	mu        sync.Mutex
	recs      map[string]vehicle.Record
	nextID    int
	createErr error
	updateErr error
	patchErr  map[vehicle.Stage]error
	onCreate  func()
	creates   int
	updates   int
	patches   []vehicle.Stage
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{recs: map[string]vehicle.Record{}, patchErr: map[vehicle.Stage]error{}}
}

func (f *fakeRecords) Create(ctx context.Context, rec vehicle.Record) (vehicle.Record, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return vehicle.Record{}, f.createErr
	}
	if ctx.Err() != nil {
		return vehicle.Record{}, ctx.Err()
	}
	f.nextID++
	rec.ID = fmt.Sprintf("rec_%d", f.nextID)
	rec.Status = nil
	f.recs[rec.ID] = rec
	return rec, nil
}

func (f *fakeRecords) Update(ctx context.Context, id string, rec vehicle.Record) (vehicle.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return vehicle.Record{}, f.updateErr
	}
	cur, ok := f.recs[id]
	if !ok {
		return vehicle.Record{}, common.ErrorNotFound
	}
	merged, err := cur.Apply(rec)
	if err != nil {
		return vehicle.Record{}, err
	}
	f.recs[id] = merged
	return merged, nil
}

func (f *fakeRecords) PatchStatusFlag(ctx context.Context, id string, stage vehicle.Stage, value bool) (vehicle.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, stage)
	if err := f.patchErr[stage]; err != nil {
		return vehicle.Record{}, err
	}
	cur, ok := f.recs[id]
	if !ok {
		return vehicle.Record{}, common.ErrorNotFound
	}
	cur.Status = cur.Status.With(stage, value)
	f.recs[id] = cur
	return cur, nil
}

func (f *fakeRecords) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recs[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.recs, id)
	return nil
}

func (f *fakeRecords) get(id string) vehicle.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recs[id]
}

type fakeChecker struct {
	mu    sync.Mutex
	taken map[string]bool
	err   error
	calls int
}

func (f *fakeChecker) Exists(ctx context.Context, number string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.taken[vehicle.NormalizeRegistration(number)], nil
}

func allFiles() map[vehicle.Slot]models.Source {
	files := map[vehicle.Slot]models.Source{}
	for _, s := range vehicle.Slots {
		files[s] = models.BytesSource(string(s)+".jpg", []byte("photo-"+string(s)))
	}
	return files
}
