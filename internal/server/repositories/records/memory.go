package records

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// MemoryRepository keeps records in insertion order. Ids are rec_1, rec_2, ...
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int
	order  []string
	byID   map[string]vehicle.Record
	byKey  map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[string]vehicle.Record),
		byKey: make(map[string]string),
	}
}

func (r *MemoryRepository) List(ctx context.Context) ([]vehicle.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]vehicle.Record, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.byID[id]))
	}
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (vehicle.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return vehicle.Record{}, common.ErrorNotFound
	}
	return clone(rec), nil
}

func (r *MemoryRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byKey[key]
	return ok, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, rec vehicle.Record) (vehicle.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := rec.Key()
	if _, ok := r.byKey[key]; ok {
		return vehicle.Record{}, common.ErrConflict
	}

	r.nextID++
	rec.ID = fmt.Sprintf("rec_%d", r.nextID)
	if rec.Status == nil {
		rec.Status = vehicle.Completion{}
	}
	rec = clone(rec)

	r.byID[rec.ID] = rec
	r.byKey[key] = rec.ID
	r.order = append(r.order, rec.ID)
	return clone(rec), nil
}

func (r *MemoryRepository) Modify(ctx context.Context, id string, fn ModifyFunc) (vehicle.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return vehicle.Record{}, common.ErrorNotFound
	}
	next, err := fn(clone(cur))
	if err != nil {
		return vehicle.Record{}, err
	}
	next.ID = cur.ID
	next.RegistrationNumber = cur.RegistrationNumber
	next.Status = cur.Status.Clone()

	r.byID[id] = next
	return clone(next), nil
}

func (r *MemoryRepository) SetStatus(ctx context.Context, id string, stage vehicle.Stage, value bool) (vehicle.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return vehicle.Record{}, common.ErrorNotFound
	}
	cur.Status = cur.Status.With(stage, value)
	r.byID[id] = cur
	return clone(cur), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	delete(r.byKey, rec.Key())
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// clone detaches the status map from the stored copy.
func clone(rec vehicle.Record) vehicle.Record {
	rec.Status = rec.Status.Clone()
	return rec
}
