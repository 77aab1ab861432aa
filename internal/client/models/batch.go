package models

import (
	"sync"

	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// Batch holds the four UploadTasks of one submission. It is safe for
// concurrent use: slot uploads update it from their own goroutines while
// callers take snapshots.
type Batch struct {
	mu    sync.Mutex
	tasks map[vehicle.Slot]*UploadTask
}

// NewBatch creates a task for every slot. Slots that already have a URL in
// existing start out succeeded; the others are pending with the selected
// file, if any.
func NewBatch(files map[vehicle.Slot]Source, existing vehicle.Photos) *Batch {
	b := &Batch{tasks: make(map[vehicle.Slot]*UploadTask, len(vehicle.Slots))}
	for _, slot := range vehicle.Slots {
		t := &UploadTask{Slot: slot, State: UploadPending, Source: files[slot]}
		if url := existing.Get(slot); url != "" && t.Source.IsZero() {
			t.State = UploadSucceeded
			t.URL = url
			t.Progress = 1
			t.Seeded = true
		}
		b.tasks[slot] = t
	}
	return b
}

// Select assigns a new file to slot and resets it to pending, dropping any
// previous URL or failure.
func (b *Batch) Select(slot vehicle.Slot, src Source) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[slot]
	if !ok {
		return
	}
	*t = UploadTask{Slot: slot, Source: src, State: UploadPending}
}

// Task returns a copy of the task for slot.
func (b *Batch) Task(slot vehicle.Slot) UploadTask {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.tasks[slot]; ok {
		return *t
	}
	return UploadTask{}
}

// Snapshot returns copies of all tasks in vehicle.Slots order.
func (b *Batch) Snapshot() []UploadTask {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]UploadTask, 0, len(b.tasks))
	for _, slot := range vehicle.Slots {
		out = append(out, *b.tasks[slot])
	}
	return out
}

// Pending returns the slots that still need an upload, i.e. every slot not
// in the succeeded state.
func (b *Batch) Pending() []vehicle.Slot {
	return b.slotsWhere(func(t *UploadTask) bool { return t.State != UploadSucceeded })
}

// Failed returns the slots whose last attempt failed.
func (b *Batch) Failed() []vehicle.Slot {
	return b.slotsWhere(func(t *UploadTask) bool { return t.State == UploadFailed })
}

// Ready reports whether all slots succeeded.
func (b *Batch) Ready() bool {
	return len(b.Pending()) == 0
}

// Photos returns the URLs of the succeeded slots.
func (b *Batch) Photos() vehicle.Photos {
	b.mu.Lock()
	defer b.mu.Unlock()
	var p vehicle.Photos
	for slot, t := range b.tasks {
		if t.State == UploadSucceeded {
			p.Set(slot, t.URL)
		}
	}
	return p
}

// Discard drops URLs uploaded by this submission and returns those slots to
// pending. Seeded URLs are kept since they belong to a persisted record.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tasks {
		if t.Seeded {
			continue
		}
		t.State = UploadPending
		t.URL = ""
		t.Progress = 0
		t.Kind = ""
		t.Err = nil
	}
}

// MarkUploading moves slot into the uploading state.
func (b *Batch) MarkUploading(slot vehicle.Slot) {
	b.update(slot, func(t *UploadTask) {
		t.State = UploadUploading
		t.Progress = 0
		t.Kind = ""
		t.Err = nil
	})
}

// SetProgress records the transferred fraction for slot.
func (b *Batch) SetProgress(slot vehicle.Slot, fraction float64) {
	b.update(slot, func(t *UploadTask) {
		if t.State == UploadUploading {
			t.Progress = fraction
		}
	})
}

// MarkSucceeded attaches the storage URL to slot.
func (b *Batch) MarkSucceeded(slot vehicle.Slot, url string) {
	b.update(slot, func(t *UploadTask) {
		t.State = UploadSucceeded
		t.URL = url
		t.Progress = 1
		t.Seeded = false
	})
}

// MarkFailed records the failure of slot.
func (b *Batch) MarkFailed(slot vehicle.Slot, kind FailureKind, err error) {
	b.update(slot, func(t *UploadTask) {
		t.State = UploadFailed
		t.URL = ""
		t.Kind = kind
		t.Err = err
	})
}

func (b *Batch) update(slot vehicle.Slot, fn func(t *UploadTask)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.tasks[slot]; ok {
		fn(t)
	}
}

func (b *Batch) slotsWhere(pred func(t *UploadTask) bool) []vehicle.Slot {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []vehicle.Slot
	for _, slot := range vehicle.Slots {
		if pred(b.tasks[slot]) {
			out = append(out, slot)
		}
	}
	return out
}
