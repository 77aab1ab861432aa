package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/vehiclereg/internal/client/metrics"
	"github.com/dmitrijs2005/vehiclereg/internal/client/models"
	"github.com/dmitrijs2005/vehiclereg/internal/client/storage"
	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/netx"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// ProgressEvent is delivered to the progress callback of an upload round.
type ProgressEvent struct {
	Slot     vehicle.Slot
	State    models.UploadState
	Fraction float64
}

// Uploader runs one upload round over a batch.
type Uploader interface {
	Upload(ctx context.Context, registration string, batch *models.Batch, progress func(ProgressEvent)) error
}

const progressBuffer = 64

// UploadOrchestrator uploads the pending slots of a batch concurrently.
type UploadOrchestrator struct {
	storage storage.Uploader
	limit   int
	log     logging.Logger
	metrics *metrics.Metrics
}

type UploadOption func(*UploadOrchestrator)

func WithUploadLogger(l logging.Logger) UploadOption {
	return func(o *UploadOrchestrator) { o.log = l }
}

func WithUploadMetrics(m *metrics.Metrics) UploadOption {
	return func(o *UploadOrchestrator) { o.metrics = m }
}

// WithConcurrency caps parallel uploads. The default uploads every slot at once.
func WithConcurrency(n int) UploadOption {
	return func(o *UploadOrchestrator) {
		if n > 0 {
			o.limit = n
		}
	}
}

func NewUploadOrchestrator(s storage.Uploader, opts ...UploadOption) *UploadOrchestrator {
	o := &UploadOrchestrator{storage: s, limit: len(vehicle.Slots), log: logging.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Upload sends every slot of batch that has not succeeded yet. Slots that
// succeed keep their URL in batch even when other slots fail, so a second
// call only retries what is left.
//
// progress may be nil. It is called from a single dispatcher goroutine and
// never blocks the uploads: events that do not fit the buffer are dropped,
// and a few may still arrive after Upload returns.
//
// The result is nil only when all slots hold a URL; otherwise it is an
// *ArtifactUploadError naming the failed slots.
func (o *UploadOrchestrator) Upload(ctx context.Context, registration string, batch *models.Batch, progress func(ProgressEvent)) error {
	pending := batch.Pending()
	if len(pending) == 0 {
		return nil
	}

	emit := newDispatcher(progress)
	defer emit.close()

	var g errgroup.Group
	g.SetLimit(o.limit)

	for _, slot := range pending {
		g.Go(func() error {
			o.uploadSlot(ctx, registration, batch, slot, emit.send)
			return nil
		})
	}
	_ = g.Wait()

	var failures []SlotFailure
	for _, t := range batch.Snapshot() {
		if t.State == models.UploadFailed {
			failures = append(failures, SlotFailure{Slot: t.Slot, Kind: t.Kind, Err: t.Err})
		}
	}
	if len(failures) > 0 {
		return &ArtifactUploadError{Failures: failures}
	}
	return nil
}

func (o *UploadOrchestrator) uploadSlot(ctx context.Context, registration string, batch *models.Batch, slot vehicle.Slot, emit func(ProgressEvent)) {
	fail := func(kind models.FailureKind, err error) {
		batch.MarkFailed(slot, kind, err)
		emit(ProgressEvent{Slot: slot, State: models.UploadFailed, Fraction: batch.Task(slot).Progress})
		o.metrics.ObserveUpload(slot, string(kind), 0)
		o.log.Warn(ctx, "photo upload failed", "slot", slot, "kind", kind, "error", err)
	}

	task := batch.Task(slot)
	if task.Source.IsZero() {
		fail(models.FailureMissing, models.ErrNoFileSelected)
		return
	}

	batch.MarkUploading(slot)
	emit(ProgressEvent{Slot: slot, State: models.UploadUploading})

	data, err := readSource(task.Source)
	if err != nil {
		fail(models.FailureSource, err)
		return
	}

	obj := storage.Object{
		Key:      storage.ObjectKey(registration, slot, task.Source.Name, data),
		Filename: task.Source.Name,
		Data:     data,
		Progress: func(done, total int64) {
			f := netx.Fraction(done, total)
			batch.SetProgress(slot, f)
			emit(ProgressEvent{Slot: slot, State: models.UploadUploading, Fraction: f})
		},
	}

	url, err := o.storage.Upload(ctx, obj)
	if err != nil {
		fail(classifyUpload(ctx, err), err)
		return
	}

	batch.MarkSucceeded(slot, url)
	emit(ProgressEvent{Slot: slot, State: models.UploadSucceeded, Fraction: 1})
	o.metrics.ObserveUpload(slot, metrics.OutcomeSucceeded, len(data))
	o.log.Debug(ctx, "photo uploaded", "slot", slot, "url", url)
}

func classifyUpload(ctx context.Context, err error) models.FailureKind {
	var rejected *storage.RejectedError
	switch {
	case errors.As(err, &rejected):
		return models.FailureRejected
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return models.FailureCancelled
	default:
		return models.FailureNetwork
	}
}

func readSource(src models.Source) ([]byte, error) {
	r, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", src.Name, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src.Name, err)
	}
	return data, nil
}

// dispatcher forwards events to the consumer on its own goroutine.
type dispatcher struct {
	mu     sync.Mutex
	ch     chan ProgressEvent
	closed bool
}

func newDispatcher(fn func(ProgressEvent)) *dispatcher {
	d := &dispatcher{}
	if fn == nil {
		d.closed = true
		return d
	}
	d.ch = make(chan ProgressEvent, progressBuffer)
	go func() {
		for ev := range d.ch {
			fn(ev)
		}
	}()
	return d
}

// send never blocks. Storage transports may report progress from their own
// goroutines after Upload returned, hence the closed check.
func (d *dispatcher) send(ev ProgressEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.ch <- ev:
	default:
	}
}

func (d *dispatcher) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.ch)
}
