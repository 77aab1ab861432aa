package models

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// UploadState is the lifecycle state of a single slot upload.
type UploadState string

const (
	UploadPending   UploadState = "pending"
	UploadUploading UploadState = "uploading"
	UploadSucceeded UploadState = "succeeded"
	UploadFailed    UploadState = "failed"
)

// FailureKind classifies why a slot upload failed.
type FailureKind string

const (
	// FailureNetwork: the storage endpoint could not be reached or the
	// transfer broke off.
	FailureNetwork FailureKind = "network"
	// FailureRejected: the storage endpoint answered and refused the file.
	FailureRejected FailureKind = "rejected"
	// FailureMissing: no file was selected for the slot.
	FailureMissing FailureKind = "missing"
	// FailureSource: the selected local file could not be read.
	FailureSource FailureKind = "source"
	// FailureCancelled: the submission was cancelled mid-transfer.
	FailureCancelled FailureKind = "cancelled"
)

var ErrNoFileSelected = errors.New("no file selected")

// Source is a file the user picked for a slot.
type Source struct {
	Name string
	open func() (io.ReadCloser, error)
}

// FileSource returns a Source reading the file at path.
func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BytesSource returns an in-memory Source.
func BytesSource(name string, data []byte) Source {
	return Source{
		Name: name,
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// IsZero reports whether no file was selected.
func (s Source) IsZero() bool { return s.open == nil }

// Open opens the underlying file.
func (s Source) Open() (io.ReadCloser, error) {
	if s.open == nil {
		return nil, ErrNoFileSelected
	}
	return s.open()
}

// UploadTask tracks the upload of one slot within a submission. It lives
// only in memory and is discarded with its Batch.
type UploadTask struct {
	Slot     vehicle.Slot
	Source   Source
	Progress float64
	State    UploadState
	URL      string

	// Kind and Err are set when State is UploadFailed.
	Kind FailureKind
	Err  error

	// Seeded marks a URL inherited from an already persisted record rather
	// than uploaded by this submission.
	Seeded bool
}
