// Package storage uploads vehicle photographs to external object storage and
// resolves them to durable URLs.
//
// Two backends are provided: PresetUploader posts a multipart form with an
// upload preset (the hosted image service flow) and S3Uploader writes to an
// S3-compatible bucket. Neither validates size or type; the storage service
// decides, and its refusal is surfaced as a *RejectedError.
package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/vehiclereg/internal/netx"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
	"golang.org/x/crypto/blake2b"
)

// Object is one file to upload.
type Object struct {
	Key      string
	Filename string
	Data     []byte

	// Progress, if set, is called from the uploading goroutine as bytes
	// are handed to the transport.
	Progress netx.ProgressFunc
}

// Uploader stores an Object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

// RejectedError means the storage service answered and refused the upload.
// Message is the service's own wording.
type RejectedError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RejectedError) Error() string {
	var b strings.Builder
	b.WriteString("storage rejected upload")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// ObjectKey derives a content-addressed key for a slot photo, e.g.
// "registrations/WPCAB1234/front-3f2a9c0d1b7e4a55.jpg". Uploading the same
// bytes twice lands on the same key.
func ObjectKey(registration string, slot vehicle.Slot, filename string, data []byte) string {
	sum := blake2b.Sum256(data)
	ext := strings.ToLower(filepath.Ext(filename))
	reg := vehicle.NormalizeRegistration(registration)
	if reg == "" {
		reg = "unassigned"
	}
	return fmt.Sprintf("registrations/%s/%s-%s%s", reg, slot, hex.EncodeToString(sum[:8]), ext)
}
