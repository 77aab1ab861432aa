// Package services holds the business rules of the registry server.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/server/repositories/records"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// ValidationError names the offending field of a refused payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

type RecordService struct {
	repo records.Repository
	log  logging.Logger
}

func NewRecordService(repo records.Repository, log logging.Logger) *RecordService {
	if log == nil {
		log = logging.Nop()
	}
	return &RecordService{repo: repo, log: log}
}

func (s *RecordService) List(ctx context.Context) ([]vehicle.Record, error) {
	return s.repo.List(ctx)
}

// Incomplete returns records missing a photo or a completion flag.
func (s *RecordService) Incomplete(ctx context.Context) ([]vehicle.Record, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]vehicle.Record, 0, len(all))
	for _, rec := range all {
		if !rec.Complete() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *RecordService) Get(ctx context.Context, id string) (vehicle.Record, error) {
	return s.repo.Get(ctx, id)
}

// Exists reports whether number, after normalization, is taken.
func (s *RecordService) Exists(ctx context.Context, number string) (bool, error) {
	key := vehicle.NormalizeRegistration(number)
	if key == "" {
		return false, &ValidationError{Field: "registrationNumber", Message: "registration number is required"}
	}
	return s.repo.ExistsByKey(ctx, key)
}

// Create stores a new record. The completion status always starts empty;
// flags are only set through SetFlag.
func (s *RecordService) Create(ctx context.Context, rec vehicle.Record) (vehicle.Record, error) {
	rec.RegistrationNumber = strings.TrimSpace(rec.RegistrationNumber)
	if rec.Key() == "" {
		return vehicle.Record{}, &ValidationError{Field: "registrationNumber", Message: "registration number is required"}
	}
	if strings.TrimSpace(rec.OwnerName) == "" {
		return vehicle.Record{}, &ValidationError{Field: "ownerName", Message: "owner name is required"}
	}
	rec.ID = ""
	rec.Status = vehicle.Completion{}

	saved, err := s.repo.Insert(ctx, rec)
	if err != nil {
		return vehicle.Record{}, err
	}
	s.log.Info(ctx, "record created", "id", saved.ID, "registration", saved.RegistrationNumber)
	return saved, nil
}

// Update overlays the non-empty fields of patch. The registration number
// may be repeated (in any formatting) but not changed.
func (s *RecordService) Update(ctx context.Context, id string, patch vehicle.Record) (vehicle.Record, error) {
	saved, err := s.repo.Modify(ctx, id, func(cur vehicle.Record) (vehicle.Record, error) {
		if patch.RegistrationNumber != "" && patch.Key() != cur.Key() {
			return vehicle.Record{}, &ValidationError{Field: "registrationNumber", Message: "registration number cannot be changed"}
		}
		return cur.Apply(patch)
	})
	if err != nil {
		return vehicle.Record{}, err
	}
	s.log.Info(ctx, "record updated", "id", id)
	return saved, nil
}

// SetFlag sets exactly one completion flag.
func (s *RecordService) SetFlag(ctx context.Context, id string, stage vehicle.Stage, value bool) (vehicle.Record, error) {
	if !stage.Valid() {
		return vehicle.Record{}, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown stage %q", stage)}
	}
	return s.repo.SetStatus(ctx, id, stage, value)
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "record deleted", "id", id)
	return nil
}
