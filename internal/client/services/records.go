// Package services contains the application services of the registry
// client: record browsing, the duplicate check, photo uploads and the
// submission coordinator that ties them together.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vehiclereg/internal/client/client"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// RecordRepository is the part of client.Client the coordinator writes through.
type RecordRepository interface {
	Create(ctx context.Context, rec vehicle.Record) (vehicle.Record, error)
	Update(ctx context.Context, id string, rec vehicle.Record) (vehicle.Record, error)
	PatchStatusFlag(ctx context.Context, id string, stage vehicle.Stage, value bool) (vehicle.Record, error)
	Delete(ctx context.Context, id string) error
}

// RecordService is the read side used by the CLI plus single-flag edits.
type RecordService interface {
	List(ctx context.Context) ([]vehicle.Record, error)
	Incomplete(ctx context.Context) ([]vehicle.Record, error)
	Get(ctx context.Context, id string) (vehicle.Record, error)
	MarkStage(ctx context.Context, id string, stage vehicle.Stage) (vehicle.Record, error)
	Ping(ctx context.Context) error
}

type recordService struct {
	client client.Client
}

func NewRecordService(c client.Client) RecordService {
	return &recordService{client: c}
}

func (s *recordService) List(ctx context.Context) ([]vehicle.Record, error) {
	recs, err := s.client.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	return recs, nil
}

// Incomplete returns the backend's incomplete list as is.
func (s *recordService) Incomplete(ctx context.Context) ([]vehicle.Record, error) {
	recs, err := s.client.FetchIncomplete(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing incomplete records: %w", err)
	}
	return recs, nil
}

func (s *recordService) Get(ctx context.Context, id string) (vehicle.Record, error) {
	rec, err := s.client.FetchOne(ctx, id)
	if err != nil {
		return vehicle.Record{}, fmt.Errorf("error retrieving record %s: %w", id, err)
	}
	return rec, nil
}

// MarkStage sets one completion flag to true.
func (s *recordService) MarkStage(ctx context.Context, id string, stage vehicle.Stage) (vehicle.Record, error) {
	rec, err := s.client.PatchStatusFlag(ctx, id, stage, true)
	if err != nil {
		return vehicle.Record{}, fmt.Errorf("error setting %s on %s: %w", stage, id, err)
	}
	return rec, nil
}

func (s *recordService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
