package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vehiclereg/internal/client/client"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// DuplicateChecker answers whether a registration number is already taken.
type DuplicateChecker interface {
	Exists(ctx context.Context, registrationNumber string) (bool, error)
}

// DuplicateLookup is the backend query behind the checker.
type DuplicateLookup interface {
	CheckDuplicate(ctx context.Context, key string) (bool, error)
}

type duplicateChecker struct {
	lookup DuplicateLookup
}

func NewDuplicateChecker(lookup DuplicateLookup) DuplicateChecker {
	return &duplicateChecker{lookup: lookup}
}

// Exists normalizes the number before asking, so "wp cab-1234" and
// "WP-CAB-1234" are the same registration.
func (c *duplicateChecker) Exists(ctx context.Context, registrationNumber string) (bool, error) {
	key := vehicle.NormalizeRegistration(registrationNumber)
	if key == "" {
		return false, &client.ValidationError{Field: "registrationNumber", Message: "registration number is required"}
	}
	exists, err := c.lookup.CheckDuplicate(ctx, key)
	if err != nil {
		return false, fmt.Errorf("checking duplicate %s: %w", key, err)
	}
	return exists, nil
}
