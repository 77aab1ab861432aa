// Package vehicle defines the vehicle registration record shared by the
// client submission pipeline and the reference registry backend.
package vehicle

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// Record is a persisted vehicle registration.
//
// ID is assigned by the backend on the first successful create and is empty
// before that. RegistrationNumber is the natural key and cannot change once
// a record exists.
type Record struct {
	ID                 string `json:"id,omitempty"`
	RegistrationNumber string `json:"registrationNumber"`

	Details
	Photos

	Status Completion `json:"status,omitempty"`
}

// Details holds the descriptive attributes of a registration. Zero values
// mean "not provided"; partial updates only carry non-zero fields.
type Details struct {
	// owner
	OwnerName     string `json:"ownerName,omitempty"`
	OwnerIDNumber string `json:"ownerIdNumber,omitempty"`
	OwnerAddress  string `json:"ownerAddress,omitempty"`
	OwnerPhone    string `json:"ownerPhone,omitempty"`
	OwnerEmail    string `json:"ownerEmail,omitempty"`

	// specification
	Make              string `json:"make,omitempty"`
	Model             string `json:"model,omitempty"`
	YearOfManufacture int    `json:"yearOfManufacture,omitempty"`
	Color             string `json:"color,omitempty"`
	ChassisNumber     string `json:"chassisNumber,omitempty"`
	EngineNumber      string `json:"engineNumber,omitempty"`
	EngineCapacityCC  int    `json:"engineCapacity,omitempty"`
	FuelType          string `json:"fuelType,omitempty"`
	VehicleClass      string `json:"vehicleClass,omitempty"`
	BodyType          string `json:"bodyType,omitempty"`
	SeatingCapacity   int    `json:"seatingCapacity,omitempty"`
	FrontTyreSize     string `json:"frontTyreSize,omitempty"`
	RearTyreSize      string `json:"rearTyreSize,omitempty"`

	// dimensions, millimetres and kilograms
	LengthMM        int `json:"length,omitempty"`
	WidthMM         int `json:"width,omitempty"`
	HeightMM        int `json:"height,omitempty"`
	WheelbaseMM     int `json:"wheelbase,omitempty"`
	GrossWeightKG   int `json:"grossWeight,omitempty"`
	UnladenWeightKG int `json:"unladenWeight,omitempty"`

	// dates are kept as entered (YYYY-MM-DD)
	FirstRegistrationDate string `json:"firstRegistrationDate,omitempty"`
	RegistrationDate      string `json:"registrationDate,omitempty"`

	// tax and provincial
	Province              string `json:"province,omitempty"`
	TaxClass              string `json:"taxClass,omitempty"`
	RevenueLicenseNumber  string `json:"revenueLicenseNumber,omitempty"`
	RevenueLicenseExpiry  string `json:"revenueLicenseExpiry,omitempty"`
	InsurancePolicyNumber string `json:"insurancePolicyNumber,omitempty"`
	InsuranceExpiry       string `json:"insuranceExpiry,omitempty"`
	PreviousOwners        int    `json:"previousOwners,omitempty"`
}

// Key returns the normalized registration number used for uniqueness.
func (r Record) Key() string {
	return NormalizeRegistration(r.RegistrationNumber)
}

// PhotoComplete reports whether all four artifact references are set.
func (r Record) PhotoComplete() bool {
	return r.Photos.Complete()
}

// FlagComplete reports whether every completion stage is marked done.
func (r Record) FlagComplete() bool {
	return r.Status.Complete()
}

// Complete reports whether the record is both photo-complete and flag-complete.
func (r Record) Complete() bool {
	return r.PhotoComplete() && r.FlagComplete()
}

// Apply overlays the non-zero descriptive and photo fields of patch onto a
// copy of r. Identity and status are never touched.
func (r Record) Apply(patch Record) (Record, error) {
	out := r
	if err := overlay(&out.Details, patch.Details); err != nil {
		return Record{}, fmt.Errorf("details: %w", err)
	}
	if err := overlay(&out.Photos, patch.Photos); err != nil {
		return Record{}, fmt.Errorf("photos: %w", err)
	}
	out.Status = r.Status.Clone()
	return out, nil
}

// overlay relies on omitempty: only fields present in src survive the
// marshal and get written onto dst.
func overlay[T any](dst *T, src T) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// NormalizeRegistration folds a user-entered registration number into its
// comparison key: letters are upper-cased, digits kept, and separators
// (spaces, hyphens, dots) dropped, so "wp cab-1234" and "WP-CAB-1234" collide.
func NormalizeRegistration(number string) string {
	var b strings.Builder
	b.Grow(len(number))
	for _, r := range strings.TrimSpace(number) {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
