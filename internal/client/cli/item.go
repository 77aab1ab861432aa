package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/vehiclereg/internal/client/models"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// formField is one prompt of the registration form.
type formField struct {
	label string
	text  func(d *vehicle.Details) *string
	num   func(d *vehicle.Details) *int
}

func textField(label string, f func(d *vehicle.Details) *string) formField {
	return formField{label: label, text: f}
}

func numField(label string, f func(d *vehicle.Details) *int) formField {
	return formField{label: label, num: f}
}

// formSection groups the fields that belong to one completion stage.
type formSection struct {
	title  string
	stage  vehicle.Stage
	fields []formField
}

var formSections = []formSection{
	{
		title: "Vehicle details",
		stage: vehicle.StageDetails,
		fields: []formField{
			textField("Make", func(d *vehicle.Details) *string { return &d.Make }),
			textField("Model", func(d *vehicle.Details) *string { return &d.Model }),
			numField("Year of manufacture", func(d *vehicle.Details) *int { return &d.YearOfManufacture }),
			textField("Color", func(d *vehicle.Details) *string { return &d.Color }),
			textField("Chassis number", func(d *vehicle.Details) *string { return &d.ChassisNumber }),
			textField("Engine number", func(d *vehicle.Details) *string { return &d.EngineNumber }),
			numField("Engine capacity (cc)", func(d *vehicle.Details) *int { return &d.EngineCapacityCC }),
			textField("Fuel type", func(d *vehicle.Details) *string { return &d.FuelType }),
			textField("Vehicle class", func(d *vehicle.Details) *string { return &d.VehicleClass }),
			textField("Body type", func(d *vehicle.Details) *string { return &d.BodyType }),
			numField("Seating capacity", func(d *vehicle.Details) *int { return &d.SeatingCapacity }),
			textField("Front tyre size", func(d *vehicle.Details) *string { return &d.FrontTyreSize }),
			textField("Rear tyre size", func(d *vehicle.Details) *string { return &d.RearTyreSize }),
			numField("Length (mm)", func(d *vehicle.Details) *int { return &d.LengthMM }),
			numField("Width (mm)", func(d *vehicle.Details) *int { return &d.WidthMM }),
			numField("Height (mm)", func(d *vehicle.Details) *int { return &d.HeightMM }),
			numField("Wheelbase (mm)", func(d *vehicle.Details) *int { return &d.WheelbaseMM }),
			numField("Gross weight (kg)", func(d *vehicle.Details) *int { return &d.GrossWeightKG }),
			numField("Unladen weight (kg)", func(d *vehicle.Details) *int { return &d.UnladenWeightKG }),
		},
	},
	{
		title: "Owner",
		stage: vehicle.StageOwner,
		fields: []formField{
			textField("Owner name", func(d *vehicle.Details) *string { return &d.OwnerName }),
			textField("Owner ID number", func(d *vehicle.Details) *string { return &d.OwnerIDNumber }),
			textField("Owner address", func(d *vehicle.Details) *string { return &d.OwnerAddress }),
			textField("Owner phone", func(d *vehicle.Details) *string { return &d.OwnerPhone }),
			textField("Owner email", func(d *vehicle.Details) *string { return &d.OwnerEmail }),
		},
	},
	{
		title: "Documents",
		stage: vehicle.StageDocuments,
		fields: []formField{
			textField("First registration date (YYYY-MM-DD)", func(d *vehicle.Details) *string { return &d.FirstRegistrationDate }),
			textField("Registration date (YYYY-MM-DD)", func(d *vehicle.Details) *string { return &d.RegistrationDate }),
			textField("Province", func(d *vehicle.Details) *string { return &d.Province }),
			textField("Tax class", func(d *vehicle.Details) *string { return &d.TaxClass }),
			textField("Revenue license number", func(d *vehicle.Details) *string { return &d.RevenueLicenseNumber }),
			textField("Revenue license expiry (YYYY-MM-DD)", func(d *vehicle.Details) *string { return &d.RevenueLicenseExpiry }),
			textField("Insurance policy number", func(d *vehicle.Details) *string { return &d.InsurancePolicyNumber }),
			textField("Insurance expiry (YYYY-MM-DD)", func(d *vehicle.Details) *string { return &d.InsuranceExpiry }),
			numField("Previous owners", func(d *vehicle.Details) *int { return &d.PreviousOwners }),
		},
	},
}

// InputRecord walks the registration form. current pre-fills every prompt;
// Enter keeps the shown value. The registration number is only asked for
// when current has none. Sections the user confirms as done are returned
// as stages to mark complete.
func InputRecord(reader *bufio.Reader, current vehicle.Record, w io.Writer) (vehicle.Record, []vehicle.Stage, error) {
	rec := current
	var stages []vehicle.Stage

	if rec.RegistrationNumber == "" {
		for rec.RegistrationNumber == "" {
			n, err := GetSimpleText(reader, "Registration number (e.g. WP-CAB-1234)", w)
			if err != nil {
				return vehicle.Record{}, nil, err
			}
			if vehicle.NormalizeRegistration(n) == "" {
				fmt.Fprintln(w, "A registration number is required.")
				continue
			}
			rec.RegistrationNumber = n
		}
	} else {
		fmt.Fprintf(w, "Registration number: %s\n", rec.RegistrationNumber)
	}

	for _, sec := range formSections {
		fmt.Fprintf(w, "-- %s --\n", sec.title)
		for _, f := range sec.fields {
			if err := f.ask(reader, &rec.Details, w); err != nil {
				return vehicle.Record{}, nil, err
			}
		}
		if current.Status.Done(sec.stage) {
			continue
		}
		done, err := GetYesNo(reader, fmt.Sprintf("Mark %q complete?", strings.ToLower(sec.title)), w)
		if err != nil {
			return vehicle.Record{}, nil, err
		}
		if done {
			stages = append(stages, sec.stage)
		}
	}

	return rec, stages, nil
}

func (f formField) ask(reader *bufio.Reader, d *vehicle.Details, w io.Writer) error {
	if f.num != nil {
		p := f.num(d)
		n, err := GetInt(reader, f.label, *p, w)
		if err != nil {
			return err
		}
		*p = n
		return nil
	}
	p := f.text(d)
	s, err := GetWithDefault(reader, f.label, *p, w)
	if err != nil {
		return err
	}
	*p = s
	return nil
}

// InputPhotos asks for a file path per slot. Enter skips a slot; slots that
// already have a URL in existing say so in the prompt.
func InputPhotos(reader *bufio.Reader, existing vehicle.Photos, w io.Writer) (map[vehicle.Slot]models.Source, error) {
	files := make(map[vehicle.Slot]models.Source, len(vehicle.Slots))
	for _, slot := range vehicle.Slots {
		prompt := fmt.Sprintf("Path to %s photo", slot)
		if existing.Get(slot) != "" {
			prompt += " (already uploaded, Enter to keep)"
		}
		path, err := GetSimpleText(reader, prompt, w)
		if err != nil {
			return nil, err
		}
		if path != "" {
			files[slot] = models.FileSource(path)
		}
	}
	return files, nil
}

// ParseStageArg accepts a stage either by its wire name ("ownerComplete")
// or by its short form ("owner").
func ParseStageArg(s string) (vehicle.Stage, error) {
	if st, err := vehicle.ParseStage(s); err == nil {
		return st, nil
	}
	return vehicle.ParseStage(strings.ToLower(s) + "Complete")
}
