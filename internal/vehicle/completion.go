package vehicle

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Stage names one section of the multi-step registration form.
type Stage string

const (
	StageDetails   Stage = "detailsComplete"
	StageOwner     Stage = "ownerComplete"
	StageDocuments Stage = "documentsComplete"
	StagePhotos    Stage = "photosComplete"
)

// Stages is the closed set of completion stages.
var Stages = []Stage{StageDetails, StageOwner, StageDocuments, StagePhotos}

var ErrUnknownStage = errors.New("unknown completion stage")

// ParseStage converts s into a Stage.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// Valid reports whether s belongs to Stages.
func (s Stage) Valid() bool {
	_, err := ParseStage(string(s))
	return err == nil
}

// Completion maps each stage to its done flag. A missing stage is not done.
type Completion map[Stage]bool

// Done reports whether stage is marked true.
func (c Completion) Done(stage Stage) bool {
	return c[stage]
}

// Complete reports whether every stage is done.
func (c Completion) Complete() bool {
	for _, st := range Stages {
		if !c[st] {
			return false
		}
	}
	return true
}

// Pending returns the stages not yet done, in Stages order.
func (c Completion) Pending() []Stage {
	var out []Stage
	for _, st := range Stages {
		if !c[st] {
			out = append(out, st)
		}
	}
	return out
}

// With returns a copy of c with stage set to value.
func (c Completion) With(stage Stage, value bool) Completion {
	out := c.Clone()
	if out == nil {
		out = Completion{}
	}
	out[stage] = value
	return out
}

// Clone returns an independent copy of c.
func (c Completion) Clone() Completion {
	if c == nil {
		return nil
	}
	out := make(Completion, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// UnmarshalJSON keeps the known stages and drops any other key. The backend
// stores flags as a loose mapping, so a stage this build does not know about
// must not make the record unreadable. Writers go through ParseStage.
func (c *Completion) UnmarshalJSON(b []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		*c = nil
		return nil
	}
	out := make(Completion, len(raw))
	for k, v := range raw {
		st, err := ParseStage(k)
		if err != nil {
			continue
		}
		out[st] = v
	}
	*c = out
	return nil
}
