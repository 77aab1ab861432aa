package vehicle

import (
	"errors"
	"fmt"
)

// Slot is one of the four required photograph positions.
type Slot string

const (
	SlotFront Slot = "front"
	SlotLeft  Slot = "left"
	SlotRight Slot = "right"
	SlotRear  Slot = "rear"
)

// Slots lists every required slot in display order.
var Slots = []Slot{SlotFront, SlotLeft, SlotRight, SlotRear}

var ErrUnknownSlot = errors.New("unknown photo slot")

// ParseSlot converts s into a Slot.
func ParseSlot(s string) (Slot, error) {
	for _, slot := range Slots {
		if string(slot) == s {
			return slot, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, s)
}

// Photos holds the resolved artifact URLs of a record. An empty string means
// the slot has no artifact yet.
type Photos struct {
	FrontPhoto string `json:"frontPhoto,omitempty"`
	LeftPhoto  string `json:"leftPhoto,omitempty"`
	RightPhoto string `json:"rightPhoto,omitempty"`
	RearPhoto  string `json:"rearPhoto,omitempty"`
}

// Get returns the URL stored for slot.
func (p Photos) Get(slot Slot) string {
	switch slot {
	case SlotFront:
		return p.FrontPhoto
	case SlotLeft:
		return p.LeftPhoto
	case SlotRight:
		return p.RightPhoto
	case SlotRear:
		return p.RearPhoto
	}
	return ""
}

// Set stores url for slot. Unknown slots are ignored.
func (p *Photos) Set(slot Slot, url string) {
	switch slot {
	case SlotFront:
		p.FrontPhoto = url
	case SlotLeft:
		p.LeftPhoto = url
	case SlotRight:
		p.RightPhoto = url
	case SlotRear:
		p.RearPhoto = url
	}
}

// Complete reports whether every slot has a URL.
func (p Photos) Complete() bool {
	return len(p.Missing()) == 0
}

// Missing returns the slots without a URL, in Slots order.
func (p Photos) Missing() []Slot {
	var out []Slot
	for _, slot := range Slots {
		if p.Get(slot) == "" {
			out = append(out, slot)
		}
	}
	return out
}
