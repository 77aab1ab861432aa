package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/vehiclereg/internal/client/models"
	"github.com/dmitrijs2005/vehiclereg/internal/client/services"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

// progressPrinter renders upload progress. On a terminal it redraws one
// status line in place; otherwise it prints a line per state change.
type progressPrinter struct {
	w           io.Writer
	interactive bool

	mu    sync.Mutex
	slots map[vehicle.Slot]services.ProgressEvent
	drawn bool
}

func newProgressPrinter(w io.Writer, interactive bool) *progressPrinter {
	return &progressPrinter{w: w, interactive: interactive, slots: make(map[vehicle.Slot]services.ProgressEvent)}
}

func (p *progressPrinter) Handle(ev services.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, seen := p.slots[ev.Slot]
	p.slots[ev.Slot] = ev

	if p.interactive {
		fmt.Fprint(p.w, "\r"+p.line())
		p.drawn = true
		return
	}
	if !seen || prev.State != ev.State {
		fmt.Fprintf(p.w, "%s: %s\n", ev.Slot, ev.State)
	}
}

// Finish terminates the in-place line, if one was drawn.
func (p *progressPrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}

func (p *progressPrinter) line() string {
	parts := make([]string, 0, len(vehicle.Slots))
	for _, slot := range vehicle.Slots {
		ev, ok := p.slots[slot]
		switch {
		case !ok:
			parts = append(parts, fmt.Sprintf("%s -", slot))
		case ev.State == models.UploadUploading:
			parts = append(parts, fmt.Sprintf("%s %3.0f%%", slot, ev.Fraction*100))
		default:
			parts = append(parts, fmt.Sprintf("%s %s", slot, ev.State))
		}
	}
	return strings.Join(parts, " | ")
}
