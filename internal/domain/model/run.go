package model

import (
	"fmt"
	"time"
)

// Mode selects how credential text is placed into the template.
type Mode string

const (
	// ModeReplace substitutes the existing login/password text runs in place.
	ModeReplace Mode = "replace"
	// ModeOverlay clears a rectangle per field and draws new text over it.
	ModeOverlay Mode = "overlay"
	// ModeKeep leaves the template text untouched; only the filename changes.
	ModeKeep Mode = "keep"
)

// ParseMode converts a user-supplied mode string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeReplace, ModeOverlay, ModeKeep:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q: expected replace, overlay, or keep", s)
}

// OutputKind is the packaging of a generation result.
type OutputKind string

const (
	OutputPDF OutputKind = "pdf"
	OutputZIP OutputKind = "zip"
)

// Run status values.
const (
	RunStatusOK    = "ok"
	RunStatusError = "error"
)

// Run is one recorded generation attempt. History rows are a convenience
// for the GUI; generation itself never depends on them.
type Run struct {
	ID           int64
	TemplateName string
	CSVName      string
	Mode         Mode
	PageIndex    int
	RecordCount  int
	OutputKind   OutputKind
	Status       string
	Error        string
	CreatedAt    time.Time
}
