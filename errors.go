package deckexport

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for an unknown export format name.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrImageUnresolvable wraps every failure to load an image reference.
	ErrImageUnresolvable = errors.New("image could not be resolved")
)

// ExportError is the single error type returned by every exporter. It wraps
// the underlying cause so callers can still use errors.Is and errors.As.
type ExportError struct {
	Format Format
	Op     string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to %s %s export: %v", e.Op, e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

func wrapExportError(format Format, op string, err error) error {
	if err == nil {
		return nil
	}
	var ee *ExportError
	if errors.As(err, &ee) {
		return err
	}
	return &ExportError{Format: format, Op: op, Err: err}
}

// WarningKind classifies a recoverable problem.
type WarningKind string

const (
	WarnImageUnresolved    WarningKind = "image-unresolved"
	WarnUnsupportedElement WarningKind = "unsupported-element"
	WarnSlideSkipped       WarningKind = "slide-skipped"
	WarnBackgroundImage    WarningKind = "background-image-ignored"
)

// Warning records a recoverable problem that did not stop the export.
// Slide is 1-based; Element is the element ID, if any.
type Warning struct {
	Slide   int
	Element string
	Kind    WarningKind
	Err     error
}

func (w Warning) String() string {
	s := fmt.Sprintf("slide %d", w.Slide)
	if w.Element != "" {
		s += fmt.Sprintf(" element %s", w.Element)
	}
	s += ": " + string(w.Kind)
	if w.Err != nil {
		s += ": " + w.Err.Error()
	}
	return s
}
