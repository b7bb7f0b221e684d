package v3d

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedWaveform marks a waveform or norm export with the wrong shape.
	ErrMalformedWaveform = errors.New("malformed waveform")
	// ErrMalformedTable marks a fixed-layout export (metadata, summary) with too few rows.
	ErrMalformedTable = errors.New("malformed table")
	// ErrMissingField marks an identity field absent from the metadata.
	ErrMissingField = errors.New("missing field")
)

// MalformedError reports a structurally invalid export.
type MalformedError struct {
	Kind   error
	Source string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%v %q: %s", e.Kind, e.Source, e.Reason)
}

func (e *MalformedError) Unwrap() error { return e.Kind }

func malformedWaveform(source, format string, args ...any) error {
	return &MalformedError{Kind: ErrMalformedWaveform, Source: source, Reason: fmt.Sprintf(format, args...)}
}

func malformedTable(source, format string, args ...any) error {
	return &MalformedError{Kind: ErrMalformedTable, Source: source, Reason: fmt.Sprintf(format, args...)}
}

// MissingFieldError names the metadata field that was required but absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%v: %q", ErrMissingField, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }
