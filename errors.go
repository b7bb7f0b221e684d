package gaitnotes

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRequiredFile marks an absent export without which a dataset cannot be built.
	ErrMissingRequiredFile = errors.New("missing required file")
	// ErrMissingOptionalFile marks an absent export that was replaced by a placeholder or skipped.
	ErrMissingOptionalFile = errors.New("missing optional file")
)

// MissingFileError names a configured export that was not among the inputs.
type MissingFileError struct {
	File     string
	Required bool
	// Parameter is set when the file belongs to a kinematic parameter.
	Parameter string
}

func (e *MissingFileError) Error() string {
	if e.Parameter != "" {
		return fmt.Sprintf("%v %q for %s", e.Unwrap(), e.File, e.Parameter)
	}
	return fmt.Sprintf("%v %q", e.Unwrap(), e.File)
}

func (e *MissingFileError) Unwrap() error {
	if e.Required {
		return ErrMissingRequiredFile
	}
	return ErrMissingOptionalFile
}
