package notionclient

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable covers transport failures, timeouts and non-success answers.
	ErrSourceUnavailable = errors.New("content source unavailable")
	// ErrConfigurationMissing is matched by *MissingConfigError.
	ErrConfigurationMissing = errors.New("content source configuration missing")
	// ErrPartialRecord is matched by *PartialRecordError.
	ErrPartialRecord = errors.New("malformed content record")
)

// MissingConfigError names the environment key that is not set. It never carries the value.
type MissingConfigError struct {
	Key string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("%s: %s is not set", ErrConfigurationMissing, e.Key)
}

func (e *MissingConfigError) Is(target error) bool {
	return target == ErrConfigurationMissing
}

// PartialRecordError describes one record that could not be normalized.
type PartialRecordError struct {
	Index int
	ID    string
	Err   error
}

func (e *PartialRecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s (index=%d id=%s): %v", ErrPartialRecord, e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("%s (index=%d): %v", ErrPartialRecord, e.Index, e.Err)
}

func (e *PartialRecordError) Is(target error) bool {
	return target == ErrPartialRecord
}

func (e *PartialRecordError) Unwrap() error { return e.Err }

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrSourceUnavailable}, args...)...)
}

// errUnknownProperty is returned when the database schema lacks a filtered property.
// The client then retries the query without the server-side filter.
var errUnknownProperty = errors.New("filter property not found in database schema")
