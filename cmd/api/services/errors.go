package services

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks caller mistakes. Handlers answer 400 for anything wrapping it.
var ErrInvalidRequest = errors.New("invalid request")

var (
	ErrEmptyQuery         = fmt.Errorf("%w: search query is empty", ErrInvalidRequest)
	ErrInvalidCategory    = fmt.Errorf("%w: unknown category", ErrInvalidRequest)
	ErrUnknownContentType = fmt.Errorf("%w: unknown content type", ErrInvalidRequest)
)

// ErrNotFound is returned when a slug matches no published item.
var ErrNotFound = errors.New("content not found")
