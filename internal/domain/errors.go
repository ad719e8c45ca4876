package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSlugTaken signals a slug-uniqueness violation in the article store.
	ErrSlugTaken = errors.New("article slug already exists")

	// ErrCategoryUnresolved signals that neither the candidate's category nor
	// the default category could be found.
	ErrCategoryUnresolved = errors.New("category could not be resolved")

	// ErrJobNotFound signals a lookup for an unknown extraction job id.
	ErrJobNotFound = errors.New("extraction job not found")

	// ErrJobTerminal signals a write against a job already in done or error.
	ErrJobTerminal = errors.New("extraction job is in a terminal state")
)

// BatchSizeError rejects batches outside the 1..N range before any job is
// created. Count is the number of URLs the caller submitted.
type BatchSizeError struct {
	Count int
	Max   int
}

func (e *BatchSizeError) Error() string {
	if e.Count == 0 {
		return "batch contains no URLs"
	}
	return fmt.Sprintf("batch contains %d URLs, maximum is %d", e.Count, e.Max)
}

// SchemaError rejects a whole structured-JSON submission, naming the violated
// field verbatim so the operator can fix the input.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}
