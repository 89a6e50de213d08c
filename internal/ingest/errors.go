package ingest

import (
	"errors"
	"fmt"
)

// ErrDocument marks a document that cannot be decoded into the expected shape.
var ErrDocument = errors.New("malformed document")

// RecordError ties a failure to one entry of a document.
type RecordError struct {
	Ref string
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ref, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
