package domain

import (
	"errors"
	"fmt"
)

// Domain errors distinguish expected outcomes from infrastructure failures.
var (
	// ErrNotFound indicates a requested document does not exist. Deleting an
	// unknown id is a normal outcome, not a failure.
	ErrNotFound = errors.New("document not found")

	// ErrEmbedding indicates the embedding service failed or returned a
	// result that cannot be paired with its input.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndex indicates the vector index rejected an operation.
	ErrIndex = errors.New("vector index failed")
)

// ExtractionError indicates text could not be derived from uploaded bytes,
// e.g. a corrupt or unsupported binary format. It is surfaced per document so
// a multi-file upload can report partial success.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IsExtraction reports whether err is (or wraps) an ExtractionError.
func IsExtraction(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}
