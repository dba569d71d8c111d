package port

import "context"

// TextExtractor turns raw document bytes into plain text. Implementations are
// opaque to the core; embedded sub-documents inside container formats are not
// recursively extracted.
type TextExtractor interface {
	// Extract derives plain text from data. The declared content type is a
	// hint, not a guarantee.
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}
