package domain

import "time"

// DocumentMetadata describes one logically uploaded document. Values are
// immutable after construction; WithChunkCount returns a copy rather than
// mutating in place.
type DocumentMetadata struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
	ChunkCount  int       `json:"chunkCount"`
}

// NewDocumentMetadata creates metadata for a freshly ingested document with
// the upload time set to now and a zero chunk count.
func NewDocumentMetadata(id, filename, contentType string, size int64) DocumentMetadata {
	return DocumentMetadata{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  time.Now(),
	}
}

// WithChunkCount returns a copy of the metadata with the chunk count set.
// The chunk count is set exactly once, after chunking and embedding complete.
func (m DocumentMetadata) WithChunkCount(n int) DocumentMetadata {
	m.ChunkCount = n
	return m
}

// Segment is a contiguous span of a document's extracted text, the unit of
// embedding and retrieval. The chunker leaves DocumentID and Filename empty;
// the ingestion pipeline tags them before embedding. Segments are never
// mutated after creation.
type Segment struct {
	DocumentID string
	Filename   string
	Index      int
	Start      int // rune offset into the extracted text, inclusive
	End        int // rune offset, exclusive
	Text       string
}

// ChatAnswer is the result of answering one user question. Sources lists the
// filenames whose segments grounded the answer, de-duplicated and ordered by
// first occurrence; it is empty when the answer was not grounded.
type ChatAnswer struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}
