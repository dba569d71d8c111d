package registry

import (
	"context"

	"github.com/geziefer/docchat/internal/domain"
	"github.com/geziefer/docchat/internal/logger"
	"github.com/geziefer/docchat/internal/port"
)

// RestoredContentType marks metadata rebuilt from index payloads. The
// original content type, size and upload time are not recoverable, so the
// sentinel makes the degraded provenance explicit instead of fabricating
// precision.
const RestoredContentType = "application/octet-stream"

// Restore rebuilds registry entries by scanning the vector index for payloads
// carrying a document id and filename, regrouping them by document id and
// counting chunks. This is a best-effort recovery path after a process
// restart, not a source of truth: a scan failure leaves the registry as it
// was and is not an error.
func Restore(ctx context.Context, r *Registry, idx port.VectorIndex) int {
	scanner, ok := idx.(port.Scanner)
	if !ok {
		logger.Debug("registry restore skipped: index is not scannable")
		return 0
	}

	entries, err := scanner.Scan(ctx)
	if err != nil {
		logger.Warn("registry restore skipped: %v", err)
		return 0
	}

	byDoc := make(map[string][]string)
	names := make(map[string]string)
	for _, e := range entries {
		if e.Payload.DocumentID == "" || e.Payload.Filename == "" {
			continue
		}
		byDoc[e.Payload.DocumentID] = append(byDoc[e.Payload.DocumentID], e.ID)
		names[e.Payload.DocumentID] = e.Payload.Filename
	}

	for docID, ids := range byDoc {
		metadata := domain.NewDocumentMetadata(docID, names[docID], RestoredContentType, 0).
			WithChunkCount(len(ids))
		r.Put(metadata, ids)
	}

	if len(byDoc) > 0 {
		logger.Info("restored %d documents from vector index", len(byDoc))
	}
	return len(byDoc)
}
