// Package server exposes the document pipeline and chat engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/geziefer/docchat/internal/chat"
	"github.com/geziefer/docchat/internal/domain"
	"github.com/geziefer/docchat/internal/ingest"
	"github.com/geziefer/docchat/internal/port"
	"github.com/geziefer/docchat/internal/registry"
)

// Handler holds the dependencies for the HTTP handlers.
type Handler struct {
	pipeline    *ingest.Pipeline
	engine      *chat.Engine
	registry    *registry.Registry
	index       port.VectorIndex
	maxUploadMB int64
}

// NewHandler creates a handler over the assembled core components.
func NewHandler(pipeline *ingest.Pipeline, engine *chat.Engine, reg *registry.Registry,
	index port.VectorIndex, maxUploadMB int64) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}
	return &Handler{
		pipeline:    pipeline,
		engine:      engine,
		registry:    reg,
		index:       index,
		maxUploadMB: maxUploadMB,
	}
}

// UploadResponse reports per-file results of a multi-file upload.
type UploadResponse struct {
	Successful []domain.DocumentMetadata `json:"successful"`
	Errors     []string                  `json:"errors"`
	Message    string                    `json:"message"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// HandleUpload handles POST /documents/upload. Multiple files can be
// uploaded in one request; each file succeeds or fails independently so the
// response can report partial success.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadMB << 20); err != nil {
		sendJSON(w, http.StatusBadRequest, UploadResponse{
			Errors:  []string{"invalid multipart form: " + err.Error()},
			Message: "Upload failed",
		})
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		sendJSON(w, http.StatusBadRequest, UploadResponse{
			Errors:  []string{"no file uploaded"},
			Message: "Upload failed",
		})
		return
	}

	var resp UploadResponse
	for _, fh := range files {
		metadata, err := h.ingestOne(r.Context(), fh)
		if err != nil {
			resp.Errors = append(resp.Errors, "failed to process "+fh.Filename+": "+err.Error())
			continue
		}
		resp.Successful = append(resp.Successful, metadata)
	}

	if len(resp.Successful) > 0 {
		h.engine.InvalidateCache()
	}

	if len(resp.Successful) == 0 {
		resp.Message = "Upload failed"
	} else {
		resp.Message = pluralise(len(resp.Successful), "document") + " uploaded successfully"
	}
	sendJSON(w, http.StatusOK, resp)
}

func (h *Handler) ingestOne(ctx context.Context, fh *multipart.FileHeader) (domain.DocumentMetadata, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.DocumentMetadata{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.DocumentMetadata{}, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return h.pipeline.Ingest(ctx, fh.Filename, contentType, fh.Size, data)
}

// HandleList handles GET /documents.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	docs := h.registry.ListAll()
	if docs == nil {
		docs = []domain.DocumentMetadata{}
	}
	sendJSON(w, http.StatusOK, docs)
}

// HandleDelete handles DELETE /documents/{id}. An unknown id yields 404;
// that is the expected outcome of a double delete, not a server error.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.pipeline.Delete(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		sendJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
	case err != nil:
		sendJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		h.engine.InvalidateCache()
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleChat handles POST /chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Message == "" {
		sendJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	answer, err := h.engine.Answer(r.Context(), req.Message)
	if err != nil {
		sendJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if answer.Sources == nil {
		answer.Sources = []string{}
	}
	sendJSON(w, http.StatusOK, answer)
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := h.index.Count(r.Context())
	if err != nil {
		sendJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": h.registry.Len(),
		"segments":  count,
	})
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pluralise(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
