package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bbiangul/kgqa"
	"github.com/bbiangul/kgqa/graph"
	"github.com/bbiangul/kgqa/store"
)

// maxUploadBytes bounds a multipart ingest request.
const maxUploadBytes = 100 << 20

type handler struct {
	engine kgqa.Engine
}

func newHandler(e kgqa.Engine) *handler {
	return &handler{engine: e}
}

// routes registers every endpoint on a fresh mux.
func (h *handler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /ingest", h.handleIngest)
	mux.HandleFunc("GET /query/{id}", h.handleQuery)
	mux.HandleFunc("GET /graphs", h.handleListGraphs)
	mux.HandleFunc("GET /graphs/{id}/summary", h.handleSummary)
	mux.HandleFunc("DELETE /graphs/{id}", h.handleDeleteGraph)
	return mux
}

type ingestResponse struct {
	GraphID   string      `json:"graph_id"`
	Message   string      `json:"message"`
	Stats     graph.Stats `json:"stats"`
	CreatedAt time.Time   `json:"created_at"`
}

type queryResponse struct {
	Answer   string      `json:"answer"`
	GraphID  string      `json:"graph_id"`
	Question string      `json:"question"`
	Stats    graph.Stats `json:"stats"`
}

// GET /
func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	hl, err := h.engine.Health(r.Context())
	if err != nil {
		h.fail(w, "health", "", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        hl.Status,
		"message":       kgqa.ServiceName + " is running",
		"active_graphs": hl.ActiveGraphs,
	})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	hl, err := h.engine.Health(r.Context())
	if err != nil {
		h.fail(w, "health", "", err)
		return
	}
	writeJSON(w, http.StatusOK, hl)
}

// POST /ingest
// Accepts JSON {"texts": [...], "description": "..."} or a multipart upload
// with one or more "file" fields.
func (h *handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	var (
		rec *store.Record
		err error
	)
	if isMultipart(r) {
		rec, err = h.ingestUpload(ctx, w, r)
	} else {
		var req struct {
			Texts       []string `json:"texts"`
			Description string   `json:"description"`
		}
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			writeError(w, http.StatusBadRequest, "invalid request: expected JSON with 'texts' or multipart 'file' fields")
			return
		}
		rec, err = h.engine.Ingest(ctx, req.Texts, kgqa.WithDescription(req.Description))
	}
	if err != nil {
		h.fail(w, "ingest", "", err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		GraphID: rec.ID,
		Message: fmt.Sprintf("Successfully created knowledge graph with %d entities and %d relationships",
			rec.Stats.Nodes, rec.Stats.Edges),
		Stats:     rec.Stats,
		CreatedAt: rec.CreatedAt,
	})
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// ingestUpload saves every uploaded file to a private temp directory and
// ingests them as one batch.
func (h *handler) ingestUpload(ctx context.Context, w http.ResponseWriter, r *http.Request) (*store.Record, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, badRequest("invalid multipart form")
	}
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		return nil, kgqa.ErrNoTexts
	}

	dir, err := os.MkdirTemp("", "kgqa-upload-")
	if err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	defer os.RemoveAll(dir)

	paths := make([]string, 0, len(headers))
	for i, fh := range headers {
		// One directory per upload keeps duplicate names apart and leaves
		// the base name, which IngestFiles uses as the description, intact.
		sub := filepath.Join(dir, strconv.Itoa(i))
		if err := os.Mkdir(sub, 0o700); err != nil {
			return nil, fmt.Errorf("creating upload dir: %w", err)
		}
		path := filepath.Join(sub, filepath.Base(fh.Filename))
		if err := saveUpload(fh, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	var opts []kgqa.IngestOption
	if d := r.FormValue("description"); d != "" {
		opts = append(opts, kgqa.WithDescription(d))
	}
	return h.engine.IngestFiles(ctx, paths, opts...)
}

func saveUpload(fh *multipart.FileHeader, path string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("saving upload %s: %w", fh.Filename, err)
	}
	return dst.Close()
}

// GET /query/{id}?question=...
func (h *handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	id := r.PathValue("id")
	question := r.URL.Query().Get("question")
	if question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	res, err := h.engine.Query(ctx, id, question)
	if err != nil {
		h.fail(w, "query", id, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:   res.Answer,
		GraphID:  res.GraphID,
		Question: res.Question,
		Stats:    res.Stats,
	})
}

// GET /graphs/{id}/summary
func (h *handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := h.engine.Summary(r.Context(), id)
	if err != nil {
		h.fail(w, "summary", id, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /graphs
func (h *handler) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	recs, err := h.engine.List(r.Context())
	if err != nil {
		h.fail(w, "list graphs", "", err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// DELETE /graphs/{id}
func (h *handler) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.engine.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete", id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully deleted graph " + id,
	})
}

// badRequest marks an error as the caller's fault.
type badRequest string

func (e badRequest) Error() string { return string(e) }

// fail maps an engine error onto a status code and writes it. id names
// the graph involved, if any.
func (h *handler) fail(w http.ResponseWriter, op, id string, err error) {
	var br badRequest
	switch {
	case errors.Is(err, kgqa.ErrGraphNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Graph with ID %s not found", id))
	case errors.Is(err, kgqa.ErrNoTexts):
		writeError(w, http.StatusBadRequest, "No texts provided")
	case errors.Is(err, kgqa.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "unsupported document format")
	case errors.As(err, &br):
		writeError(w, http.StatusBadRequest, br.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
		slog.Error(op+" error", "graph_id", id, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
