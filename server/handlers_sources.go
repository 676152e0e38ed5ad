package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/deck"
	"github.com/sky-flux/flashcards/store"
	"github.com/sky-flux/flashcards/wanikani"
)

// SourceHandler serves /sources.
type SourceHandler struct {
	db       *store.DB
	provider *wanikani.Provider
	log      *slog.Logger
}

func NewSourceHandler(db *store.DB, provider *wanikani.Provider, log *slog.Logger) *SourceHandler {
	return &SourceHandler{db: db, provider: provider, log: log}
}

// SourceRequest is the body of POST /sources and PUT /sources/{id}.
type SourceRequest struct {
	Type   flashcards.SourceType  `json:"type"`
	Name   *string                `json:"name"`
	Groups []flashcards.CardGroup `json:"groups"`  // custom only
	APIKey *string                `json:"api_key"` // wanikani only
}

// ReviewRequest is the body of POST /sources/{id}/{iid}.
type ReviewRequest struct {
	TimesIncorrect []int `json:"times_incorrect"`
}

// List handles GET /sources
func (h *SourceHandler) List(w http.ResponseWriter, r *http.Request) {
	sources, err := h.db.Sources(r.Context(), AccountFrom(r.Context()))
	if err != nil {
		Fail(w, h.log, err)
		return
	}
	if sources == nil {
		sources = []deck.CardSource{}
	}
	Success(w, sources)
}

// Create handles POST /sources
func (h *SourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequest(w, err)
		return
	}
	if req.Name == nil {
		BadRequest(w, errors.New("missing required field: name"))
		return
	}
	in := store.NewSource{Name: *req.Name, Type: req.Type, Groups: req.Groups}
	if req.APIKey != nil {
		in.APIKey = *req.APIKey
	}
	id, err := h.db.CreateSource(r.Context(), AccountFrom(r.Context()), in)
	if err != nil {
		Fail(w, h.log, err)
		return
	}
	Created(w, IDResponse{ID: id.String()})
}

// Reorder handles PUT /sources with a JSON array of source ids.
func (h *SourceHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var order []uuid.UUID
	if err := decodeJSON(w, r, &order); err != nil {
		BadRequest(w, err)
		return
	}
	if err := h.db.ReorderSources(r.Context(), AccountFrom(r.Context()), order); err != nil {
		Fail(w, h.log, err)
		return
	}
	NoContent(w)
}

// Get handles GET /sources/{id}
func (h *SourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	src, err := h.db.Source(r.Context(), AccountFrom(r.Context()), id)
	if err != nil {
		Fail(w, h.log, err)
		return
	}
	Success(w, src)
}

// Update handles PUT /sources/{id}
func (h *SourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	var req SourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequest(w, err)
		return
	}
	update := store.SourceUpdate{Type: req.Type, Name: req.Name, Groups: req.Groups, APIKey: req.APIKey}
	if err := h.db.UpdateSource(r.Context(), AccountFrom(r.Context()), id, update); err != nil {
		Fail(w, h.log, err)
		return
	}
	if req.APIKey != nil {
		h.invalidate(id)
	}
	NoContent(w)
}

// Delete handles DELETE /sources/{id}
func (h *SourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	if err := h.db.DeleteSource(r.Context(), AccountFrom(r.Context()), id); err != nil {
		Fail(w, h.log, err)
		return
	}
	h.invalidate(id)
	NoContent(w)
}

// ImportCache handles PUT /sources/{id}/cache. The body replaces the
// WaniKani account cache of the source.
func (h *SourceHandler) ImportCache(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		BadRequest(w, err)
		return
	}
	if !json.Valid(data) {
		BadRequest(w, errors.New("cache must be a JSON document"))
		return
	}
	if err := h.db.SaveWanikaniCache(r.Context(), AccountFrom(r.Context()), id, data); err != nil {
		Fail(w, h.log, err)
		return
	}
	h.invalidate(id)
	NoContent(w)
}

// SubmitReview handles POST /sources/{id}/{iid}
func (h *SourceHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	iid, err := pathInt(r, "iid")
	if err != nil {
		BadRequest(w, err)
		return
	}
	var req ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequest(w, err)
		return
	}
	group, err := h.db.SubmitReview(r.Context(), AccountFrom(r.Context()), id, iid, req.TimesIncorrect, time.Now())
	if err != nil {
		Fail(w, h.log, err)
		return
	}
	Success(w, group)
}

func (h *SourceHandler) invalidate(id uuid.UUID) {
	if h.provider != nil {
		h.provider.Invalidate(id)
	}
}
