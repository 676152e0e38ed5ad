package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/deck"
	"github.com/sky-flux/flashcards/review"
	"github.com/sky-flux/flashcards/store"
)

// DeckHandler serves /decks.
type DeckHandler struct {
	db  *store.DB
	svc *deck.Service
	log *slog.Logger
}

func NewDeckHandler(db *store.DB, svc *deck.Service, log *slog.Logger) *DeckHandler {
	return &DeckHandler{db: db, svc: svc, log: log}
}

// DeckRequest is the body of POST /decks and PUT /decks/{id}.
type DeckRequest struct {
	Name    *string     `json:"name"`
	Sources []uuid.UUID `json:"source_ids"` // absent → unchanged on update
}

// SubmitRequest is the body of POST /decks/{id}/submit.
type SubmitRequest struct {
	Mode           string               `json:"mode"`   // "review" or "lesson"; empty → review
	Source         flashcards.SourceRef `json:"source"` // only the id is read
	IID            int64                `json:"iid"`
	TimesIncorrect []int                `json:"times_incorrect"`
}

// List handles GET /decks
func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	decks, err := h.db.Decks(r.Context(), AccountFrom(r.Context()))
	if err != nil {
		Fail(w, h.log, err)
		return
	}
	if decks == nil {
		decks = []deck.Deck{}
	}
	Success(w, decks)
}

// Create handles POST /decks
func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req DeckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequest(w, err)
		return
	}
	if req.Name == nil {
		BadRequest(w, errors.New("missing required field: name"))
		return
	}
	id, err := h.db.CreateDeck(r.Context(), AccountFrom(r.Context()), *req.Name, req.Sources)
	if err != nil {
		Fail(w, h.log, err)
		return
	}
	Created(w, IDResponse{ID: id.String()})
}

// Reorder handles PUT /decks with a JSON array of deck ids.
func (h *DeckHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var order []uuid.UUID
	if err := decodeJSON(w, r, &order); err != nil {
		BadRequest(w, err)
		return
	}
	if err := h.db.ReorderDecks(r.Context(), AccountFrom(r.Context()), order); err != nil {
		Fail(w, h.log, err)
		return
	}
	NoContent(w)
}

// Get handles GET /decks/{id}
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	d, err := h.db.Deck(r.Context(), AccountFrom(r.Context()), id)
	if err != nil {
		Fail(w, h.log, err)
		return
	}
	Success(w, d)
}

// Update handles PUT /decks/{id}
func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	var req DeckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequest(w, err)
		return
	}
	if err := h.db.UpdateDeck(r.Context(), AccountFrom(r.Context()), id, req.Name, req.Sources); err != nil {
		Fail(w, h.log, err)
		return
	}
	NoContent(w)
}

// Delete handles DELETE /decks/{id}
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	if err := h.db.DeleteDeck(r.Context(), AccountFrom(r.Context()), id); err != nil {
		Fail(w, h.log, err)
		return
	}
	NoContent(w)
}

// Reviews handles GET /decks/{id}/reviews
func (h *DeckHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	items, err := h.svc.ReviewItems(r.Context(), AccountFrom(r.Context()), id)
	if err != nil {
		Fail(w, h.log, err)
		return
	}
	if items == nil {
		items = []flashcards.ReviewItem{}
	}
	Success(w, items)
}

// Lessons handles GET /decks/{id}/lessons
func (h *DeckHandler) Lessons(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	lessons, err := h.svc.LessonItems(r.Context(), AccountFrom(r.Context()), id)
	if err != nil {
		Fail(w, h.log, err)
		return
	}
	if lessons.Items == nil {
		lessons.Items = []flashcards.ReviewItem{}
	}
	Success(w, lessons)
}

// Overview handles GET /decks/{id}/overview
func (h *DeckHandler) Overview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	ov, err := h.svc.Overview(r.Context(), AccountFrom(r.Context()), id)
	if err != nil {
		Fail(w, h.log, err)
		return
	}
	Success(w, ov)
}

// Submit handles POST /decks/{id}/submit. The group is routed to its source,
// so WaniKani reviews reach the provider.
func (h *DeckHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequest(w, err)
		return
	}
	var req SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequest(w, err)
		return
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		BadRequest(w, err)
		return
	}
	account := AccountFrom(r.Context())
	d, err := h.db.Deck(r.Context(), account, id)
	if err != nil {
		Fail(w, h.log, err)
		return
	}
	if !slices.Contains(d.Sources, req.Source.ID) {
		BadRequest(w, fmt.Errorf("%w: %s is not in deck %s", store.ErrUnknownSource, req.Source.ID, id))
		return
	}

	// Route by the stored source type; the client's type may be absent or stale.
	src, err := h.db.Source(r.Context(), account, req.Source.ID)
	if err != nil {
		Fail(w, h.log, err)
		return
	}

	sub := review.Submission{Source: src.Ref(), IID: req.IID, TimesIncorrect: req.TimesIncorrect, Mode: mode}
	if err := h.svc.Submitter(account, mode)(r.Context(), sub); err != nil {
		h.log.Error("submit review", "source", req.Source.ID, "iid", req.IID, "error", err)
		Fail(w, h.log, err)
		return
	}
	NoContent(w)
}

func parseMode(s string) (review.Mode, error) {
	switch s {
	case "", review.ModeReview.String():
		return review.ModeReview, nil
	case review.ModeLesson.String():
		return review.ModeLesson, nil
	}
	return 0, fmt.Errorf("invalid mode %q", s)
}
