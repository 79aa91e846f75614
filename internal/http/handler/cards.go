package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gptwrapped/internal/auth"
	"gptwrapped/internal/wrapped"

	"github.com/go-chi/chi/v5"
)

type CardsHandler struct {
	Gen *wrapped.Generator
}

type cardDTO struct {
	ID        uint64          `json:"id"`
	Year      int             `json:"year"`
	CardType  string          `json:"card_type"`
	CardData  json.RawMessage `json:"card_data"`
	ImageURL  *string         `json:"image_url"`
	CreatedAt int64           `json:"created_at"`
	IsShared  bool            `json:"is_shared"`
}

// Generate rebuilds the card set for the year. Requires finalized stats;
// before that the only possible answer is "stats not ready".
func (h *CardsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	ids, err := h.Gen.Generate(r.Context(), uid, year)
	if err != nil {
		if errors.Is(err, wrapped.ErrStatsNotReady) {
			http.Error(w, "stats not ready", http.StatusConflict)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"card_ids": ids})
}

func (h *CardsHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	cards, err := h.Gen.Cards(r.Context(), uid, year)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]cardDTO, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardDTO{
			ID:        c.ID,
			Year:      c.Year,
			CardType:  c.CardType,
			CardData:  c.CardData,
			ImageURL:  c.ImageURL,
			CreatedAt: c.CreatedAt,
			IsShared:  c.IsShared,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *CardsHandler) Share(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	token, err := h.Gen.Share(r.Context(), uid, cardID)
	if err != nil {
		if errors.Is(err, wrapped.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"share_token": token})
}

type setImageReq struct {
	ImageURL string `json:"image_url"`
}

func (h *CardsHandler) SetImage(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	var req setImageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if req.ImageURL == "" {
		http.Error(w, "image_url required", http.StatusBadRequest)
		return
	}

	if err := h.Gen.SetImageURL(r.Context(), uid, cardID, req.ImageURL); err != nil {
		if errors.Is(err, wrapped.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Shared serves a publicly shared card by token; no auth.
func (h *CardsHandler) Shared(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		http.Error(w, "invalid token", http.StatusBadRequest)
		return
	}

	card, err := h.Gen.SharedByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, wrapped.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cardDTO{
		ID:        card.ID,
		Year:      card.Year,
		CardType:  card.CardType,
		CardData:  card.CardData,
		ImageURL:  card.ImageURL,
		CreatedAt: card.CreatedAt,
		IsShared:  card.IsShared,
	})
}

func cardIDParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
