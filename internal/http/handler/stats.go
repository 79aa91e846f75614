package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gptwrapped/internal/auth"
	"gptwrapped/internal/stats"

	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	Svc *stats.Service
}

// Generate kicks off the aggregation pipeline. The call returns immediately;
// clients poll Status until it reads complete.
func (h *StatsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	if err := h.Svc.Start(r.Context(), uid, year); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *StatsHandler) Status(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	status, err := h.Svc.Status(r.Context(), uid, year)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

type userStatsDTO struct {
	Year                      int       `json:"year"`
	TotalConversations        int       `json:"total_conversations"`
	TotalMessages             int       `json:"total_messages"`
	TotalTokens               int       `json:"total_tokens"`
	TopTopics                 []string  `json:"top_topics"`
	MostActiveMonth           int       `json:"most_active_month"`
	AverageConversationLength float64   `json:"average_conversation_length"`
	LongestConversation       string    `json:"longest_conversation"`
	FavoriteTimeOfDay         string    `json:"favorite_time_of_day"`
	SentimentPositive         int       `json:"sentiment_positive"`
	SentimentNegative         int       `json:"sentiment_negative"`
	SentimentNeutral          int       `json:"sentiment_neutral"`
	GeneratedAt               time.Time `json:"generated_at"`
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	row, err := h.Svc.Stats(r.Context(), uid, year)
	if err != nil {
		if errors.Is(err, stats.ErrNoStats) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(userStatsDTO{
		Year:                      row.Year,
		TotalConversations:        row.TotalConversations,
		TotalMessages:             row.TotalMessages,
		TotalTokens:               row.TotalTokens,
		TopTopics:                 []string(row.TopTopics),
		MostActiveMonth:           row.MostActiveMonth,
		AverageConversationLength: row.AverageConversationLength,
		LongestConversation:       row.LongestConversation,
		FavoriteTimeOfDay:         row.FavoriteTimeOfDay,
		SentimentPositive:         row.SentimentPositive,
		SentimentNegative:         row.SentimentNegative,
		SentimentNeutral:          row.SentimentNeutral,
		GeneratedAt:               row.GeneratedAt,
	})
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2100 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return 0, false
	}
	return year, true
}
