package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"gptwrapped/internal/auth"
	"gptwrapped/internal/export"
)

type ImportHandler struct {
	Svc *export.Service
}

type importMessageReq struct {
	MessageID  string `json:"message_id"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	CreateTime int64  `json:"create_time"`
	TokenCount int    `json:"token_count"`
	WordCount  int    `json:"word_count"`
}

type importConversationReq struct {
	ConversationID string             `json:"conversation_id"`
	Title          string             `json:"title"`
	CreateTime     int64              `json:"create_time"`
	UpdateTime     int64              `json:"update_time"`
	MessageCount   int                `json:"message_count"`
	TotalTokens    int                `json:"total_tokens"`
	Topics         []string           `json:"topics"`
	Sentiment      string             `json:"sentiment"`
	Year           int                `json:"year"`
	Month          int                `json:"month"`
	Messages       []importMessageReq `json:"messages"`
}

type importReq struct {
	Conversations []importConversationReq `json:"conversations"`
}

// Import accepts a batch of normalized conversations plus their messages,
// as produced by the client-side export parser.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req importReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if len(req.Conversations) == 0 {
		http.Error(w, "conversations required", http.StatusBadRequest)
		return
	}

	batch := make([]export.ImportConversation, 0, len(req.Conversations))
	for _, c := range req.Conversations {
		c.ConversationID = strings.TrimSpace(c.ConversationID)
		if c.ConversationID == "" || c.Year == 0 {
			http.Error(w, "conversation_id and year required", http.StatusBadRequest)
			return
		}
		msgs := make([]export.ImportMessage, 0, len(c.Messages))
		for _, m := range c.Messages {
			m.MessageID = strings.TrimSpace(m.MessageID)
			if m.MessageID == "" {
				http.Error(w, "message_id required", http.StatusBadRequest)
				return
			}
			msgs = append(msgs, export.ImportMessage{
				MessageID:  m.MessageID,
				Role:       m.Role,
				Content:    m.Content,
				CreateTime: m.CreateTime,
				TokenCount: m.TokenCount,
				WordCount:  m.WordCount,
			})
		}
		batch = append(batch, export.ImportConversation{
			ConversationID: c.ConversationID,
			Title:          c.Title,
			CreateTime:     c.CreateTime,
			UpdateTime:     c.UpdateTime,
			MessageCount:   c.MessageCount,
			TotalTokens:    c.TotalTokens,
			Topics:         c.Topics,
			Sentiment:      c.Sentiment,
			Year:           c.Year,
			Month:          c.Month,
			Messages:       msgs,
		})
	}

	res, err := h.Svc.ImportConversations(r.Context(), uid, batch)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"conversations_inserted": res.ConversationsInserted,
		"messages_inserted":      res.MessagesInserted,
	})
}

type conversationDTO struct {
	ConversationID string   `json:"conversation_id"`
	Title          string   `json:"title"`
	CreateTime     int64    `json:"create_time"`
	UpdateTime     int64    `json:"update_time"`
	MessageCount   int      `json:"message_count"`
	TotalTokens    int      `json:"total_tokens"`
	Topics         []string `json:"topics"`
	Sentiment      string   `json:"sentiment"`
	Year           int      `json:"year"`
	Month          int      `json:"month"`
}

func (h *ImportHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	year, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("year")))
	if err != nil {
		http.Error(w, "year required", http.StatusBadRequest)
		return
	}

	rows, err := h.Svc.ConversationsByUserYear(r.Context(), uid, year)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]conversationDTO, 0, len(rows))
	for _, c := range rows {
		out = append(out, conversationDTO{
			ConversationID: c.ConversationID,
			Title:          c.Title,
			CreateTime:     c.CreateTime,
			UpdateTime:     c.UpdateTime,
			MessageCount:   c.MessageCount,
			TotalTokens:    c.TotalTokens,
			Topics:         []string(c.Topics),
			Sentiment:      c.Sentiment,
			Year:           c.Year,
			Month:          c.Month,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
