package export

import "github.com/lib/pq"

// Conversation is one export-derived conversation, created once at import
// and read-only afterwards. ConversationID is the export's own id and is
// unique across the store.
type Conversation struct {
	ID             uint64 `gorm:"primaryKey"`
	UserID         uint64 `gorm:"index:idx_conversations_user_year;not null"`
	ConversationID string `gorm:"uniqueIndex;not null"`
	Title          string `gorm:"type:text;not null"`

	// Unix milliseconds, as carried by the export.
	CreateTime int64 `gorm:"not null"`
	UpdateTime int64 `gorm:"not null"`

	MessageCount int            `gorm:"not null"`
	TotalTokens  int            `gorm:"not null"`
	Topics       pq.StringArray `gorm:"type:text[];not null"`
	Sentiment    string         `gorm:"not null"`

	Year  int `gorm:"index:idx_conversations_user_year;not null"`
	Month int `gorm:"not null"`
}

// Message is one turn within a conversation. ConversationID refers to the
// export's conversation id, not the local row id. Year is denormalized from
// CreateTime so the pipeline can page by (user_id, year, id).
type Message struct {
	ID             uint64 `gorm:"primaryKey"`
	ConversationID string `gorm:"index;not null"`
	UserID         uint64 `gorm:"index:idx_messages_user_year;not null"`
	MessageID      string `gorm:"uniqueIndex;not null"`
	Role           string `gorm:"not null"`
	Content        string `gorm:"type:text;not null"`

	CreateTime int64 `gorm:"not null"`

	TokenCount int `gorm:"not null"`
	WordCount  int `gorm:"not null"`

	Year int `gorm:"index:idx_messages_user_year;not null"`
}
