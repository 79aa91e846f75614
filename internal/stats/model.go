package stats

import (
	"time"

	"github.com/lib/pq"
)

// Progress is the resumable cursor plus partial aggregate state for one
// (user, year) run. At most one row exists per pair; the not-done row is the
// only mutable shared state of a run.
type Progress struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"uniqueIndex:uq_stats_progress_user_year;not null"`
	Year   int    `gorm:"uniqueIndex:uq_stats_progress_user_year;not null"`

	// Cursor is the row id of the last consumed message, as a decimal
	// string. Nil means the page sequence has not started.
	Cursor *string `gorm:"type:text"`

	Aggregates Aggregates `gorm:"type:jsonb;not null"`
	Done       bool       `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Progress) TableName() string { return "stats_progress" }

// UserStats is the finalized per-(user, year) summary. Finalize replaces any
// previous row wholesale, so re-running it never double-counts.
type UserStats struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index:idx_user_stats_user_year;not null"`
	Year   int    `gorm:"index:idx_user_stats_user_year;not null"`

	TotalConversations int `gorm:"not null"`
	TotalMessages      int `gorm:"not null"`
	TotalTokens        int `gorm:"not null"`

	// Frequency-descending; ties keep first-encountered order.
	TopTopics pq.StringArray `gorm:"type:text[];not null"`

	MostActiveMonth           int     `gorm:"not null"`
	AverageConversationLength float64 `gorm:"not null"`

	// External id of the conversation with the most messages.
	LongestConversation string `gorm:"not null"`

	FavoriteTimeOfDay string `gorm:"not null"`

	SentimentPositive int `gorm:"not null"`
	SentimentNegative int `gorm:"not null"`
	SentimentNeutral  int `gorm:"not null"`

	GeneratedAt time.Time `gorm:"not null"`
}
