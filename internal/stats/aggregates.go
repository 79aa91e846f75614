package stats

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// SentimentTally counts conversations per known sentiment label.
type SentimentTally struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Aggregates is the bundle carried across page-processing steps. It is
// stored as jsonb on the progress row and patched once per page, so a step
// that dies mid-page leaves the previous page's bundle intact. The page loop
// fills only the message-level fields; the conversation-level tallies are
// folded in by Finalize's conversation scan.
type Aggregates struct {
	TotalConversations int            `json:"total_conversations"`
	TotalMessages      int            `json:"total_messages"`
	TotalTokens        int            `json:"total_tokens"`
	HourCounts         [24]int        `json:"hour_counts"`
	TopicCounts        map[string]int `json:"topic_counts"`
	MonthCounts        map[int]int    `json:"month_counts"`
	Sentiment          SentimentTally `json:"sentiment"`
}

// NewAggregates returns a zeroed bundle with allocated maps.
func NewAggregates() Aggregates {
	return Aggregates{
		TopicCounts: map[string]int{},
		MonthCounts: map[int]int{},
	}
}

func (a Aggregates) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Aggregates) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = NewAggregates()
		return nil
	default:
		return errors.New("stats: unsupported aggregates column type")
	}
}
