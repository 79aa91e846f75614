package wrapped

import "encoding/json"

// Card types in display order. Insertion assigns strictly increasing
// creation timestamps, so sorting by created_at reproduces this order.
const (
	CardWelcome      = "welcome"
	CardNumbers      = "numbers"
	CardTimeExplorer = "time_explorer"
	CardQuestions    = "question_master"
	CardWordCloud    = "word_cloud"
	CardDeepTopics   = "deep_topics"
	CardRelationship = "ai_relationship"
	CardProductivity = "productivity_patterns"
	CardCreative     = "creative_sparks"
	CardSentiment    = "sentiment"
)

// CardOrder is the fixed sequence every generation produces.
var CardOrder = []string{
	CardWelcome,
	CardNumbers,
	CardTimeExplorer,
	CardQuestions,
	CardWordCloud,
	CardDeepTopics,
	CardRelationship,
	CardProductivity,
	CardCreative,
	CardSentiment,
}

// Card is one shareable wrapped card for (user, year, type). The whole set
// for a pair is deleted and regenerated each time the generator runs.
type Card struct {
	ID       uint64          `gorm:"primaryKey"`
	UserID   uint64          `gorm:"index:idx_wrapped_cards_user_year;not null"`
	Year     int             `gorm:"index:idx_wrapped_cards_user_year;not null"`
	CardType string          `gorm:"not null"`
	CardData json.RawMessage `gorm:"type:jsonb;not null"`

	ImageURL *string `gorm:"type:text"`

	// Unix milliseconds; strictly increasing within one generation.
	CreatedAt int64 `gorm:"index;not null;autoCreateTime:false"`

	IsShared   bool    `gorm:"not null"`
	ShareToken *string `gorm:"uniqueIndex"`
}

func (Card) TableName() string { return "wrapped_cards" }

type welcomePayload struct {
	Year               int `json:"year"`
	TotalConversations int `json:"totalConversations"`
	TotalMessages      int `json:"totalMessages"`
}

type numbersPayload struct {
	TotalConversations        int     `json:"totalConversations"`
	TotalMessages             int     `json:"totalMessages"`
	TotalWords                int     `json:"totalWords"`
	TotalTokens               int     `json:"totalTokens"`
	DaysActive                int     `json:"daysActive"`
	AverageLength             int     `json:"averageLength"`
	AvgWordsPerMessage        int     `json:"avgWordsPerMessage"`
	UniqueTopics              int     `json:"uniqueTopics"`
	PeakDailyMessages         int     `json:"peakDailyMessages"`
	AverageDailyConversations float64 `json:"averageDailyConversations"`
}

type timeExplorerPayload struct {
	Year               int    `json:"year"`
	MostActiveMonth    int    `json:"mostActiveMonth"`
	FavoriteTimeOfDay  string `json:"favoriteTimeOfDay"`
	PeakHour           int    `json:"peakHour"`
	Chronotype         string `json:"chronotype"`
	TotalConversations int    `json:"totalConversations"`
}

type questionMasterPayload struct {
	TotalQuestions  int            `json:"totalQuestions"`
	CuriosityScore  int            `json:"curiosityScore"`
	TopQuestionWord string         `json:"topQuestionWord"`
	QuestionTypes   map[string]int `json:"questionTypes"`
}

type wordCloudPayload struct {
	TopWords           []WordCount `json:"topWords"`
	MostUsedWord       string      `json:"mostUsedWord"`
	TotalUniqueWords   int         `json:"totalUniqueWords"`
	VocabularyRichness int         `json:"vocabularyRichness"`
}

type deepTopicsPayload struct {
	TopTopics  []string `json:"topTopics"`
	TopicCount int      `json:"topicCount"`
}

type relationshipPayload struct {
	RelationshipStage string `json:"relationshipStage"`
	TrustLevel        int    `json:"trustLevel"`
	EvolutionStory    string `json:"evolutionStory"`
	PersonalityMatch  string `json:"personalityMatch"`
}

type productivityPayload struct {
	PeakProductivityHour int    `json:"peakProductivityHour"`
	ProductivityType     string `json:"productivityType"`
	FocusScore           int    `json:"focusScore"`
	WorkflowStyle        string `json:"workflowStyle"`
}

type creativePayload struct {
	CreativeConversations int    `json:"creativeConversations"`
	BrainstormingSessions int    `json:"brainstormingSessions"`
	CreativityScore       int    `json:"creativityScore"`
	InnovationLevel       string `json:"innovationLevel"`
}

type sentimentPayload struct {
	SentimentBreakdown sentimentBreakdown `json:"sentimentBreakdown"`
	DominantSentiment  string             `json:"dominantSentiment"`
}

type sentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}
