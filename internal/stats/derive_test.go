package stats

import (
	"reflect"
	"testing"

	"gptwrapped/internal/export"
)

func TestTimeOfDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hour int
		want string
	}{
		{0, "night"},
		{5, "night"},
		{6, "morning"},
		{11, "morning"},
		{12, "afternoon"},
		{17, "afternoon"},
		{18, "evening"},
		{21, "evening"},
		{22, "night"},
		{23, "night"},
	}
	for _, tt := range tests {
		if got := TimeOfDay(tt.hour); got != tt.want {
			t.Errorf("TimeOfDay(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestDeriveEmpty(t *testing.T) {
	t.Parallel()

	d := Derive(NewAggregates(), nil)

	if d.TotalConversations != 0 || d.TotalMessages != 0 {
		t.Errorf("totals = %d/%d, want 0/0", d.TotalConversations, d.TotalMessages)
	}
	if len(d.TopTopics) != 0 {
		t.Errorf("top topics = %v, want empty", d.TopTopics)
	}
	if d.TopTopics == nil {
		t.Error("top topics must be an empty slice, not nil")
	}
	if d.MostActiveMonth != 1 {
		t.Errorf("most active month = %d, want 1 default", d.MostActiveMonth)
	}
	if d.FavoriteTimeOfDay != "morning" {
		t.Errorf("favorite time of day = %q, want morning default", d.FavoriteTimeOfDay)
	}
	if d.AverageConversationLength != 0 {
		t.Errorf("average length = %v, want 0", d.AverageConversationLength)
	}
	if d.LongestConversation != "" {
		t.Errorf("longest = %q, want empty", d.LongestConversation)
	}
}

func TestDeriveTopicTieBreak(t *testing.T) {
	t.Parallel()

	convs := []export.Conversation{
		{ConversationID: "a", Month: 2, MessageCount: 3, Topics: []string{"rust", "go"}},
		{ConversationID: "b", Month: 2, MessageCount: 3, Topics: []string{"go", "python"}},
		{ConversationID: "c", Month: 5, MessageCount: 8, Topics: []string{"rust"}},
	}

	d := Derive(NewAggregates(), convs)

	// go and rust both count 2; rust was encountered first
	want := []string{"rust", "go", "python"}
	if !reflect.DeepEqual(d.TopTopics, want) {
		t.Errorf("top topics = %v, want %v", d.TopTopics, want)
	}
	if d.MostActiveMonth != 2 {
		t.Errorf("most active month = %d, want 2", d.MostActiveMonth)
	}
	if d.LongestConversation != "c" {
		t.Errorf("longest = %q, want c", d.LongestConversation)
	}
}

func TestDeriveLongestFirstWinsTie(t *testing.T) {
	t.Parallel()

	convs := []export.Conversation{
		{ConversationID: "first", MessageCount: 9, Month: 1},
		{ConversationID: "second", MessageCount: 9, Month: 1},
	}

	d := Derive(NewAggregates(), convs)
	if d.LongestConversation != "first" {
		t.Errorf("longest = %q, want first (strict comparison keeps the earlier one)", d.LongestConversation)
	}
}

func TestDeriveTopTopicsCapped(t *testing.T) {
	t.Parallel()

	var convs []export.Conversation
	topics := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for i, topic := range topics {
		// descending counts keep the expected order unambiguous
		for n := 0; n < len(topics)-i; n++ {
			convs = append(convs, export.Conversation{
				ConversationID: topic,
				Month:          1,
				MessageCount:   1,
				Topics:         []string{topic},
			})
		}
	}

	d := Derive(NewAggregates(), convs)
	if len(d.TopTopics) != 10 {
		t.Fatalf("top topics len = %d, want 10", len(d.TopTopics))
	}
	if !reflect.DeepEqual(d.TopTopics, topics[:10]) {
		t.Errorf("top topics = %v, want %v", d.TopTopics, topics[:10])
	}
}

func TestDeriveSentimentAndAverages(t *testing.T) {
	t.Parallel()

	agg := NewAggregates()
	agg.TotalMessages = 30
	agg.TotalTokens = 450
	agg.HourCounts[19] = 12
	agg.HourCounts[9] = 5

	convs := []export.Conversation{
		{ConversationID: "a", Month: 1, MessageCount: 10, Sentiment: "positive"},
		{ConversationID: "b", Month: 1, MessageCount: 10, Sentiment: "positive"},
		{ConversationID: "c", Month: 2, MessageCount: 10, Sentiment: "mixed"},
	}

	d := Derive(agg, convs)

	if d.Sentiment.Positive != 2 || d.Sentiment.Negative != 0 || d.Sentiment.Neutral != 0 {
		t.Errorf("sentiment = %+v, want 2/0/0 (unknown labels ignored)", d.Sentiment)
	}
	if d.AverageConversationLength != 10 {
		t.Errorf("average length = %v, want 10", d.AverageConversationLength)
	}
	if d.FavoriteTimeOfDay != "evening" {
		t.Errorf("favorite time of day = %q, want evening", d.FavoriteTimeOfDay)
	}
	if d.TotalTokens != 450 {
		t.Errorf("total tokens = %d, want 450", d.TotalTokens)
	}
}
