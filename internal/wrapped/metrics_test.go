package wrapped

import (
	"testing"
	"time"

	"gptwrapped/internal/export"
)

func TestQuestionWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		wantWord string
		wantOK   bool
	}{
		{name: "leading what", content: "What is a goroutine?", wantWord: "what", wantOK: true},
		{name: "leading how no mark", content: "how do channels work", wantWord: "how", wantOK: true},
		{name: "mark only", content: "goroutines, right?", wantWord: "other", wantOK: true},
		{name: "leading can", content: "Can you explain this", wantWord: "can", wantOK: true},
		{name: "statement", content: "channels are typed conduits", wantWord: "", wantOK: false},
		{name: "empty", content: "", wantWord: "", wantOK: false},
		{name: "punctuated interrogative", content: "why? because it blocks", wantWord: "why", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := questionWord(tt.content)
			if got != tt.wantWord || ok != tt.wantOK {
				t.Errorf("questionWord(%q) = %q, %v; want %q, %v",
					tt.content, got, ok, tt.wantWord, tt.wantOK)
			}
		})
	}
}

func TestChronotype(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hour int
		want string
	}{
		{5, "Early Bird"},
		{8, "Early Bird"},
		{9, "Daytime Thinker"},
		{20, "Daytime Thinker"},
		{21, "Night Owl"},
		{3, "Night Owl"},
		{0, "Night Owl"},
	}
	for _, tt := range tests {
		if got := chronotype(tt.hour); got != tt.want {
			t.Errorf("chronotype(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestClassifiers(t *testing.T) {
	t.Parallel()

	t.Run("relationship stage", func(t *testing.T) {
		t.Parallel()
		for _, tt := range []struct {
			convs int
			want  string
		}{
			{0, "New Friend"}, {19, "New Friend"},
			{20, "Regular Companion"}, {99, "Regular Companion"},
			{100, "Inseparable Companion"},
		} {
			if got := relationshipStage(tt.convs); got != tt.want {
				t.Errorf("relationshipStage(%d) = %q, want %q", tt.convs, got, tt.want)
			}
		}
	})

	t.Run("workflow style", func(t *testing.T) {
		t.Parallel()
		for _, tt := range []struct {
			convs, msgs int
			want        string
		}{
			{0, 0, "Just Getting Started"},
			{10, 40, "Quick Question Sprints"},
			{10, 50, "Deep Dive Sessions"},
			{10, 149, "Deep Dive Sessions"},
			{10, 150, "Marathon Explorer"},
		} {
			if got := workflowStyle(tt.convs, tt.msgs); got != tt.want {
				t.Errorf("workflowStyle(%d, %d) = %q, want %q", tt.convs, tt.msgs, got, tt.want)
			}
		}
	})

	t.Run("innovation level", func(t *testing.T) {
		t.Parallel()
		for _, tt := range []struct {
			score int
			want  string
		}{
			{0, "Apprentice"}, {24, "Apprentice"},
			{25, "Explorer"}, {49, "Explorer"},
			{50, "Innovator"}, {74, "Innovator"},
			{75, "Visionary"}, {100, "Visionary"},
		} {
			if got := innovationLevel(tt.score); got != tt.want {
				t.Errorf("innovationLevel(%d) = %q, want %q", tt.score, got, tt.want)
			}
		}
	})
}

func TestTopKeyTieBreaksAlphabetically(t *testing.T) {
	t.Parallel()

	got := topKey(map[string]int{"why": 3, "how": 3, "what": 2})
	if got != "how" {
		t.Errorf("topKey = %q, want how (alphabetical on tie)", got)
	}
	if got := topKey(map[string]int{}); got != "" {
		t.Errorf("topKey(empty) = %q, want empty", got)
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()
	for _, tt := range []struct{ in, want int }{
		{-5, 0}, {0, 0}, {55, 55}, {100, 100}, {140, 100},
	} {
		if got := clampScore(tt.in); got != tt.want {
			t.Errorf("clampScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func msgAt(role, content string, at time.Time, words int) export.Message {
	return export.Message{
		Role:       role,
		Content:    content,
		CreateTime: at.UnixMilli(),
		WordCount:  words,
		Year:       at.Year(),
	}
}

func TestComputeMetricsWordFrequency(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 1, 14, 0, 0, 0, time.Local)
	msgs := []export.Message{
		// short words and punctuation are stripped; counts fold case
		msgAt("user", "Goroutines and channels, channels everywhere!", at, 5),
		msgAt("user", "goroutines are neat.", at.Add(time.Minute), 3),
		// assistant text never enters the cloud
		msgAt("assistant", "goroutines goroutines goroutines", at.Add(2*time.Minute), 3),
	}

	m := ComputeMetrics(nil, msgs)

	if m.MostUsedWord != "goroutines" {
		t.Errorf("most used word = %q, want goroutines", m.MostUsedWord)
	}
	want := map[string]int{"goroutines": 2, "channels": 2, "everywhere": 1, "neat": 1}
	got := map[string]int{}
	for _, wc := range m.TopWords {
		got[wc.Word] = wc.Count
	}
	for w, c := range want {
		if got[w] != c {
			t.Errorf("count[%q] = %d, want %d", w, got[w], c)
		}
	}
	if m.UniqueWords != len(want) {
		t.Errorf("unique words = %d, want %d", m.UniqueWords, len(want))
	}
	// first-encountered wins the goroutines/channels tie
	if m.TopWords[0].Word != "goroutines" {
		t.Errorf("top word = %q, want goroutines (encounter order on tie)", m.TopWords[0].Word)
	}
	if m.UserMessages != 2 || m.AssistantMessages != 1 {
		t.Errorf("role split = %d/%d, want 2/1", m.UserMessages, m.AssistantMessages)
	}
	if m.TotalWords != 8 {
		t.Errorf("total words = %d, want 8 (user messages only)", m.TotalWords)
	}
}

func TestComputeMetricsQuestionsAndTime(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2024, 5, 10, 14, 0, 0, 0, time.Local)
	day2 := time.Date(2024, 5, 11, 14, 30, 0, 0, time.Local)
	msgs := []export.Message{
		msgAt("user", "What is wrong here?", day1, 4),
		msgAt("user", "what about now?", day1.Add(time.Minute), 3),
		msgAt("user", "How does this work?", day2, 4),
		msgAt("user", "it works now", day2.Add(time.Minute), 3),
		msgAt("assistant", "Why would it not?", day2.Add(2*time.Minute), 4),
	}

	m := ComputeMetrics(nil, msgs)

	if m.TotalQuestions != 3 {
		t.Errorf("total questions = %d, want 3 (assistant questions excluded)", m.TotalQuestions)
	}
	if m.TopQuestionWord != "what" {
		t.Errorf("top question word = %q, want what", m.TopQuestionWord)
	}
	if m.QuestionTypes["what"] != 2 || m.QuestionTypes["how"] != 1 {
		t.Errorf("question types = %v, want what:2 how:1", m.QuestionTypes)
	}
	if m.CuriosityScore != 75 {
		t.Errorf("curiosity = %d, want 75 (3 of 4 user messages)", m.CuriosityScore)
	}
	if m.DaysActive != 2 {
		t.Errorf("days active = %d, want 2", m.DaysActive)
	}
	if m.PeakDailyMessages != 3 {
		t.Errorf("peak daily = %d, want 3", m.PeakDailyMessages)
	}
	if m.PeakHour != 14 {
		t.Errorf("peak hour = %d, want 14", m.PeakHour)
	}
	if m.ProductivityType != "Afternoon Strategist" {
		t.Errorf("productivity type = %q, want Afternoon Strategist", m.ProductivityType)
	}
	if m.FocusScore != 100 {
		t.Errorf("focus = %d, want 100 (all messages inside the peak window)", m.FocusScore)
	}
}

func TestComputeMetricsConversations(t *testing.T) {
	t.Parallel()

	convs := []export.Conversation{
		{Month: 3, MessageCount: 10, Topics: []string{"Writing", "golang"}},
		{Month: 3, MessageCount: 2, Topics: []string{"brainstorming ideas"}},
		{Month: 7, MessageCount: 40, Topics: []string{"golang"}},
	}

	m := ComputeMetrics(convs, nil)

	if m.MonthlyConversations[2] != 2 || m.MonthlyConversations[6] != 1 {
		t.Errorf("monthly = %v, want 2 in March and 1 in July", m.MonthlyConversations)
	}
	if m.LongestConversation != 40 || m.ShortestConversation != 2 {
		t.Errorf("longest/shortest = %d/%d, want 40/2", m.LongestConversation, m.ShortestConversation)
	}
	if m.UniqueTopics != 3 {
		t.Errorf("unique topics = %d, want 3 (case folded)", m.UniqueTopics)
	}
	if m.CreativeConversations != 1 {
		t.Errorf("creative conversations = %d, want 1", m.CreativeConversations)
	}
	if m.BrainstormingSessions != 1 {
		t.Errorf("brainstorming sessions = %d, want 1", m.BrainstormingSessions)
	}
	if m.RelationshipStage != "New Friend" {
		t.Errorf("relationship stage = %q, want New Friend", m.RelationshipStage)
	}
}

func TestDominantSentiment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                        string
		positive, negative, neutral int
		want                        string
	}{
		{"all zero", 0, 0, 0, "neutral"},
		{"positive wins", 5, 2, 1, "positive"},
		{"negative wins", 1, 5, 2, "negative"},
		{"neutral wins", 1, 2, 5, "neutral"},
		{"tie favors positive", 3, 3, 3, "positive"},
		{"tie favors negative over neutral", 0, 2, 2, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := dominantSentiment(tt.positive, tt.negative, tt.neutral); got != tt.want {
				t.Errorf("dominantSentiment(%d, %d, %d) = %q, want %q",
					tt.positive, tt.negative, tt.neutral, got, tt.want)
			}
		})
	}
}
