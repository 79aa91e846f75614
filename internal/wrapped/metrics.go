package wrapped

import (
	"sort"
	"strings"
	"time"

	"gptwrapped/internal/export"
	"gptwrapped/internal/stats"
)

// Metrics is the derived battery shared across card payloads. Everything in
// it is a deterministic function of the raw records, so regenerating cards
// from the same data yields the same payloads.
type Metrics struct {
	UserMessages      int
	AssistantMessages int
	TotalWords        int

	HourCounts [24]int
	PeakHour   int
	Chronotype string

	MonthlyConversations [12]int
	MonthlyMessages      [12]int
	DaysActive           int
	PeakDailyMessages    int

	LongestConversation  int
	ShortestConversation int
	UniqueTopics         int

	TopWords           []WordCount
	MostUsedWord       string
	UniqueWords        int
	VocabularyRichness int

	TotalQuestions  int
	QuestionTypes   map[string]int
	TopQuestionWord string
	CuriosityScore  int

	RelationshipStage string
	TrustLevel        int

	ProductivityType string
	FocusScore       int
	WorkflowStyle    string

	CreativeConversations int
	BrainstormingSessions int
	CreativityScore       int
	InnovationLevel       string
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

const topWordLimit = 20

var interrogatives = map[string]struct{}{
	"what": {}, "how": {}, "why": {}, "when": {}, "where": {}, "who": {},
	"which": {}, "can": {}, "could": {}, "would": {}, "should": {},
	"is": {}, "are": {}, "do": {}, "does": {},
}

var creativeTopics = map[string]struct{}{
	"writing": {}, "art": {}, "music": {}, "design": {}, "creative": {},
	"poetry": {}, "story": {}, "storytelling": {}, "brainstorming": {}, "ideas": {},
}

// ComputeMetrics runs the full battery over one (user, year) data set.
func ComputeMetrics(convs []export.Conversation, msgs []export.Message) Metrics {
	m := Metrics{
		QuestionTypes:     map[string]int{},
		RelationshipStage: relationshipStage(len(convs)),
	}

	wordCounts := map[string]int{}
	var wordOrder []string
	dayCounts := map[string]int{}

	for _, msg := range msgs {
		t := time.UnixMilli(msg.CreateTime)
		m.HourCounts[t.Hour()]++
		if t.Month() >= 1 && t.Month() <= 12 {
			m.MonthlyMessages[int(t.Month())-1]++
		}
		dayCounts[t.Format("2006-01-02")]++

		switch msg.Role {
		case "user":
			m.UserMessages++
		case "assistant":
			m.AssistantMessages++
		}

		if msg.Role != "user" {
			continue
		}

		m.TotalWords += msg.WordCount
		for _, raw := range strings.Fields(strings.ToLower(msg.Content)) {
			w := strings.Trim(raw, ".,!?;:\"'()[]{}")
			if len(w) <= 3 {
				continue
			}
			if _, seen := wordCounts[w]; !seen {
				wordOrder = append(wordOrder, w)
			}
			wordCounts[w]++
		}

		if qw, ok := questionWord(msg.Content); ok {
			m.TotalQuestions++
			m.QuestionTypes[qw]++
		}
	}

	m.DaysActive = len(dayCounts)
	for _, c := range dayCounts {
		if c > m.PeakDailyMessages {
			m.PeakDailyMessages = c
		}
	}

	peak, peakCount := 0, 0
	for h, c := range m.HourCounts {
		if c > peakCount {
			peak, peakCount = h, c
		}
	}
	m.PeakHour = peak
	m.Chronotype = chronotype(peak)
	m.ProductivityType = productivityType(peak)

	// focus: share of messages falling within two hours of the peak
	if len(msgs) > 0 {
		window := 0
		for d := -2; d <= 2; d++ {
			window += m.HourCounts[((peak+d)%24+24)%24]
		}
		m.FocusScore = window * 100 / len(msgs)
	}

	topicSet := map[string]struct{}{}
	for _, conv := range convs {
		if conv.Month >= 1 && conv.Month <= 12 {
			m.MonthlyConversations[conv.Month-1]++
		}
		if m.LongestConversation == 0 || conv.MessageCount > m.LongestConversation {
			m.LongestConversation = conv.MessageCount
		}
		if m.ShortestConversation == 0 || conv.MessageCount < m.ShortestConversation {
			m.ShortestConversation = conv.MessageCount
		}

		creative := false
		brainstorm := false
		for _, topic := range conv.Topics {
			lt := strings.ToLower(topic)
			topicSet[lt] = struct{}{}
			if _, ok := creativeTopics[lt]; ok {
				creative = true
			}
			if strings.Contains(lt, "brainstorm") || strings.Contains(lt, "idea") {
				brainstorm = true
			}
		}
		if creative {
			m.CreativeConversations++
		}
		if brainstorm {
			m.BrainstormingSessions++
		}
	}
	m.UniqueTopics = len(topicSet)

	sort.SliceStable(wordOrder, func(i, j int) bool {
		return wordCounts[wordOrder[i]] > wordCounts[wordOrder[j]]
	})
	m.UniqueWords = len(wordOrder)
	top := wordOrder
	if len(top) > topWordLimit {
		top = top[:topWordLimit]
	}
	m.TopWords = make([]WordCount, 0, len(top))
	for _, w := range top {
		m.TopWords = append(m.TopWords, WordCount{Word: w, Count: wordCounts[w]})
	}
	if len(m.TopWords) > 0 {
		m.MostUsedWord = m.TopWords[0].Word
	}
	if m.TotalWords > 0 {
		m.VocabularyRichness = clampScore(m.UniqueWords * 100 / m.TotalWords)
	}

	m.TopQuestionWord = topKey(m.QuestionTypes)
	if m.UserMessages > 0 {
		m.CuriosityScore = clampScore(m.TotalQuestions * 100 / m.UserMessages)
	}

	m.TrustLevel = clampScore(20 + len(convs)/5)
	m.WorkflowStyle = workflowStyle(len(convs), len(msgs))

	if len(convs) > 0 {
		m.CreativityScore = clampScore(m.CreativeConversations*100/len(convs) + m.BrainstormingSessions)
	}
	m.InnovationLevel = innovationLevel(m.CreativityScore)

	return m
}

// questionWord reports whether content is a question and, when it is, which
// interrogative word led it ("other" when only the trailing "?" matched).
func questionWord(content string) (string, bool) {
	fields := strings.Fields(strings.ToLower(content))
	if len(fields) > 0 {
		first := strings.Trim(fields[0], ".,!?;:\"'")
		if _, ok := interrogatives[first]; ok {
			return first, true
		}
	}
	if strings.Contains(content, "?") {
		return "other", true
	}
	return "", false
}

func chronotype(peakHour int) string {
	switch {
	case peakHour >= 5 && peakHour < 9:
		return "Early Bird"
	case peakHour >= 9 && peakHour < 21:
		return "Daytime Thinker"
	default:
		return "Night Owl"
	}
}

func productivityType(peakHour int) string {
	switch stats.TimeOfDay(peakHour) {
	case "morning":
		return "Morning Architect"
	case "afternoon":
		return "Afternoon Strategist"
	case "evening":
		return "Evening Explorer"
	default:
		return "Midnight Hacker"
	}
}

func relationshipStage(conversations int) string {
	switch {
	case conversations < 20:
		return "New Friend"
	case conversations < 100:
		return "Regular Companion"
	default:
		return "Inseparable Companion"
	}
}

func workflowStyle(conversations, messages int) string {
	if conversations == 0 {
		return "Just Getting Started"
	}
	avg := messages / conversations
	switch {
	case avg < 5:
		return "Quick Question Sprints"
	case avg < 15:
		return "Deep Dive Sessions"
	default:
		return "Marathon Explorer"
	}
}

func innovationLevel(score int) string {
	switch {
	case score >= 75:
		return "Visionary"
	case score >= 50:
		return "Innovator"
	case score >= 25:
		return "Explorer"
	default:
		return "Apprentice"
	}
}

// topKey returns the highest-count key; ties resolve alphabetically so the
// result never depends on map iteration order.
func topKey(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
