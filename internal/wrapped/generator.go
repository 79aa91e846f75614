package wrapped

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gptwrapped/internal/export"
	"gptwrapped/internal/stats"
)

var (
	// ErrStatsNotReady means cards were requested before the aggregation
	// pipeline finished for that (user, year).
	ErrStatsNotReady = errors.New("stats not ready")

	ErrNotFound = errors.New("not found")
)

// Generator turns a finalized UserStats plus the raw records into the fixed
// ordered card set. Runs once per completed pipeline run, so the full scans
// here are fine.
type Generator struct {
	DB  *gorm.DB
	Log *zap.SugaredLogger
}

// Generate replaces the whole card set for (user, year) and returns the new
// card ids in display order. Running it twice in a row produces an
// equivalent set; there is no random component in any payload.
func (g *Generator) Generate(ctx context.Context, userID uint64, year int) ([]uint64, error) {
	var st stats.UserStats
	err := g.DB.WithContext(ctx).Where("user_id = ? AND year = ?", userID, year).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStatsNotReady
	}
	if err != nil {
		return nil, err
	}

	var convs []export.Conversation
	if err := g.DB.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		Order("create_time asc, id asc").
		Find(&convs).Error; err != nil {
		return nil, err
	}
	var msgs []export.Message
	if err := g.DB.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		Order("id asc").
		Find(&msgs).Error; err != nil {
		return nil, err
	}

	m := ComputeMetrics(convs, msgs)
	payloads := buildPayloads(&st, m, year)

	base := time.Now().UnixMilli()
	ids := make([]uint64, 0, len(CardOrder))

	err = g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND year = ?", userID, year).
			Delete(&Card{}).Error; err != nil {
			return err
		}

		for i, cardType := range CardOrder {
			data, err := json.Marshal(payloads[cardType])
			if err != nil {
				return err
			}
			card := Card{
				UserID:    userID,
				Year:      year,
				CardType:  cardType,
				CardData:  data,
				CreatedAt: base + int64(i),
				IsShared:  false,
			}
			if err := tx.Create(&card).Error; err != nil {
				return err
			}
			ids = append(ids, card.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.Log.Infow("wrapped cards generated", "user_id", userID, "year", year, "cards", len(ids))
	return ids, nil
}

func buildPayloads(st *stats.UserStats, m Metrics, year int) map[string]any {
	totalMessages := st.TotalMessages
	avgWords := 0
	if m.UserMessages > 0 {
		avgWords = m.TotalWords / m.UserMessages
	}
	avgDaily := 0.0
	if m.DaysActive > 0 {
		avgDaily = math.Round(float64(st.TotalConversations)/float64(m.DaysActive)*10) / 10
	}

	return map[string]any{
		CardWelcome: welcomePayload{
			Year:               year,
			TotalConversations: st.TotalConversations,
			TotalMessages:      totalMessages,
		},
		CardNumbers: numbersPayload{
			TotalConversations:        st.TotalConversations,
			TotalMessages:             totalMessages,
			TotalWords:                m.TotalWords,
			TotalTokens:               st.TotalTokens,
			DaysActive:                m.DaysActive,
			AverageLength:             int(math.Round(st.AverageConversationLength)),
			AvgWordsPerMessage:        avgWords,
			UniqueTopics:              m.UniqueTopics,
			PeakDailyMessages:         m.PeakDailyMessages,
			AverageDailyConversations: avgDaily,
		},
		CardTimeExplorer: timeExplorerPayload{
			Year:               year,
			MostActiveMonth:    st.MostActiveMonth,
			FavoriteTimeOfDay:  st.FavoriteTimeOfDay,
			PeakHour:           m.PeakHour,
			Chronotype:         m.Chronotype,
			TotalConversations: st.TotalConversations,
		},
		CardQuestions: questionMasterPayload{
			TotalQuestions:  m.TotalQuestions,
			CuriosityScore:  m.CuriosityScore,
			TopQuestionWord: m.TopQuestionWord,
			QuestionTypes:   m.QuestionTypes,
		},
		CardWordCloud: wordCloudPayload{
			TopWords:           m.TopWords,
			MostUsedWord:       m.MostUsedWord,
			TotalUniqueWords:   m.UniqueWords,
			VocabularyRichness: m.VocabularyRichness,
		},
		CardDeepTopics: deepTopicsPayload{
			TopTopics:  st.TopTopics,
			TopicCount: len(st.TopTopics),
		},
		CardRelationship: relationshipPayload{
			RelationshipStage: m.RelationshipStage,
			TrustLevel:        m.TrustLevel,
			EvolutionStory: fmt.Sprintf(
				"You went from first hellos to %d conversations, averaging %d messages each.",
				st.TotalConversations, int(math.Round(st.AverageConversationLength))),
			PersonalityMatch: personalityMatch(st.FavoriteTimeOfDay),
		},
		CardProductivity: productivityPayload{
			PeakProductivityHour: m.PeakHour,
			ProductivityType:     m.ProductivityType,
			FocusScore:           m.FocusScore,
			WorkflowStyle:        m.WorkflowStyle,
		},
		CardCreative: creativePayload{
			CreativeConversations: m.CreativeConversations,
			BrainstormingSessions: m.BrainstormingSessions,
			CreativityScore:       m.CreativityScore,
			InnovationLevel:       m.InnovationLevel,
		},
		CardSentiment: sentimentPayload{
			SentimentBreakdown: sentimentBreakdown{
				Positive: st.SentimentPositive,
				Negative: st.SentimentNegative,
				Neutral:  st.SentimentNeutral,
			},
			DominantSentiment: dominantSentiment(st.SentimentPositive, st.SentimentNegative, st.SentimentNeutral),
		},
	}
}

func personalityMatch(timeOfDay string) string {
	switch timeOfDay {
	case "morning":
		return "The Sunrise Strategist"
	case "afternoon":
		return "The Steady Collaborator"
	case "evening":
		return "The Twilight Tinkerer"
	default:
		return "The Night Philosopher"
	}
}

// dominantSentiment picks the largest tally; ties resolve in the order
// positive, negative, neutral, and an all-zero breakdown reads as neutral.
func dominantSentiment(positive, negative, neutral int) string {
	if positive == 0 && negative == 0 && neutral == 0 {
		return "neutral"
	}
	best, bestCount := "positive", positive
	if negative > bestCount {
		best, bestCount = "negative", negative
	}
	if neutral > bestCount {
		best = "neutral"
	}
	return best
}

// Cards lists the set for (user, year) in display order.
func (g *Generator) Cards(ctx context.Context, userID uint64, year int) ([]Card, error) {
	var out []Card
	err := g.DB.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// Share marks a card shared and mints its share token. Sharing an already
// shared card keeps the existing token.
func (g *Generator) Share(ctx context.Context, userID, cardID uint64) (string, error) {
	var token string
	err := g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card Card
		if err := tx.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if card.IsShared && card.ShareToken != nil {
			token = *card.ShareToken
			return nil
		}
		token = uuid.NewString()
		return tx.Model(&card).Updates(map[string]any{
			"is_shared":   true,
			"share_token": token,
		}).Error
	})
	return token, err
}

// SharedByToken returns a shared card for a public share link.
func (g *Generator) SharedByToken(ctx context.Context, token string) (*Card, error) {
	var card Card
	err := g.DB.WithContext(ctx).
		Where("share_token = ? AND is_shared = ?", token, true).
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// SetImageURL patches the rendered-image URL for a card the user owns.
func (g *Generator) SetImageURL(ctx context.Context, userID, cardID uint64, url string) error {
	res := g.DB.WithContext(ctx).Model(&Card{}).
		Where("id = ? AND user_id = ?", cardID, userID).
		Update("image_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCards removes the whole set for (user, year) and reports the ids.
func (g *Generator) DeleteCards(ctx context.Context, userID uint64, year int) ([]uint64, error) {
	var ids []uint64
	err := g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cards []Card
		if err := tx.Where("user_id = ? AND year = ?", userID, year).Find(&cards).Error; err != nil {
			return err
		}
		for _, c := range cards {
			ids = append(ids, c.ID)
		}
		return tx.Where("user_id = ? AND year = ?", userID, year).Delete(&Card{}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
