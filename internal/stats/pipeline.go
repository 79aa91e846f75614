package stats

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"

	"gptwrapped/internal/export"
	"gptwrapped/internal/jobs"

	"go.uber.org/zap"
)

// Status values reported to polling clients.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

const defaultPageSize = 500

// Service runs the chunked stats pipeline. Each step commits its state and
// the next step's job in one transaction, then returns; the worker picks the
// chain back up. No step blocks waiting for another.
type Service struct {
	DB       *gorm.DB
	PageSize int
	Log      *zap.SugaredLogger
}

func (s *Service) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return defaultPageSize
}

// Start begins aggregation for (user, year). A run already in flight makes
// this a no-op; a completed run's terminal record is cleared so a fresh run
// can begin. Exactly one progress row and one page job come out of a
// successful start.
func (s *Service) Start(ctx context.Context, userID uint64, year int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Progress
		err := tx.Where("user_id = ? AND year = ?", userID, year).First(&existing).Error
		switch {
		case err == nil && !existing.Done:
			s.Log.Infow("stats run already in progress", "user_id", userID, "year", year)
			return nil
		case err == nil && existing.Done:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		p := Progress{
			UserID:     userID,
			Year:       year,
			Cursor:     nil,
			Aggregates: NewAggregates(),
			Done:       false,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}

		s.Log.Infow("starting stats run", "user_id", userID, "year", year)
		return jobs.Enqueue(tx, jobs.TypeStatsPage, userID, year, time.Now())
	})
}

// ProcessPage consumes one bounded page of messages and folds it into the
// aggregate bundle. Cursor and aggregates are committed together, so a
// failed invocation can only redo its own page.
func (s *Service) ProcessPage(ctx context.Context, userID uint64, year int) error {
	var p Progress
	err := s.DB.WithContext(ctx).Where("user_id = ? AND year = ?", userID, year).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.Log.Debugw("no stats run, stopping page processing", "user_id", userID, "year", year)
		return nil
	}
	if err != nil {
		return err
	}
	if p.Done {
		return nil
	}
	return s.processPage(ctx, &p)
}

// processPage does the page work against one loaded snapshot of the run.
func (s *Service) processPage(ctx context.Context, p *Progress) error {
	var after uint64
	var err error
	if p.Cursor != nil {
		after, err = strconv.ParseUint(*p.Cursor, 10, 64)
		if err != nil {
			return err
		}
	}

	limit := s.pageSize()
	var page []export.Message
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND year = ? AND id > ?", p.UserID, p.Year, after).
		Order("id asc").
		Limit(limit).
		Find(&page).Error; err != nil {
		return err
	}

	agg := p.Aggregates
	cursor := p.Cursor
	for _, msg := range page {
		agg.TotalMessages++
		agg.TotalTokens += msg.TokenCount
		agg.HourCounts[time.UnixMilli(msg.CreateTime).Hour()]++
	}
	if len(page) > 0 {
		c := strconv.FormatUint(page[len(page)-1].ID, 10)
		cursor = &c
	}
	lastPage := len(page) < limit

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// compare-and-swap on the cursor read at step entry: a duplicate
		// invocation holding a stale snapshot (the queue requeues steps stuck
		// past the lease window, so a slow-but-alive one can be doubled) must
		// neither regress the cursor nor resurrect a finished run
		q := tx.Model(&Progress{}).Where("id = ? AND done = false", p.ID)
		if p.Cursor == nil {
			q = q.Where("cursor IS NULL")
		} else {
			q = q.Where("cursor = ?", *p.Cursor)
		}
		res := q.Updates(map[string]any{"cursor": cursor, "aggregates": agg})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			s.Log.Debugw("page write lost the cursor race, dropping step",
				"user_id", p.UserID, "year", p.Year)
			return nil
		}

		next := jobs.TypeStatsPage
		if lastPage {
			next = jobs.TypeStatsFinalize
			s.Log.Infow("all message pages consumed", "user_id", p.UserID, "year", p.Year,
				"messages", agg.TotalMessages)
		}
		return jobs.Enqueue(tx, next, p.UserID, p.Year, time.Now())
	})
}

// Finalize turns the accumulated bundle plus a full conversation scan into
// one UserStats row, flips the run's done flag, and schedules card
// generation. The done transition is the commit point guarding re-entry.
func (s *Service) Finalize(ctx context.Context, userID uint64, year int) error {
	var p Progress
	err := s.DB.WithContext(ctx).Where("user_id = ? AND year = ?", userID, year).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.Done {
		return nil
	}

	var convs []export.Conversation
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		Order("create_time asc, id asc").
		Find(&convs).Error; err != nil {
		return err
	}

	derived := Derive(p.Aggregates, convs)

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Progress{}).
			Where("id = ? AND done = false", p.ID).
			Update("done", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race to another finalize
			return nil
		}

		if err := tx.Where("user_id = ? AND year = ?", userID, year).
			Delete(&UserStats{}).Error; err != nil {
			return err
		}

		row := UserStats{
			UserID:                    userID,
			Year:                      year,
			TotalConversations:        derived.TotalConversations,
			TotalMessages:             derived.TotalMessages,
			TotalTokens:               derived.TotalTokens,
			TopTopics:                 derived.TopTopics,
			MostActiveMonth:           derived.MostActiveMonth,
			AverageConversationLength: derived.AverageConversationLength,
			LongestConversation:       derived.LongestConversation,
			FavoriteTimeOfDay:         derived.FavoriteTimeOfDay,
			SentimentPositive:         derived.Sentiment.Positive,
			SentimentNegative:         derived.Sentiment.Negative,
			SentimentNeutral:          derived.Sentiment.Neutral,
			GeneratedAt:               time.Now(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		s.Log.Infow("stats run complete", "user_id", userID, "year", year,
			"conversations", derived.TotalConversations, "messages", derived.TotalMessages)
		return jobs.Enqueue(tx, jobs.TypeCardsGenerate, userID, year, time.Now())
	})
}

// Status reports the pipeline phase for (user, year). Pure read.
func (s *Service) Status(ctx context.Context, userID uint64, year int) (string, error) {
	var p Progress
	err := s.DB.WithContext(ctx).Where("user_id = ? AND year = ?", userID, year).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return StatusNotStarted, nil
	}
	if err != nil {
		return "", err
	}
	if p.Done {
		return StatusComplete, nil
	}
	return StatusInProgress, nil
}

// Stats returns the finalized summary for (user, year), or ErrNoStats.
func (s *Service) Stats(ctx context.Context, userID uint64, year int) (*UserStats, error) {
	var row UserStats
	err := s.DB.WithContext(ctx).Where("user_id = ? AND year = ?", userID, year).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoStats
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

var ErrNoStats = errors.New("no stats for user and year")

// Derived holds everything Finalize writes into UserStats.
type Derived struct {
	TotalConversations        int
	TotalMessages             int
	TotalTokens               int
	TopTopics                 []string
	MostActiveMonth           int
	AverageConversationLength float64
	LongestConversation       string
	FavoriteTimeOfDay         string
	Sentiment                 SentimentTally
}

// Derive computes the finalized summary from the accumulated bundle and the
// full conversation scan. Tie-breaks are explicit: equal topic or month
// frequencies resolve to whichever was encountered first in conversation
// order, and the first conversation wins equal message counts.
func Derive(agg Aggregates, convs []export.Conversation) Derived {
	d := Derived{
		TotalConversations: len(convs),
		TotalMessages:      agg.TotalMessages,
		TotalTokens:        agg.TotalTokens,
		TopTopics:          []string{},
		MostActiveMonth:    1,
		FavoriteTimeOfDay:  "morning",
	}

	// the conversation-level tallies live in the bundle; the page loop left
	// them untouched, so this scan is the only writer
	if agg.TopicCounts == nil {
		agg.TopicCounts = map[string]int{}
	}
	if agg.MonthCounts == nil {
		agg.MonthCounts = map[int]int{}
	}

	var topicOrder []string
	var monthOrder []int
	longest := export.Conversation{}

	for _, conv := range convs {
		agg.TotalConversations++
		for _, topic := range conv.Topics {
			if _, seen := agg.TopicCounts[topic]; !seen {
				topicOrder = append(topicOrder, topic)
			}
			agg.TopicCounts[topic]++
		}
		if _, seen := agg.MonthCounts[conv.Month]; !seen {
			monthOrder = append(monthOrder, conv.Month)
		}
		agg.MonthCounts[conv.Month]++

		switch conv.Sentiment {
		case "positive":
			agg.Sentiment.Positive++
		case "negative":
			agg.Sentiment.Negative++
		case "neutral":
			agg.Sentiment.Neutral++
		}

		if conv.MessageCount > longest.MessageCount {
			longest = conv
		}
	}
	d.Sentiment = agg.Sentiment

	// stable sort on the encounter-ordered slice keeps first-seen on ties
	sort.SliceStable(topicOrder, func(i, j int) bool {
		return agg.TopicCounts[topicOrder[i]] > agg.TopicCounts[topicOrder[j]]
	})
	if len(topicOrder) > 10 {
		topicOrder = topicOrder[:10]
	}
	d.TopTopics = append(d.TopTopics, topicOrder...)

	sort.SliceStable(monthOrder, func(i, j int) bool {
		return agg.MonthCounts[monthOrder[i]] > agg.MonthCounts[monthOrder[j]]
	})
	if len(monthOrder) > 0 {
		d.MostActiveMonth = monthOrder[0]
	}

	d.LongestConversation = longest.ConversationID

	maxHour, maxCount := 0, 0
	for h, c := range agg.HourCounts {
		if c > maxCount {
			maxHour, maxCount = h, c
		}
	}
	if maxCount > 0 {
		d.FavoriteTimeOfDay = TimeOfDay(maxHour)
	}

	if len(convs) > 0 {
		d.AverageConversationLength = float64(agg.TotalMessages) / float64(len(convs))
	}

	return d
}

// TimeOfDay buckets an hour: morning [6,12), afternoon [12,18),
// evening [18,22), night otherwise.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 18:
		return "afternoon"
	case hour >= 18 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}
