package export

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type Service struct {
	DB *gorm.DB
}

type ImportMessage struct {
	MessageID  string
	Role       string
	Content    string
	CreateTime int64
	TokenCount int
	WordCount  int
}

type ImportConversation struct {
	ConversationID string
	Title          string
	CreateTime     int64
	UpdateTime     int64
	MessageCount   int
	TotalTokens    int
	Topics         []string
	Sentiment      string
	Year           int
	Month          int
	Messages       []ImportMessage
}

type ImportResult struct {
	ConversationsInserted int
	MessagesInserted      int
}

// ImportConversations inserts a batch of normalized conversations and their
// messages. Records whose external id already exists are skipped, so
// re-uploading the same export is harmless.
func (s *Service) ImportConversations(ctx context.Context, userID uint64, batch []ImportConversation) (ImportResult, error) {
	var res ImportResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range batch {
			var count int64
			if err := tx.Model(&Conversation{}).
				Where("conversation_id = ?", in.ConversationID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				topics := in.Topics
				if topics == nil {
					topics = []string{}
				}
				c := Conversation{
					UserID:         userID,
					ConversationID: in.ConversationID,
					Title:          in.Title,
					CreateTime:     in.CreateTime,
					UpdateTime:     in.UpdateTime,
					MessageCount:   in.MessageCount,
					TotalTokens:    in.TotalTokens,
					Topics:         topics,
					Sentiment:      in.Sentiment,
					Year:           in.Year,
					Month:          in.Month,
				}
				if err := tx.Create(&c).Error; err != nil {
					return err
				}
				res.ConversationsInserted++
			}

			for _, im := range in.Messages {
				var mcount int64
				if err := tx.Model(&Message{}).
					Where("message_id = ?", im.MessageID).
					Count(&mcount).Error; err != nil {
					return err
				}
				if mcount > 0 {
					continue
				}
				m := Message{
					ConversationID: in.ConversationID,
					UserID:         userID,
					MessageID:      im.MessageID,
					Role:           im.Role,
					Content:        im.Content,
					CreateTime:     im.CreateTime,
					TokenCount:     im.TokenCount,
					WordCount:      im.WordCount,
					Year:           time.UnixMilli(im.CreateTime).Year(),
				}
				if err := tx.Create(&m).Error; err != nil {
					return err
				}
				res.MessagesInserted++
			}
		}
		return nil
	})

	return res, err
}

func (s *Service) ConversationsByUserYear(ctx context.Context, userID uint64, year int) ([]Conversation, error) {
	var out []Conversation
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND year = ?", userID, year).
		Order("create_time asc").
		Find(&out).Error
	return out, err
}

func (s *Service) ConversationByExternalID(ctx context.Context, conversationID string) (*Conversation, error) {
	var c Conversation
	err := s.DB.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) MessagesByConversation(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	q := s.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("create_time asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []Message
	err := q.Find(&out).Error
	return out, err
}

// DeleteConversation removes a conversation and its messages. Ownership is
// checked so a user cannot delete another user's records.
func (s *Service) DeleteConversation(ctx context.Context, userID uint64, conversationID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Conversation
		if err := tx.Where("conversation_id = ? AND user_id = ?", conversationID, userID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("conversation_id = ? AND user_id = ?", conversationID, userID).
			Delete(&Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
}
