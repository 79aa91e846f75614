package jobs

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Pipeline task types. Steps chain by enqueueing the next type in the same
// transaction that commits their own state change.
const (
	TypeStatsPage     = "STATS_PAGE"
	TypeStatsFinalize = "STATS_FINALIZE"
	TypeCardsGenerate = "CARDS_GENERATE"
)

const (
	StatusPending = "PENDING"
	StatusRunning = "RUNNING"
	StatusDone    = "DONE"
	StatusFailed  = "FAILED"
)

type Job struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	Type    string          `gorm:"type:text;not null"`
	Payload json.RawMessage `gorm:"type:jsonb;not null"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"index;not null"`

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"index"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Payload carried by every pipeline job.
type PipelineArgs struct {
	UserID uint64 `json:"user_id"`
	Year   int    `json:"year"`
}

// NewPipelineJob builds a pending job for one (user, year) pipeline step.
func NewPipelineJob(typ string, userID uint64, year int, runAt time.Time) Job {
	payload, _ := json.Marshal(PipelineArgs{UserID: userID, Year: year})
	return Job{
		UserID:      userID,
		Type:        typ,
		Payload:     payload,
		RunAt:       runAt,
		Status:      StatusPending,
		MaxAttempts: 8,
	}
}

// Enqueue inserts a pending pipeline job on the given handle. Pipeline steps
// pass their own transaction so the job commits with the state change it
// belongs to.
func Enqueue(tx *gorm.DB, typ string, userID uint64, year int, runAt time.Time) error {
	job := NewPipelineJob(typ, userID, year, runAt)
	return tx.Create(&job).Error
}
