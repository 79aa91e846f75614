package db

import (
	"fmt"

	"gptwrapped/internal/auth"
	"gptwrapped/internal/export"
	"gptwrapped/internal/jobs"
	"gptwrapped/internal/stats"
	"gptwrapped/internal/wrapped"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&export.Conversation{},
		&export.Message{},
		&stats.Progress{},
		&stats.UserStats{},
		&wrapped.Card{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// Message paging: (user_id, year, id) covers the pipeline's cursor scan
	if err := gdb.Exec(`create index if not exists idx_messages_user_year_id on messages(user_id, year, id);`).Error; err != nil {
		return err
	}

	// Topic filter on conversations (GIN for text[])
	if err := gdb.Exec(`create index if not exists idx_conversations_topics on conversations using gin (topics);`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_messages_conversation_time on messages(conversation_id, create_time);`,
		`create index if not exists idx_wrapped_cards_order on wrapped_cards(user_id, year, created_at);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
