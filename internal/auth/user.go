package auth

import "time"

// User is an account that owns imported conversations and wrapped output.
// Email is the login key; LastLoginAt is stamped on each successful login.
type User struct {
	ID           uint64     `gorm:"primaryKey"`
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	LastLoginAt  *time.Time `gorm:"index"`
	CreatedAt    time.Time  `gorm:"not null"`
}
