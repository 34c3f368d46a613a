package store

import (
	"time"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null"`
	Status       string
	Tier         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type ContentModel struct {
	ID              string `gorm:"primaryKey"`
	UserID          string `gorm:"not null;index"`
	ContentType     string `gorm:"not null"`
	ProductService  string `gorm:"not null"`
	KeyMessage      string
	TargetAudience  string
	Tone            string `gorm:"not null"`
	Language        string `gorm:"not null"`
	GeneratedText   string `gorm:"type:text;not null"`
	FestivalContext string
	IsFavorite      bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"not null;index"`
}

// UsageModel keeps one row per user per month. The composite primary key is
// the conflict target for the increment upsert.
type UsageModel struct {
	UserID           string `gorm:"primaryKey"`
	MonthYear        string `gorm:"primaryKey"`
	GenerationCount  int    `gorm:"not null"`
	SubscriptionTier string `gorm:"not null"`
	UpdatedAt        time.Time
}
