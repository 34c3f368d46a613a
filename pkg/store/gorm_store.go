package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"bhashagen/pkg/domain"
)

const migrateLockID int64 = 84128412

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &ContentModel{}, &UsageModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash", "role", "status", "tier", "updated_at"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// UserCount returns number of users.
func (s *GormStore) UserCount() (int, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// SaveContent stores a generated content record.
func (s *GormStore) SaveContent(item domain.ContentItem) error {
	model := contentToModel(item)
	return s.db.Create(&model).Error
}

// GetContent retrieves one content record.
func (s *GormStore) GetContent(id string) (domain.ContentItem, bool, error) {
	var model ContentModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ContentItem{}, false, nil
		}
		return domain.ContentItem{}, false, err
	}
	return contentFromModel(model), true, nil
}

// ListContentByOwner returns a user's content, newest first, with optional
// filters applied in the query.
func (s *GormStore) ListContentByOwner(ownerID string, filter ContentFilter) ([]domain.ContentItem, error) {
	tx := s.db.Where("user_id = ?", ownerID).Order("created_at DESC")
	if filter.Language != "" {
		tx = tx.Where("language = ?", filter.Language)
	}
	if filter.ContentType != "" {
		tx = tx.Where("content_type = ?", filter.ContentType)
	}
	if filter.FavoritesOnly {
		tx = tx.Where("is_favorite = ?", true)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			"LOWER(product_service) LIKE ? OR LOWER(generated_text) LIKE ? OR LOWER(key_message) LIKE ?",
			like, like, like,
		)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	var models []ContentModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.ContentItem, 0, len(models))
	for _, model := range models {
		items = append(items, contentFromModel(model))
	}
	return items, nil
}

// SetFavorite updates the favorite flag on a content record.
func (s *GormStore) SetFavorite(id string, favorite bool) error {
	return s.db.Model(&ContentModel{}).
		Where("id = ?", id).
		Update("is_favorite", favorite).Error
}

// DeleteContent removes a content record permanently.
func (s *GormStore) DeleteContent(id string) error {
	return s.db.Delete(&ContentModel{}, "id = ?", id).Error
}

// IncrementUsage adds delta to the user's counter for the month, creating
// the row at delta on first use.
func (s *GormStore) IncrementUsage(userID, monthYear string, delta int, tier domain.SubscriptionTier) error {
	now := time.Now().UTC()
	model := UsageModel{
		UserID:           userID,
		MonthYear:        monthYear,
		GenerationCount:  delta,
		SubscriptionTier: string(tier),
		UpdatedAt:        now,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month_year"}},
		DoUpdates: clause.Assignments(map[string]any{
			"generation_count":  gorm.Expr("usage_models.generation_count + ?", delta),
			"subscription_tier": string(tier),
			"updated_at":        now,
		}),
	}).Create(&model).Error
}

// GetUsage returns the usage counter for a user and month.
func (s *GormStore) GetUsage(userID, monthYear string) (domain.UsageRecord, bool, error) {
	var model UsageModel
	if err := s.db.First(&model, "user_id = ? AND month_year = ?", userID, monthYear).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.UsageRecord{}, false, nil
		}
		return domain.UsageRecord{}, false, err
	}
	return usageFromModel(model), true, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Status:       string(u.Status),
		Tier:         string(u.Tier),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	status := domain.UserStatus(m.Status)
	if status == "" {
		status = domain.StatusActive
	}
	tier := domain.SubscriptionTier(m.Tier)
	if tier == "" {
		tier = domain.TierFree
	}
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.UserRole(m.Role),
		Status:       status,
		Tier:         tier,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func contentToModel(item domain.ContentItem) ContentModel {
	return ContentModel{
		ID:              item.ID,
		UserID:          item.UserID,
		ContentType:     item.ContentType,
		ProductService:  item.ProductService,
		KeyMessage:      item.KeyMessage,
		TargetAudience:  item.TargetAudience,
		Tone:            item.Tone,
		Language:        item.Language,
		GeneratedText:   item.GeneratedText,
		FestivalContext: item.FestivalContext,
		IsFavorite:      item.IsFavorite,
		CreatedAt:       item.CreatedAt,
	}
}

func contentFromModel(m ContentModel) domain.ContentItem {
	return domain.ContentItem{
		ID:              m.ID,
		UserID:          m.UserID,
		ContentType:     m.ContentType,
		ProductService:  m.ProductService,
		KeyMessage:      m.KeyMessage,
		TargetAudience:  m.TargetAudience,
		Tone:            m.Tone,
		Language:        m.Language,
		GeneratedText:   m.GeneratedText,
		FestivalContext: m.FestivalContext,
		IsFavorite:      m.IsFavorite,
		CreatedAt:       m.CreatedAt,
	}
}

func usageFromModel(m UsageModel) domain.UsageRecord {
	return domain.UsageRecord{
		UserID:           m.UserID,
		MonthYear:        m.MonthYear,
		GenerationCount:  m.GenerationCount,
		SubscriptionTier: domain.SubscriptionTier(m.SubscriptionTier),
	}
}
