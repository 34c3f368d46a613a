package app

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bhashagen/pkg/domain"
	"bhashagen/pkg/store"
)

const defaultFreeTierLimit = 10

// Config holds runtime configuration for the content service core.
type Config struct {
	DatabaseURL   string
	FreeTierLimit int
	Store         store.Store
}

// App owns the content library and usage accounting.
type App struct {
	store         store.Store
	freeTierLimit int
}

// New constructs the content core.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}
	limit := cfg.FreeTierLimit
	if limit <= 0 {
		limit = defaultFreeTierLimit
	}
	return &App{store: dataStore, freeTierLimit: limit}, nil
}

// FreeTierLimit returns the monthly save allowance shown to free users.
func (a *App) FreeTierLimit() int {
	return a.freeTierLimit
}

// SaveContent persists a generated record for the user and bumps the monthly
// usage counter. The counter update is best effort: a failure there is
// logged but does not undo the saved record.
func (a *App) SaveContent(user domain.User, req domain.ContentRequest, generatedText string) (domain.ContentItem, error) {
	if err := validateSave(req, generatedText); err != nil {
		return domain.ContentItem{}, err
	}
	item := domain.ContentItem{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		ContentType:     req.ContentType,
		ProductService:  req.ProductService,
		KeyMessage:      req.KeyMessage,
		TargetAudience:  req.TargetAudience,
		Tone:            req.Tone,
		Language:        req.Language,
		GeneratedText:   generatedText,
		FestivalContext: req.FestivalContext,
		IsFavorite:      false,
		CreatedAt:       time.Now().UTC(),
	}
	if err := a.store.SaveContent(item); err != nil {
		return domain.ContentItem{}, fmt.Errorf("save content: %w", err)
	}

	monthKey := domain.MonthKey(time.Now())
	if err := a.store.IncrementUsage(user.ID, monthKey, 1, user.Tier); err != nil {
		slog.Warn("usage counter update failed",
			"user_id", user.ID,
			"month_year", monthKey,
			"err", err,
		)
	}
	return item, nil
}

func validateSave(req domain.ContentRequest, generatedText string) error {
	if strings.TrimSpace(req.ProductService) == "" {
		return ErrProductServiceRequired
	}
	if strings.TrimSpace(req.ContentType) == "" {
		return ErrContentTypeRequired
	}
	if strings.TrimSpace(req.Language) == "" {
		return ErrLanguageRequired
	}
	if strings.TrimSpace(req.Tone) == "" {
		return ErrToneRequired
	}
	if strings.TrimSpace(generatedText) == "" {
		return ErrGeneratedTextRequired
	}
	return nil
}

// ListContent returns the user's saved records, newest first.
func (a *App) ListContent(user domain.User, filter store.ContentFilter) ([]domain.ContentItem, error) {
	items, err := a.store.ListContentByOwner(user.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

// SetFavorite updates the favorite flag on a record owned by the user and
// returns the updated record.
func (a *App) SetFavorite(user domain.User, id string, favorite bool) (domain.ContentItem, error) {
	item, err := a.ownedContent(user, id)
	if err != nil {
		return domain.ContentItem{}, err
	}
	if err := a.store.SetFavorite(id, favorite); err != nil {
		return domain.ContentItem{}, fmt.Errorf("set favorite: %w", err)
	}
	item.IsFavorite = favorite
	return item, nil
}

// DeleteContent permanently removes a record owned by the user.
func (a *App) DeleteContent(user domain.User, id string) error {
	if _, err := a.ownedContent(user, id); err != nil {
		return err
	}
	if err := a.store.DeleteContent(id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// CurrentUsage returns the user's counter for the current month. A missing
// row means no saves yet this month.
func (a *App) CurrentUsage(user domain.User) (domain.UsageRecord, error) {
	monthKey := domain.MonthKey(time.Now())
	rec, ok, err := a.store.GetUsage(user.ID, monthKey)
	if err != nil {
		return domain.UsageRecord{}, fmt.Errorf("get usage: %w", err)
	}
	if !ok {
		return domain.UsageRecord{
			UserID:           user.ID,
			MonthYear:        monthKey,
			GenerationCount:  0,
			SubscriptionTier: user.Tier,
		}, nil
	}
	return rec, nil
}

func (a *App) ownedContent(user domain.User, id string) (domain.ContentItem, error) {
	item, ok, err := a.store.GetContent(id)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("fetch content: %w", err)
	}
	if !ok {
		return domain.ContentItem{}, ErrContentNotFound
	}
	if item.UserID != user.ID && user.Role != domain.RoleAdmin {
		return domain.ContentItem{}, ErrForbidden
	}
	return item, nil
}
