package store

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"sync"

	"bhashagen/pkg/domain"
)

// MemoryStore is an in-memory Store and SessionStore used in tests and
// local development without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	content  map[string]domain.ContentItem
	usage    map[string]domain.UsageRecord
	sessions map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    map[string]domain.User{},
		content:  map[string]domain.ContentItem{},
		usage:    map[string]domain.UsageRecord{},
		sessions: map[string]string{},
	}
}

func (s *MemoryStore) SaveUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) HasUserEmail(email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) UserCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *MemoryStore) SaveContent(item domain.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		return errors.New("content id is required")
	}
	s.content[item.ID] = item
	return nil
}

func (s *MemoryStore) GetContent(id string) (domain.ContentItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.content[id]
	return item, ok, nil
}

func (s *MemoryStore) ListContentByOwner(ownerID string, filter ContentFilter) ([]domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.ContentItem, 0)
	for _, item := range s.content {
		if item.UserID != ownerID {
			continue
		}
		if !matchesFilter(item, filter) {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func matchesFilter(item domain.ContentItem, filter ContentFilter) bool {
	if filter.Language != "" && item.Language != filter.Language {
		return false
	}
	if filter.ContentType != "" && item.ContentType != filter.ContentType {
		return false
	}
	if filter.FavoritesOnly && !item.IsFavorite {
		return false
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		needle := strings.ToLower(q)
		if !strings.Contains(strings.ToLower(item.ProductService), needle) &&
			!strings.Contains(strings.ToLower(item.GeneratedText), needle) &&
			!strings.Contains(strings.ToLower(item.KeyMessage), needle) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) SetFavorite(id string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.content[id]
	if !ok {
		return errors.New("content not found")
	}
	item.IsFavorite = favorite
	s.content[id] = item
	return nil
}

func (s *MemoryStore) DeleteContent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.content, id)
	return nil
}

func (s *MemoryStore) IncrementUsage(userID, monthYear string, delta int, tier domain.SubscriptionTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userID + "|" + monthYear
	rec, ok := s.usage[key]
	if !ok {
		rec = domain.UsageRecord{UserID: userID, MonthYear: monthYear}
	}
	rec.GenerationCount += delta
	rec.SubscriptionTier = tier
	s.usage[key] = rec
	return nil
}

func (s *MemoryStore) GetUsage(userID, monthYear string) (domain.UsageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.usage[userID+"|"+monthYear]
	return rec, ok, nil
}

func (s *MemoryStore) NewSession(userID string) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userID
	return token, nil
}

func (s *MemoryStore) GetUserIDByToken(token string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sessions[token]
	return userID, ok, nil
}

func (s *MemoryStore) DeleteSession(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
