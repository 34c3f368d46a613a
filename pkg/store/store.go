package store

import (
	"bhashagen/pkg/domain"
)

// ContentFilter narrows ListContentByOwner results. Zero values mean "no
// filter". Query matches case-insensitively against the product/service
// name, the generated text and the key message.
type ContentFilter struct {
	Language      string
	ContentType   string
	FavoritesOnly bool
	Query         string
	Limit         int
}

// Store defines persistence operations for users, generated content, and
// monthly usage counters.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	UserCount() (int, error)

	// generated content
	SaveContent(domain.ContentItem) error
	GetContent(id string) (domain.ContentItem, bool, error)
	ListContentByOwner(ownerID string, filter ContentFilter) ([]domain.ContentItem, error)
	SetFavorite(id string, favorite bool) error
	DeleteContent(id string) error

	// usage counters
	IncrementUsage(userID, monthYear string, delta int, tier domain.SubscriptionTier) error
	GetUsage(userID, monthYear string) (domain.UsageRecord, bool, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}

// JWK represents a JSON Web Key entry used by JWKS endpoints.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
}

// JWKSProvider is an optional capability exposed by session stores that can
// publish JSON Web Keys.
type JWKSProvider interface {
	JWKS() []JWK
}
