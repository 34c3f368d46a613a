package app

import (
	"fmt"
	"strings"
	"time"

	"bhashagen/internal/util"
	"bhashagen/pkg/auth"
	"bhashagen/pkg/domain"
	"bhashagen/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL         string
	SessionTTL          time.Duration
	JWTPrivateKeyPath   string
	JWTPublicKeyPath    string
	JWTKeyID            string
	JWTVerifyPublicKeys map[string]string
	JWTIssuer           string
	JWTAudience         string
	JWTLeeway           time.Duration
	Store               store.Store
	Sessions            store.SessionStore
}

// App is the core application service wiring together storage and auth logic.
type App struct {
	store    store.Store
	sessions store.SessionStore
}

// New constructs the application with database storage and session management.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = time.Hour
	}

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

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		if strings.TrimSpace(cfg.JWTPrivateKeyPath) == "" {
			return nil, fmt.Errorf("jwtPrivateKeyPath is required")
		}
		jwtOpts := store.JWTOptions{
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Leeway:   cfg.JWTLeeway,
		}
		rsStore, err := store.NewJWTRS256SessionStoreFromPEMWithOptions(
			cfg.JWTPrivateKeyPath,
			cfg.JWTPublicKeyPath,
			cfg.JWTKeyID,
			cfg.JWTVerifyPublicKeys,
			cfg.SessionTTL,
			jwtOpts,
		)
		if err != nil {
			return nil, fmt.Errorf("init rs256 jwt session store: %w", err)
		}
		sessionStore = rsStore
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
	}, nil
}

// SignUp registers a new user with default role user on the free tier.
// The first registered account becomes admin.
func (a *App) SignUp(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.User{}, "", ErrEmailAndPasswordRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailAlreadyExists
	}
	role := domain.RoleUser
	count, err := a.store.UserCount()
	if err != nil {
		return domain.User{}, "", fmt.Errorf("count users: %w", err)
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	if count == 0 {
		role = domain.RoleAdmin
	}
	user, err := a.createUser(email, passwordHash, role)
	if err != nil {
		return domain.User{}, "", err
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue access token: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if user.Status == domain.StatusDisabled {
		return domain.User{}, "", ErrUserDisabled
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue access token: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	if user.Status == domain.StatusDisabled {
		return domain.User{}, false
	}
	return user, true
}

// Logout invalidates the session token.
func (a *App) Logout(accessToken string) error {
	return a.sessions.DeleteSession(accessToken)
}

// JWKS returns public signing keys when session store supports it.
func (a *App) JWKS() []store.JWK {
	provider, ok := a.sessions.(store.JWKSProvider)
	if !ok {
		return nil
	}
	return provider.JWKS()
}

func (a *App) createUser(email, passwordHash string, role domain.UserRole) (domain.User, error) {
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       domain.StatusActive,
		Tier:         domain.TierFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}
