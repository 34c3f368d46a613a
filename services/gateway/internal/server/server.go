package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bhashagen/internal/ratelimit"
	"bhashagen/internal/usertoken"
	"bhashagen/internal/util"
	"bhashagen/pkg/domain"
	"bhashagen/services/gateway/internal/authclient"
	"bhashagen/services/gateway/internal/contentclient"
	"bhashagen/services/gateway/internal/genclient"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	Auth                       *authclient.Client
	Generation                 *genclient.Client
	Content                    *contentclient.Client
	TokenVerifier              *usertoken.Verifier
	RedisAddr                  string
	RedisPassword              string
	TrustedProxyCIDRs          []string
	SignupRateLimitPerMinute   int
	LoginRateLimitPerMinute    int
	GenerateRateLimitPerMinute int
}

// Server exposes the public HTTP API in front of the backend services.
type Server struct {
	auth            *authclient.Client
	generation      *genclient.Client
	content         *contentclient.Client
	tokenVerifier   *usertoken.Verifier
	mux             *http.ServeMux
	trustedProxies  *util.TrustedProxies
	signupLimiter   *ratelimit.FixedWindowLimiter
	loginLimiter    *ratelimit.FixedWindowLimiter
	generateLimiter *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	signupLimit := cfg.SignupRateLimitPerMinute
	if signupLimit <= 0 {
		signupLimit = 5
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	generateLimit := cfg.GenerateRateLimitPerMinute
	if generateLimit <= 0 {
		generateLimit = 20
	}
	rateWindow := time.Minute
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "bhashagen:gateway:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, rateWindow)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	signupLimiter, err := newLimiter("signup", signupLimit)
	if err != nil {
		return nil, err
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	generateLimiter, err := newLimiter("generate", generateLimit)
	if err != nil {
		return nil, err
	}
	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxy cidrs: %w", err)
	}
	s := &Server{
		auth:            cfg.Auth,
		generation:      cfg.Generation,
		content:         cfg.Content,
		tokenVerifier:   cfg.TokenVerifier,
		mux:             http.NewServeMux(),
		trustedProxies:  trustedProxies,
		signupLimiter:   signupLimiter,
		loginLimiter:    loginLimiter,
		generateLimiter: generateLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("gateway", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("/api/auth/jwks", s.handleJWKS)
	s.mux.HandleFunc("/.well-known/jwks.json", s.handleJWKS)
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))

	// generation & content library (auth required)
	s.mux.Handle("/api/generate", s.authenticated(s.handleGenerate))
	s.mux.Handle("/api/content", s.authenticated(s.handleContent))
	s.mux.Handle("/api/content/", s.authenticated(s.handleContentItem))
	s.mux.Handle("/api/usage", s.authenticated(s.handleUsage))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			s.audit(r, "gateway.authorize", "fail")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		s.audit(r, "gateway.token.verify", "fail", "reason", "missing_token")
		return domain.User{}, false
	}
	if s.tokenVerifier != nil {
		if _, err := s.tokenVerifier.VerifySubject(token); err != nil {
			s.audit(r, "gateway.token.verify", "fail", "reason", "invalid_signature_or_claims")
			return domain.User{}, false
		}
	}
	user, err := s.auth.Me(token)
	if err != nil {
		s.audit(r, "gateway.token.verify", "fail", "reason", "auth_me_failed")
		return domain.User{}, false
	}
	return user, true
}

// auth handlers
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.signupLimiter, "too many signup attempts") {
		s.audit(r, "gateway.signup", "rate_limited")
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "gateway.signup", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.auth.SignUp(req.Email, req.Password)
	if err != nil {
		s.audit(r, "gateway.signup", "fail", "reason", err.Error())
		writeAuthError(w, err)
		return
	}
	s.audit(r, "gateway.signup", "success", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "gateway.login", "rate_limited")
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "gateway.login", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "gateway.login", "fail", "reason", err.Error())
		writeAuthError(w, err)
		return
	}
	s.audit(r, "gateway.login", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		s.audit(r, "gateway.logout", "fail", "reason", "missing_token")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.auth.Logout(token); err != nil {
		s.audit(r, "gateway.logout", "fail", "reason", err.Error())
		writeAuthError(w, err)
		return
	}
	s.audit(r, "gateway.logout", "success")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleJWKS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	keys, err := s.auth.JWKS()
	if err != nil {
		writeAuthError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// /api/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.generateLimiter, "too many generation requests") {
		s.audit(r, "gateway.generate", "rate_limited", "user_id", user.ID)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.ContentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	text, err := s.generation.Generate(token, req)
	if err != nil {
		s.audit(r, "gateway.generate", "fail", "user_id", user.ID, "reason", err.Error())
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"generatedText": text})
}

// /api/content
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request, user domain.User) {
	_ = user
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleListContent(w, r, token)
	case http.MethodPost:
		s.handleSaveContent(w, r, token)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request, token string) {
	q := r.URL.Query()
	filter := contentclient.ListFilter{
		Language:    q.Get("language"),
		ContentType: q.Get("contentType"),
		Query:       q.Get("q"),
	}
	if v := q.Get("favorites"); v != "" {
		filter.FavoritesOnly = v == "true" || v == "1"
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	items, err := s.content.List(token, filter)
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (s *Server) handleSaveContent(w http.ResponseWriter, r *http.Request, token string) {
	var req contentclient.SaveRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item, err := s.content.Save(token, req)
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// /api/content/{id}
func (s *Server) handleContentItem(w http.ResponseWriter, r *http.Request, user domain.User) {
	_ = user
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/content/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req favoriteRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.IsFavorite == nil {
			writeError(w, http.StatusBadRequest, "isFavorite is required")
			return
		}
		item, err := s.content.SetFavorite(token, id, *req.IsFavorite)
		if err != nil {
			writeContentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodDelete:
		if err := s.content.Delete(token, id); err != nil {
			writeContentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

// /api/usage
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request, user domain.User) {
	_ = user
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	usage, err := s.content.CurrentUsage(token)
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type favoriteRequest struct {
	IsFavorite *bool `json:"isFavorite"`
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trustedProxies),
		"request_id", util.RequestIDFromRequest(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func writeAuthError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*authclient.APIError); ok {
		writeError(w, apiErr.Status, apiErr.Message)
		return
	}
	writeError(w, http.StatusBadGateway, "auth service unavailable")
}

func writeContentError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*contentclient.APIError); ok {
		writeError(w, apiErr.Status, apiErr.Message)
		return
	}
	writeError(w, http.StatusBadGateway, "content service unavailable")
}

// writeGenerationError forwards the generation service's error payload,
// including the provider detail, so the caller sees the same shape the
// service produced.
func writeGenerationError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*genclient.APIError); ok {
		payload := map[string]string{"error": apiErr.Message}
		if apiErr.Details != "" {
			payload["details"] = apiErr.Details
		}
		writeJSON(w, apiErr.Status, payload)
		return
	}
	writeError(w, http.StatusBadGateway, "generation service unavailable")
}
