package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bhashagen/internal/usertoken"
	"bhashagen/internal/util"
	"bhashagen/pkg/domain"
	"bhashagen/pkg/store"
	"bhashagen/services/content/internal/app"
	"bhashagen/services/content/internal/authclient"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App        *app.App
	AuthClient *authclient.Client
	// TokenVerifier pre-checks bearer tokens locally before the auth
	// service round trip. Optional.
	TokenVerifier *usertoken.Verifier
}

// Server exposes the content library and usage endpoints.
type Server struct {
	app        *app.App
	authClient *authclient.Client
	verifier   *usertoken.Verifier
	mux        *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:        cfg.App,
		authClient: cfg.AuthClient,
		verifier:   cfg.TokenVerifier,
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler with common middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("content", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/content", s.withUser(s.handleContent))
	s.mux.Handle("/content/", s.withUser(s.handleContentItem))
	s.mux.Handle("/usage/current", s.withUser(s.handleCurrentUsage))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type userHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) withUser(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if s.verifier != nil {
			if _, err := s.verifier.VerifySubject(token); err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		user, err := s.authClient.Me(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		s.handleListContent(w, r, user)
	case http.MethodPost:
		s.handleSaveContent(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request, user domain.User) {
	filter := contentFilterFromQuery(r)
	items, err := s.app.ListContent(user, filter)
	if err != nil {
		slog.Error("list content failed",
			"user_id", user.ID,
			"err", err,
			"request_id", util.RequestIDFromRequest(r),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func contentFilterFromQuery(r *http.Request) store.ContentFilter {
	q := r.URL.Query()
	filter := store.ContentFilter{
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
	return filter
}

type saveContentRequest struct {
	domain.ContentRequest
	GeneratedText string `json:"generatedText"`
}

func (s *Server) handleSaveContent(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req saveContentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item, err := s.app.SaveContent(user, req.ContentRequest, req.GeneratedText)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("save content failed",
			"user_id", user.ID,
			"err", err,
			"request_id", util.RequestIDFromRequest(r),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func isValidationError(err error) bool {
	return errors.Is(err, app.ErrProductServiceRequired) ||
		errors.Is(err, app.ErrContentTypeRequired) ||
		errors.Is(err, app.ErrLanguageRequired) ||
		errors.Is(err, app.ErrToneRequired) ||
		errors.Is(err, app.ErrGeneratedTextRequired)
}

func (s *Server) handleContentItem(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.TrimPrefix(r.URL.Path, "/content/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodPatch:
		s.handleSetFavorite(w, r, user, id)
	case http.MethodDelete:
		s.handleDeleteContent(w, r, user, id)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSetFavorite(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	var req struct {
		IsFavorite *bool `json:"isFavorite"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.IsFavorite == nil {
		writeError(w, http.StatusBadRequest, "isFavorite is required")
		return
	}
	item, err := s.app.SetFavorite(user, id, *req.IsFavorite)
	if err != nil {
		s.writeItemError(w, r, user, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if err := s.app.DeleteContent(user, id); err != nil {
		s.writeItemError(w, r, user, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) writeItemError(w http.ResponseWriter, r *http.Request, user domain.User, err error) {
	switch {
	case errors.Is(err, app.ErrContentNotFound):
		writeError(w, http.StatusNotFound, "content not found")
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		slog.Error("content operation failed",
			"user_id", user.ID,
			"err", err,
			"request_id", util.RequestIDFromRequest(r),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleCurrentUsage(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	usage, err := s.app.CurrentUsage(user)
	if err != nil {
		slog.Error("usage lookup failed",
			"user_id", user.ID,
			"err", err,
			"request_id", util.RequestIDFromRequest(r),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"usage":         usage,
		"freeTierLimit": s.app.FreeTierLimit(),
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
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
