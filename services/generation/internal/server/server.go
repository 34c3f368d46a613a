package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"bhashagen/internal/usertoken"
	"bhashagen/internal/util"
	"bhashagen/pkg/domain"
	"bhashagen/services/generation/internal/app"
	"bhashagen/services/generation/internal/authclient"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App        *app.App
	AuthClient *authclient.Client
	// TokenVerifier pre-checks bearer tokens locally before the auth
	// service round trip. Optional.
	TokenVerifier *usertoken.Verifier
}

// Server exposes the generation endpoint.
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
	return util.WithRequestID(util.WithRequestLog("generation", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/generate", s.withUser(s.handleGenerate))
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

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req domain.ContentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := app.ValidateRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	text, err := s.app.Generate(r.Context(), req)
	if err != nil {
		slog.Error("generation failed",
			"user_id", user.ID,
			"content_type", req.ContentType,
			"language", req.Language,
			"err", err,
			"request_id", util.RequestIDFromRequest(r),
		)
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"generatedText": text})
}

// writeGenerationError collapses every provider or transport failure into
// one generic 500 payload carrying the underlying detail.
func writeGenerationError(w http.ResponseWriter, err error) {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Failed to generate content",
		"details": detail,
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
