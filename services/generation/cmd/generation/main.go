package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"bhashagen/internal/usertoken"
	"bhashagen/internal/util"
	"bhashagen/services/generation/internal/app"
	"bhashagen/services/generation/internal/authclient"
	"bhashagen/services/generation/internal/config"
	"bhashagen/services/generation/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	jwtLeeway, err := config.ParseJWTLeeway(cfg.JWTLeeway)
	if err != nil {
		log.Fatalf("failed to parse jwt leeway: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := app.New(app.Config{
		OpenAIAPIKey:        cfg.OpenAIAPIKey,
		OpenAIBaseURL:       cfg.OpenAIBaseURL,
		Model:               cfg.Model,
		MaxCompletionTokens: cfg.MaxCompletionTokens,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	verifier, err := usertoken.NewVerifier(usertoken.Config{
		JWKSURL:  cfg.AuthJWKSURL,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   jwtLeeway,
	})
	if err != nil {
		log.Fatalf("failed to init token verifier: %v", err)
	}

	httpServer := server.New(server.Config{
		App:           appCore,
		AuthClient:    authclient.NewClient(cfg.AuthServiceURL),
		TokenVerifier: verifier,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("generation server listening", "addr", addr, "model", cfg.Model)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
