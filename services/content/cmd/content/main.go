package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"bhashagen/internal/usertoken"
	"bhashagen/internal/util"
	"bhashagen/services/content/internal/app"
	"bhashagen/services/content/internal/authclient"
	"bhashagen/services/content/internal/config"
	"bhashagen/services/content/internal/server"
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
		DatabaseURL:   cfg.DatabaseURL,
		FreeTierLimit: cfg.FreeTierMonthlyLimit,
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
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("content server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
