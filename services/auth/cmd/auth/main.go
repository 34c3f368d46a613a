package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"bhashagen/internal/util"
	"bhashagen/services/auth/internal/app"
	"bhashagen/services/auth/internal/config"
	"bhashagen/services/auth/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	jwtLeeway, err := config.ParseJWTLeeway(cfg.JWTLeeway)
	if err != nil {
		log.Fatalf("failed to parse jwt leeway: %v", err)
	}
	verifyKeys, err := config.ParseVerifyPublicKeys(cfg.JWTVerifyPublicKeys)
	if err != nil {
		log.Fatalf("failed to parse jwt verify keys: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := app.New(app.Config{
		DatabaseURL:         cfg.DatabaseURL,
		SessionTTL:          sessionTTL,
		JWTPrivateKeyPath:   cfg.JWTPrivateKeyPath,
		JWTPublicKeyPath:    cfg.JWTPublicKeyPath,
		JWTKeyID:            cfg.JWTKeyID,
		JWTVerifyPublicKeys: verifyKeys,
		JWTIssuer:           cfg.JWTIssuer,
		JWTAudience:         cfg.JWTAudience,
		JWTLeeway:           jwtLeeway,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer := server.New(server.Config{
		App: appCore,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("auth server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
