package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"bhashagen/internal/usertoken"
	"bhashagen/internal/util"
	"bhashagen/services/gateway/internal/authclient"
	"bhashagen/services/gateway/internal/config"
	"bhashagen/services/gateway/internal/contentclient"
	"bhashagen/services/gateway/internal/genclient"
	"bhashagen/services/gateway/internal/server"
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

	verifier, err := usertoken.NewVerifier(usertoken.Config{
		JWKSURL:  cfg.AuthJWKSURL,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   jwtLeeway,
	})
	if err != nil {
		log.Fatalf("failed to init token verifier: %v", err)
	}

	httpServer, err := server.New(server.Config{
		Auth:                       authclient.NewClient(cfg.AuthServiceURL),
		Generation:                 genclient.NewClient(cfg.GenerationServiceURL),
		Content:                    contentclient.NewClient(cfg.ContentServiceURL),
		TokenVerifier:              verifier,
		RedisAddr:                  cfg.RedisAddr,
		RedisPassword:              cfg.RedisPassword,
		TrustedProxyCIDRs:          cfg.TrustedProxyCIDRs,
		SignupRateLimitPerMinute:   cfg.SignupRateLimitPerMinute,
		LoginRateLimitPerMinute:    cfg.LoginRateLimitPerMinute,
		GenerateRateLimitPerMinute: cfg.GenerateRateLimitPerMinute,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("gateway listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
