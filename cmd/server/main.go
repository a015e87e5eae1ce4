package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-social/backend/internal/contentanalysis"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/router"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.IsDevelopment())
	defer logger.Sync()

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize databases", err)
	}
	defer db.CloseDB()

	redisClient, err := config.InitRedis(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", err)
	}
	if redisClient == nil {
		logger.Warn("REDIS_URL not set, follower counts are not cached")
	} else {
		defer redisClient.Close()
	}

	ctx := context.Background()
	deps := router.Dependencies{
		Config:   cfg,
		Postgres: db.Postgres,
		Mongo:    db.Mongo,
		Redis:    redisClient,
	}

	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase", err)
		}
		deps.FirebaseAuth = firebaseApp.AuthClient
	} else {
		logger.Warn("FIREBASE_CREDENTIALS not set, Firebase login disabled")
	}

	if cfg.GeminiAPIKey != "" {
		analyzer, err := contentanalysis.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ContentAnalysisTimeout)
		if err != nil {
			logger.Fatal("Failed to initialize content analyzer", err)
		}
		deps.Analyzer = analyzer
	} else {
		logger.Warn("GEMINI_API_KEY not set, content is accepted without analysis")
		deps.Analyzer = contentanalysis.AcceptAll{}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler

	config.SetupMiddleware(e, cfg)

	if err := router.SetupRoutes(e, deps); err != nil {
		logger.Fatal("Failed to set up routes", err)
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server stopped", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
