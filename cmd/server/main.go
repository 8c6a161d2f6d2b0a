package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/api"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/auth"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/blob"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/config"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/database"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/services"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/website"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/ws"
	"github.com/htech-wordpress/vibefit-studio-admin/pkg/models"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	projectID, err := cfg.RequireProjectID()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}

	docs, err := store.NewGorm(db, projectID)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create document store")
	}
	svc := services.New(docs)

	hub := ws.NewHub(cfg.CORSOrigin)
	go hub.Run(ctx)

	aggregator := website.NewAggregator(docs, svc, website.WithNotifier(hub))

	provider, err := auth.NewProvider(db, cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create auth provider")
	}
	authService := auth.NewService(provider, auth.NewChecker(auth.NewGormDirectory(db), projectID))
	authService.OnAccessChange(func(p *auth.Principal) {
		if p == nil {
			hub.NotifyAuthState(models.AuthStateEvent{SignedIn: false})
			return
		}
		hub.NotifyAuthState(models.AuthStateEvent{UserID: p.UserID, Email: p.Email, SignedIn: true})
	})

	blobs, err := blob.Open(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open blob store")
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Deps{
		ProjectID:  projectID,
		CORSOrigin: cfg.CORSOrigin,
		Services:   svc,
		Website:    aggregator,
		Auth:       authService,
		Blobs:      blobs,
		Hub:        hub,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.Port).Str("project", projectID).
			Str("blob_driver", string(blobs.Driver())).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Failed to run server")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Server shutdown failed")
	}
}
