package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emo-pages-backend/internal/config"
	"emo-pages-backend/internal/database"
	"emo-pages-backend/internal/handlers"
	"emo-pages-backend/internal/metrics"
	"emo-pages-backend/internal/services"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP and WebSocket server",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the schema before serving")

	return cmd
}

// newRouter wires services and handlers on top of an open database
func newRouter(ctx context.Context, cfg *config.Config, db *database.DB) (*handlers.Router, error) {
	m := metrics.New()
	hub := services.NewInboxHub()
	pages := services.NewPageService(db.Store, m)
	anon := services.NewAnonymousService(pages, hub)
	viewer := services.NewViewer(pages)
	links := services.NewLinks(cfg.Server.PublicURL)
	tokens := services.NewStreamTokens(cfg.JWT.Secret, cfg.JWT.StreamTTL)

	rt := &handlers.Router{
		Schema:    handlers.NewSchemaHandler(),
		Pages:     handlers.NewPageHandler(pages, viewer, links),
		Anonymous: handlers.NewAnonymousHandler(anon, links, tokens, cfg.Inbox.PollInterval),
		WebSocket: handlers.NewWebSocketHandler(viewer, anon, links, hub, cfg.Viewer.CountdownSeconds, cfg.Inbox.PollInterval),
		Tokens:    tokens,
		Metrics:   m,
		Ping:      db.Store.Ping,
	}

	if cfg.Images.Bucket != "" {
		images, err := services.NewImageService(ctx, cfg.Images)
		if err != nil {
			return nil, fmt.Errorf("failed to create image service: %w", err)
		}
		rt.Images = handlers.NewImageHandler(images)
	} else {
		log.Warn().Msg("Image uploads disabled: no bucket configured")
	}

	return rt, nil
}

func runServe(ctx context.Context, cfg *config.Config, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info().Str("driver", db.Driver()).Msg("Database connection established")

	if migrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		log.Info().Msg("Schema applied")
	}

	rt, err := newRouter(ctx, cfg, db)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     rt.Handler(),
		ReadTimeout: 15 * time.Second,
		// WebSocket connections hijack the conn, so this only bounds plain requests.
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}
