// @title        Book Review API
// @version      1.0
// @description  Public JSON API of the book review site.
// @BasePath     /
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookreview/internal/config"
	"bookreview/internal/handlers"
	"bookreview/internal/logger"
	"bookreview/internal/ratings"
	"bookreview/internal/repository"
	"bookreview/internal/repository/db"
	"bookreview/internal/server"
	"bookreview/internal/service"
	"bookreview/internal/session"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var configDir string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bookreview",
		Short:        "Book review web application",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVar(&configDir, "config", "configs", "directory containing config.yml")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE:  runMigrate,
		},
		newImportCmd(),
	)
	return root
}

// bootstrap loads .env and config and builds the logger.
// Configuration errors are fatal.
func bootstrap() (*config.Config, *logger.Logger) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load(configDir)
	if err != nil {
		logger.New(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	return cfg, logger.New(cfg.LogLevel)
}

// openDB opens DATABASE_URL and brings the schema up to date.
func openDB(ctx context.Context, cfg *config.Config, log *logger.Logger) (*sqlx.DB, error) {
	conn, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn, log); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Infow("database ready", "dialect", db.DialectOf(conn))
	return conn, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log := bootstrap()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := openDB(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to init database", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	store, closeStore := newSessionStore(ctx, cfg, log)
	defer closeStore()

	if cfg.Session.UsesDefaultSecret() {
		log.Warnw("session_default_secret", "hint", "set SESSION_SECRET before exposing the server")
	}
	sessions, err := session.NewManager(store, cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		log.Fatalw("failed to init sessions", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	ratingsClient := ratings.NewClient(cfg.Ratings.BaseURL, cfg.Ratings.APIKey, cfg.Ratings.Timeout)
	services, err := service.NewService(repos, ratingsClient, service.Options{
		Hasher: service.NewPasswordHasher(cfg.Auth.HashScheme, cfg.Auth.Iterations, cfg.Auth.SaltLength),
		Review: service.ReviewOptions{
			MinRating: cfg.Review.MinRating,
			MaxRating: cfg.Review.MaxRating,
			PageSize:  cfg.Review.PageSize,
		},
	})
	if err != nil {
		log.Fatalw("failed to init services", "err", err)
	}
	apiHandler := handlers.NewHandler(services, sessions, log, handlers.Options{
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.Secure,
	})

	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, cfg.Port, log)

	<-ctx.Done()
	waitForShutdown(srv, log)
	return nil
}

// newSessionStore picks the configured session backend.
func newSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Store, func()) {
	if cfg.Session.Store != "redis" {
		log.Infow("using in-memory session store")
		return session.NewMemoryStore(), func() {}
	}

	client, err := session.DialRedis(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
	if err != nil {
		log.Fatalw("failed to connect to redis", "addr", cfg.Session.RedisAddr, "err", err)
	}
	log.Infow("using redis session store", "addr", cfg.Session.RedisAddr)
	return session.NewRedisStore(client), func() {
		if err := client.Close(); err != nil {
			log.Errorw("failed to close redis", "err", err)
		}
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown lets in-flight requests complete.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log := bootstrap()
	defer func() { _ = log.Sync() }()

	conn, err := openDB(cmd.Context(), cfg, log)
	if err != nil {
		log.Errorw("migration failed", "err", err)
		return err
	}
	return conn.Close()
}
