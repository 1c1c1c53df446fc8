package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"garment/internal/config"
	"garment/internal/core/container"
	"garment/internal/core/logger"
	"garment/internal/core/routes"
	"garment/internal/database"
	"garment/internal/database/migration"
	"garment/internal/middleware"
	"garment/pkg/security"
)

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run migrations manually.",
	Long:  `Command that exists and should be used only for development purposes.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			return errors.New("DATABASE_URL environment variable is not set")
		}
		migrationDir, _ := cmd.Flags().GetString("dir")

		log, err := logger.NewLogger("info", true)
		if err != nil {
			return err
		}
		defer log.Sync()

		err = migration.Migrate(
			dbURL,
			fmt.Sprintf("file://%s", migrationDir),
			true,
			log,
		)
		if err != nil {
			log.Error("migration failed", zap.Error(err))
			return fmt.Errorf("migrate database: %w", err)
		}

		return nil
	},
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := security.Configure(cfg.JWT.Secret, cfg.JWT.Expire); err != nil {
		return err
	}

	db, err := database.NewPostgresConnection(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("connected to the database")

	if cfg.Migrations.Auto {
		if err := database.RunMigrations(cfg.Database.URL, cfg.Migrations.Dir, log); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(log),
		middleware.RequestLogger(log),
		middleware.TimeoutMiddleware(cfg.Server.RequestTimeout),
	)

	app := container.NewAppContainer(db, cfg, log)
	defer app.Close()

	routes.RegisterUtilityRoutes(router, app, log)
	routes.RegisterPublicRoutes(router, app)
	routes.RegisterProtectedRoutes(router, app)

	srv := &http.Server{
		Addr:    cfg.Server.Host,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("address", cfg.Server.Host))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func Execute(ctx context.Context) {
	rootCmd := &cobra.Command{
		Use:   "garment",
		Short: "Fabric stock ledger service",
	}
	MigrateCmd.Flags().String("dir", "./migrations", "Directory containing the migration files")
	rootCmd.AddCommand(MigrateCmd, ServeCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
