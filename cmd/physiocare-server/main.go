package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/HectorRP3/PhysioCareApi/internal/config"
	"github.com/HectorRP3/PhysioCareApi/internal/domain/patient"
	"github.com/HectorRP3/PhysioCareApi/internal/domain/physio"
	"github.com/HectorRP3/PhysioCareApi/internal/domain/record"
	"github.com/HectorRP3/PhysioCareApi/internal/domain/user"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/auth"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/db"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/httpx"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/middleware"
	"github.com/HectorRP3/PhysioCareApi/internal/platform/push"
)

// patientDirectory adapts the patient repository to the record manager's
// directory interface, avoiding circular imports between the packages.
type patientDirectory struct {
	repo patient.Repository
}

func (d patientDirectory) Ref(ctx context.Context, id uuid.UUID) (*record.PatientRef, error) {
	p, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &record.PatientRef{ID: p.ID, Name: p.Name, Surname: p.Surname, UserID: p.UserID}, nil
}

func (d patientDirectory) IDsBySurname(ctx context.Context, surname string) ([]uuid.UUID, error) {
	list, err := d.repo.FindBySurname(ctx, surname)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// physioDirectory adapts the physio repository the same way.
type physioDirectory struct {
	repo physio.Repository
}

func (d physioDirectory) Ref(ctx context.Context, id uuid.UUID) (*record.PhysioRef, error) {
	p, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &record.PhysioRef{ID: p.ID, Name: p.Name, Surname: p.Surname, UserID: p.UserID}, nil
}

// pushTokenDirectory exposes stored device tokens to the record manager.
type pushTokenDirectory struct {
	repo user.Repository
}

func (d pushTokenDirectory) PushToken(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := d.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.PushToken, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "physiocare-server",
		Short: "PhysioCare API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the PhysioCare API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpx.ErrorHandler

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Platform services
	tokens := auth.NewTokenService(cfg.JWTSecretKey)
	var dispatcher push.Dispatcher = push.NewHTTPDispatcher(cfg.PushURL, cfg.PushAPIKey)
	if cfg.PushURL == "" {
		dispatcher = &push.Mock{}
		logger.Warn().Msg("PUSH_URL not set, push notifications disabled")
	}

	// Repositories
	userRepo := user.NewRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	physioRepo := physio.NewRepoPG(pool)
	recordRepo := record.NewRepoPG(pool)

	// Services
	recordSvc := record.NewService(recordRepo,
		patientDirectory{repo: patientRepo},
		physioDirectory{repo: physioRepo},
		pushTokenDirectory{repo: userRepo},
		dispatcher, logger)
	patientSvc := patient.NewService(patientRepo, recordSvc, logger)
	physioSvc := physio.NewService(physioRepo, recordSvc, logger)
	userSvc := user.NewService(userRepo, patientSvc, physioSvc, tokens)

	// Routes
	user.NewHandler(userSvc, tokens).RegisterRoutes(e.Group("/auth"))
	patient.NewHandler(patientSvc, tokens).RegisterRoutes(e.Group("/patients"))
	physio.NewHandler(physioSvc, tokens).RegisterRoutes(e.Group("/physios"))
	record.NewHandler(recordSvc, tokens).RegisterRoutes(e.Group("/records"))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
