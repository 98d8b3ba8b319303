package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
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
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/medicareperu/clinic-api/internal/config"
	"github.com/medicareperu/clinic-api/internal/domain/account"
	"github.com/medicareperu/clinic-api/internal/domain/appointment"
	"github.com/medicareperu/clinic-api/internal/domain/booking"
	"github.com/medicareperu/clinic-api/internal/domain/dashboard"
	"github.com/medicareperu/clinic-api/internal/domain/exam"
	"github.com/medicareperu/clinic-api/internal/domain/patient"
	"github.com/medicareperu/clinic-api/internal/domain/payment"
	"github.com/medicareperu/clinic-api/internal/domain/practitioner"
	"github.com/medicareperu/clinic-api/internal/domain/prescription"
	"github.com/medicareperu/clinic-api/internal/domain/rbac"
	"github.com/medicareperu/clinic-api/internal/platform/auth"
	"github.com/medicareperu/clinic-api/internal/platform/db"
	"github.com/medicareperu/clinic-api/internal/platform/middleware"
)

// accountClock adapts the account service to the dashboard's sentinel query.
type accountClock struct {
	svc *account.Service
}

func (a *accountClock) CreatedAt(ctx context.Context, id uuid.UUID) (time.Time, error) {
	acc, err := a.svc.Me(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	return acc.CreatedAt, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "MediCare Perú clinic API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
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
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load roles, permissions, and the practitioner catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if err := seedData(ctx, pool); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Println("Seed data loaded.")
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Session signing key. In development an ephemeral key is generated so
	// the server starts without any configuration; tokens die with the
	// process.
	secret := cfg.JWTSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := crypto_rand.Read(buf); err != nil {
			logger.Fatal().Err(err).Msg("failed to generate signing key")
		}
		secret = hex.EncodeToString(buf)
		logger.Warn().Msg("JWT_SECRET not set, using an ephemeral development signing key")
	}
	issuer := auth.NewTokenIssuer([]byte(secret), time.Duration(cfg.TokenTTLHours)*time.Hour)

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

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	// The upload limit leaves headroom for the base64 encoding overhead of
	// the voucher image.
	e.Use(middleware.BodyLimit("1M", fmt.Sprintf("%d", cfg.MaxVoucherBytes*2)))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Google OAuth
	var googleCfg *oauth2.Config
	if cfg.GoogleClientID != "" {
		googleCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	// Repositories
	accountRepo := account.NewRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	practitionerRepo := practitioner.NewRepoPG(pool)
	appointmentRepo := appointment.NewRepoPG(pool)
	paymentRepo := payment.NewRepoPG(pool)
	prescriptionRepo := prescription.NewRepoPG(pool)
	examRepo := exam.NewRepoPG(pool)
	rbacRepo := rbac.NewRepoPG(pool)

	// Services
	patientSvc := patient.NewService(patientRepo)
	practitionerSvc := practitioner.NewService(practitionerRepo)
	appointmentSvc := appointment.NewService(appointmentRepo)
	paymentSvc := payment.NewService(paymentRepo, appointmentSvc, cfg.MaxVoucherBytes)
	prescriptionSvc := prescription.NewService(prescriptionRepo)
	examSvc := exam.NewService(examRepo)
	rbacSvc := rbac.NewService(rbacRepo, cfg.AdminEmail)
	accountSvc := account.NewService(accountRepo, patientSvc, rbacSvc, issuer, googleCfg)
	bookingSvc := booking.NewService(patientSvc, practitionerSvc, paymentSvc, appointmentSvc)
	dashboardSvc := dashboard.NewService(
		appointmentSvc,
		paymentSvc,
		dashboard.CounterFunc(prescriptionSvc.CountActive),
		dashboard.CounterFunc(examSvc.CountOpen),
		&accountClock{svc: accountSvc},
		logger,
	)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// API groups: /api/v1 carries the rate limit; everything except the
	// auth endpoints also requires a session.
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	// One shared limiter store. On protected routes it runs after the
	// session middleware so authenticated traffic is keyed per account;
	// the public auth endpoints are keyed by client IP.
	limiter := middleware.RateLimit(rateLimitCfg)

	accountHandler := account.NewHandler(accountSvc)
	accountHandler.RegisterPublicRoutes(apiV1.Group("", limiter))

	protected := apiV1.Group("", auth.SessionMiddleware(issuer), limiter)
	accountHandler.RegisterRoutes(protected)
	patient.NewHandler(patientSvc).RegisterRoutes(protected)
	practitioner.NewHandler(practitionerSvc, cfg.AdminEmail).RegisterRoutes(protected)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(protected)
	payment.NewHandler(paymentSvc, cfg.AdminEmail).RegisterRoutes(protected)
	booking.NewHandler(bookingSvc).RegisterRoutes(protected)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(protected)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(protected)
	exam.NewHandler(examSvc).RegisterRoutes(protected)
	rbac.NewHandler(rbacSvc, cfg.AdminEmail).RegisterRoutes(protected)

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
