package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hirelens/config"
	"hirelens/internal/adapters/auth"
	"hirelens/internal/adapters/email"
	"hirelens/internal/database"
	httpdelivery "hirelens/internal/delivery/http"
	"hirelens/internal/delivery/http/controllers"
	"hirelens/internal/delivery/http/middleware"
	"hirelens/internal/domain"
	"hirelens/internal/metrics"
	"hirelens/internal/repository/memory"
	"hirelens/internal/repository/postgres"
	"hirelens/internal/services"
	"hirelens/internal/signaling"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"
)

const shutdownTimeout = 15 * time.Second

// Run is the process entry point. args is os.Args[1:].
func Run(ctx context.Context, args []string) error {
	inv, err := ParseArgs(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger()

	switch inv.Command {
	case CommandMigrate:
		return runMigrate(cfg, inv, logger)
	default:
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg, logger)
	}
}

func runMigrate(cfg *config.Config, inv Invocation, logger *slog.Logger) error {
	switch inv.Action {
	case MigrateDown:
		if err := database.RollbackMigrations(cfg.DBUrl, inv.Steps); err != nil {
			return err
		}
		logger.Info("migrations rolled back", "steps", inv.Steps)
	case MigrateVersion:
		version, dirty, err := database.MigrationVersion(cfg.DBUrl)
		if err != nil {
			return err
		}
		logger.Info("migration version", "version", version, "dirty", dirty)
	default:
		if err := database.RunMigrations(cfg.DBUrl); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	srv, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", httpServer.Addr, "env", cfg.Environment, "store", cfg.StoreDriver)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Hijacked websocket connections are invisible to Shutdown.
	srv.Signaling.CloseAll()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// Server is the wired application: its root handler and the resources
// Close releases.
type Server struct {
	Handler   http.Handler
	Signaling *signaling.WebSocketServer

	db      *sql.DB
	limiter *middleware.RateLimiter
}

// Close stops background work and releases the database pool.
func (s *Server) Close() {
	s.Signaling.CloseAll()
	s.limiter.Stop()
	if s.db != nil {
		_ = s.db.Close()
	}
}

type repositories struct {
	users    domain.UserRepository
	slots    domain.AvailabilityRepository
	meetings domain.MeetingRepository
}

// Build wires repositories, services, the relay and the router from cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	var (
		repos repositories
		db    *sql.DB
		err   error
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		repos = repositories{users: store, slots: store, meetings: store}
	default:
		pool := database.DefaultPoolConfig
		pool.MaxOpenConns = cfg.DBMaxOpenConns
		db, err = database.Open(cfg.DBUrl, pool)
		if err != nil {
			return nil, err
		}
		if err := database.Ping(ctx, db, 5*time.Second); err != nil {
			_ = db.Close()
			return nil, err
		}
		repos = repositories{
			users:    postgres.NewUserRepository(db),
			slots:    postgres.NewAvailabilityRepository(db),
			meetings: postgres.NewMeetingRepository(db),
		}
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	tokens := auth.NewJWT(cfg.JWTSecret)
	emails := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	authSvc := services.NewAuthService(repos.users, auth.NewBcryptHasher(bcrypt.DefaultCost), tokens, cfg.JWTExpiry)
	availSvc := services.NewAvailabilityService(repos.users, repos.slots)
	bookingSvc := services.NewBookingService(repos.users, repos.meetings, logger,
		services.WithEmailService(emails),
		services.WithBookingMetrics(collector),
	)

	relay := signaling.NewRelay(signaling.NewRegistry(), signaling.Options{
		TargetedHangup:    cfg.Relay.TargetedHangup,
		NotifyUnreachable: cfg.Relay.NotifyUnreachable,
	}, collector, logger)
	ws := signaling.NewWebSocketServer(relay, signaling.WSConfig{
		MaxMessageBytes:   cfg.Relay.MaxMessageBytes,
		MessagesPerSecond: cfg.Relay.MessagesPerSecond,
		SendQueue:         cfg.Relay.SendQueue,
		PongWait:          cfg.Relay.PongWait,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
	}, logger)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{PerMinute: cfg.BookingRatePerMinute}, logger)

	var pinger controllers.Pinger
	if db != nil {
		pinger = db
	}

	handler := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Verifier:       tokens,
		BookingLimiter: limiter,
		Auth:           controllers.NewAuthController(logger, authSvc),
		Availability:   controllers.NewAvailabilityController(logger, availSvc),
		Meetings:       controllers.NewMeetingController(logger, bookingSvc),
		RTC:            controllers.NewRTCController(cfg.ICEServers),
		Health:         controllers.NewHealthController(logger, pinger),
		Signaling:      ws,
		Metrics:        metrics.Handler(reg),
		Recorder:       collector,
	})

	return &Server{Handler: handler, Signaling: ws, db: db, limiter: limiter}, nil
}
