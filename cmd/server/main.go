// Command server runs the tent booking API and its administrative tasks.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/tent-booking/internal/config"
	"github.com/iliyamo/tent-booking/internal/database"
	"github.com/iliyamo/tent-booking/internal/handler"
	"github.com/iliyamo/tent-booking/internal/logger"
	"github.com/iliyamo/tent-booking/internal/metrics"
	"github.com/iliyamo/tent-booking/internal/queue"
	"github.com/iliyamo/tent-booking/internal/repository"
	"github.com/iliyamo/tent-booking/internal/router"
	"github.com/iliyamo/tent-booking/internal/service"
)

var withConsumer bool

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Tent booking API server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (default)",
	RunE:  runServe,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().BoolVar(&withConsumer, "with-consumer", false, "also run the booking.confirmed consumer in-process")
	}
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd, tentTypeCmd, consumeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds what every command needs.
type app struct {
	cfg config.Config
	log *zap.Logger
	db  *sql.DB
}

// bootstrap loads configuration and the logger, and opens the database
// unless withDB is false.
func bootstrap(withDB bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	a := &app{cfg: cfg, log: log.With(zap.String("env", cfg.Env))}
	if withDB {
		a.db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.log.Sync()
}

func (a *app) authService() service.AuthService {
	return service.NewAuthService(repository.NewUserRepo(a.db), repository.NewTokenRepo(a.db), service.AuthOptions{
		JWTSecret:        a.cfg.JWTSecret,
		AccessTTLMin:     a.cfg.AccessTTLMin,
		RefreshTTLDays:   a.cfg.RefreshTTLDays,
		BcryptCost:       a.cfg.BcryptCost,
		AllowAdminSignup: a.cfg.AllowAdminSignup,
		Logger:           a.log.Named("auth"),
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient()
	if rdb == nil {
		a.log.Warn("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	var m *metrics.Metrics
	if a.cfg.Metrics.Enabled {
		m = metrics.New(a.cfg.Metrics)
	}

	tents := repository.NewTentTypeRepo(a.db)
	opts := service.BookingOptions{
		Location:          a.cfg.Location,
		StrictTransitions: a.cfg.StrictTransitions,
		Publisher:         queue.NewPublisher(a.cfg.AMQP, a.log),
		Logger:            a.log.Named("bookings"),
	}
	if m != nil {
		opts.Observer = m
	}
	bookings := service.NewBookingService(repository.NewBookingRepo(a.db), tents, opts)

	e := router.New(router.Deps{
		Auth:        handler.NewAuthHandler(a.authService(), a.cfg.JWTSecret, a.log),
		Catalog:     handler.NewCatalogHandler(service.NewCatalogService(tents), a.log),
		Bookings:    handler.NewBookingHandler(bookings, a.log),
		JWTSecret:   a.cfg.JWTSecret,
		DB:          a.db,
		Redis:       rdb,
		Cache:       a.cfg.Cache,
		RateLimit:   a.cfg.RateLimit,
		Metrics:     m,
		MetricsPath: a.cfg.Metrics.Path,
		Log:         a.log,
	})

	if withConsumer {
		go func() {
			if err := runConsumer(ctx, a); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	addr := ":" + a.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", addr))
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
