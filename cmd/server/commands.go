package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/tent-booking/internal/database"
	"github.com/iliyamo/tent-booking/internal/logger"
	"github.com/iliyamo/tent-booking/internal/model"
	"github.com/iliyamo/tent-booking/internal/queue"
	"github.com/iliyamo/tent-booking/internal/repository"
	"github.com/iliyamo/tent-booking/internal/service"
)

const cmdTimeout = 30 * time.Second

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer a.close()
		ctx, cancel := context.WithTimeout(cmd.Context(), cmdTimeout)
		defer cancel()
		if err := database.Migrate(ctx, a.db); err != nil {
			return err
		}
		a.log.Info("schema up to date")
		return nil
	},
}

var adminFlags struct {
	username, email, password, firstName, lastName string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer a.close()
		ctx, cancel := context.WithTimeout(cmd.Context(), cmdTimeout)
		defer cancel()

		u, err := a.authService().CreateAdmin(ctx, service.RegisterInput{
			Username:  adminFlags.username,
			Email:     adminFlags.email,
			Password:  adminFlags.password,
			FirstName: adminFlags.firstName,
			LastName:  adminFlags.lastName,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %q created with id %d\n", u.Username, u.ID)
		return nil
	},
}

var tentTypeCmd = &cobra.Command{
	Use:   "tent-type",
	Short: "Manage the tent catalog",
}

var tentFlags struct {
	name, description, price string
	capacity                 uint32
	id                       uint64
	available                bool
}

var tentTypeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a tent type",
	RunE: func(cmd *cobra.Command, _ []string) error {
		price, err := model.ParseCents(tentFlags.price)
		if err != nil {
			return fmt.Errorf("--price: %w", err)
		}
		a, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer a.close()
		ctx, cancel := context.WithTimeout(cmd.Context(), cmdTimeout)
		defer cancel()

		t, err := service.NewCatalogService(repository.NewTentTypeRepo(a.db)).Create(ctx, service.TentTypeInput{
			Name:        tentFlags.name,
			Description: tentFlags.description,
			Capacity:    tentFlags.capacity,
			PricePerDay: price,
			IsAvailable: tentFlags.available,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tent type %q created with id %d\n", t.Name, t.ID)
		return nil
	},
}

var tentTypeAvailabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Open or close a tent type for new bookings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer a.close()
		ctx, cancel := context.WithTimeout(cmd.Context(), cmdTimeout)
		defer cancel()

		svc := service.NewCatalogService(repository.NewTentTypeRepo(a.db))
		if err := svc.SetAvailability(ctx, tentFlags.id, tentFlags.available); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tent type %d available=%t\n", tentFlags.id, tentFlags.available)
		return nil
	},
}

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Append confirmed bookings from RabbitMQ to the booking log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer a.close()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = runConsumer(ctx, a)
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func runConsumer(ctx context.Context, a *app) error {
	w, err := logger.RotatingFile(a.cfg.AMQP.BookingLogPath, a.cfg.Log.MaxSizeMB, a.cfg.Log.MaxBackups, a.cfg.Log.MaxAgeDays, a.cfg.Log.Compress)
	if err != nil {
		return fmt.Errorf("booking log: %w", err)
	}
	defer func() { _ = w.Close() }()
	a.log.Info("consuming booking events", zap.String("queue", a.cfg.AMQP.Queue), zap.String("log", a.cfg.AMQP.BookingLogPath))
	return queue.StartBookingConsumer(ctx, a.cfg.AMQP, w, a.log)
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminFlags.username, "username", "", "login name")
	f.StringVar(&adminFlags.email, "email", "", "email address")
	f.StringVar(&adminFlags.password, "password", "", "password (at least 8 characters)")
	f.StringVar(&adminFlags.firstName, "first-name", "", "given name")
	f.StringVar(&adminFlags.lastName, "last-name", "", "family name")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	f = tentTypeCreateCmd.Flags()
	f.StringVar(&tentFlags.name, "name", "", "unique name")
	f.StringVar(&tentFlags.description, "description", "", "description shown to customers")
	f.Uint32Var(&tentFlags.capacity, "capacity", 0, "maximum number of guests")
	f.StringVar(&tentFlags.price, "price", "", "price per day, e.g. 150.00")
	f.BoolVar(&tentFlags.available, "available", true, "open for bookings")
	_ = tentTypeCreateCmd.MarkFlagRequired("name")
	_ = tentTypeCreateCmd.MarkFlagRequired("capacity")
	_ = tentTypeCreateCmd.MarkFlagRequired("price")

	f = tentTypeAvailabilityCmd.Flags()
	f.Uint64Var(&tentFlags.id, "id", 0, "tent type id")
	f.BoolVar(&tentFlags.available, "available", true, "open for bookings")
	_ = tentTypeAvailabilityCmd.MarkFlagRequired("id")

	tentTypeCmd.AddCommand(tentTypeCreateCmd, tentTypeAvailabilityCmd)
}
