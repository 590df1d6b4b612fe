package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/RupeshSangoju/quickverdicts-sub001/api/handlers"
	"github.com/RupeshSangoju/quickverdicts-sub001/api/scheduler"
	"github.com/RupeshSangoju/quickverdicts-sub001/config"
	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "quickverdicts",
	Short: "quickverdicts runs the QuickVerdicts mock trial API",
	RunE:  serveRunE,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the background jobs",
	RunE:  serveRunE,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the indexes and bootstrap the head admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initialize()
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		if err := databases.EnsureIndexes(ctx, a.DB()); err != nil {
			return errors.Wrap(err, "failed to ensure indexes")
		}
		if err := databases.EnsureHeadAdmin(ctx, a.DB()); err != nil {
			return errors.Wrap(err, "failed to bootstrap head admin")
		}
		zap.S().Info("migration finished")
		return nil
	},
}

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Archive old notifications and events and clean up auth records once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initialize()
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		report := a.Services.Maintenance.RunRetention(cmd.Context())
		zap.S().Infow("retention finished",
			"notificationsArchived", report.NotificationsArchived,
			"eventsArchived", report.EventsArchived,
			"resetsRemoved", report.ResetsRemoved,
			"attemptsRemoved", report.AttemptsRemoved)
		if !report.OK {
			return errors.New("retention finished with errors")
		}
		return nil
	},
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Send the due trial reminders once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initialize()
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		sent, ok := a.Services.Maintenance.SendTrialReminders(cmd.Context())
		zap.S().Infow("trial reminders finished", "sent", sent)
		if !ok {
			return errors.New("trial reminders finished with errors")
		}
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password for manual account repair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrap(err, "failed to hash password")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(hash))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func initialize() (*handlers.App, error) {
	a := &handlers.App{}
	a.Config = *config.New()
	if err := a.Initialize(); err != nil {
		return nil, err
	}
	return a, nil
}

func serveRunE(cmd *cobra.Command, args []string) error {
	a, err := initialize() //initialize database and router
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	if err := databases.EnsureIndexes(ctx, a.DB()); err != nil {
		zap.S().Errorw("failed to ensure indexes", "error", err)
	}
	if err := databases.EnsureHeadAdmin(ctx, a.DB()); err != nil {
		zap.S().Errorw("failed to bootstrap head admin", "error", err)
	}
	cancel()

	s := scheduler.NewScheduler(a.Services.Maintenance, databases.NewSchedulerLockDatabase(a.DB()))
	s.Start()
	defer s.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	errs := make(chan error, 1)
	go func() {
		zap.S().Infow("quickverdicts-api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
			"version", version,
		)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		zap.S().Infow("shutting down", "signal", sig.String())
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, retentionCmd, remindersCmd, hashPasswordCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
