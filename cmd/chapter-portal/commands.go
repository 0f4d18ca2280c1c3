package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/MalavS298/basiscpk/internal/app"
	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/internal/config"
	"github.com/MalavS298/basiscpk/internal/db"
	"github.com/MalavS298/basiscpk/pkg/logger"
	"github.com/spf13/cobra"
)

func newRootCmd(log logger.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "chapter-portal",
		Short:         "Chapter portal API server and operator tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(log),
		newMigrateCmd(log),
		newRolesCmd(log),
		newSettingsCmd(log),
	)
	return root
}

func newServeCmd(log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(log)
		},
	}
}

func serve(log logger.Logger) error {
	log.Info("app: starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(log)
	if err != nil {
		return err
	}
	application, err := app.New(cfg, log)
	if err != nil {
		log.Critical("app: init failed", "err", err)
		return err
	}

	srv := application.HTTPServer()
	log.Info("http: listening", "addr", srv.Addr)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("app: shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			log.Critical("http: server failed", "addr", srv.Addr, "err", err)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http: graceful shutdown failed", "err", err)
		runErr = errors.Join(runErr, err)
	}
	if err := application.Close(); err != nil {
		log.Error("app: close failed", "err", err)
		runErr = errors.Join(runErr, err)
	}

	if runErr == nil {
		log.Info("app: stopped")
	}
	return runErr
}

func newMigrateCmd(log logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	run := func(direction db.Direction) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(log)
			if err != nil {
				return err
			}
			return db.Migrate(cfg.DB, direction, log)
		}
	}
	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: run(db.DirectionUp)},
		&cobra.Command{Use: "down", Short: "Roll back all migrations", Args: cobra.NoArgs, RunE: run(db.DirectionDown)},
	)
	return cmd
}

func newRolesCmd(log logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage role assignments",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "grant <user-id> <admin|user>",
		Short: "Assign a role to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := authz.Role(args[1])
			if !role.Valid() {
				return fmt.Errorf("role must be %q or %q", authz.RoleAdmin, authz.RoleMember)
			}
			return withApp(log, func(application *app.App) error {
				if err := application.Services().Users.AssignRole(cmd.Context(), args[0], role); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "granted %s to %s\n", role, args[0])
				return nil
			})
		},
	})
	return cmd
}

func newSettingsCmd(log logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Change chapter-wide settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "accepting <true|false>",
		Short: "Open or close member submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accepting, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", args[0])
			}
			return withApp(log, func(application *app.App) error {
				updated, err := application.Services().Settings.ForceAcceptingResponses(cmd.Context(), accepting)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "accepting_responses=%t\n", updated.AcceptingResponses)
				return nil
			})
		},
	})
	return cmd
}

func withApp(log logger.Logger, fn func(*app.App) error) error {
	cfg, err := config.Load(log)
	if err != nil {
		return err
	}
	application, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("app: close failed", "err", err)
		}
	}()
	return fn(application)
}
