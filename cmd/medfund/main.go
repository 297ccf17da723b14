// Command medfund runs the MedFund donation backend.
package main

import (
	"MedFund-Backend/cmd/config"
	migration "MedFund-Backend/cmd/database/migrate"
	"MedFund-Backend/internal/utils"
	"MedFund-Backend/pkg/jwt"
	"MedFund-Backend/pkg/user"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "medfund",
		Short: "Medical aid donation backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := utils.ReadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			utils.SetConfig(cfg)
			return nil
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "Config file path (YAML)")

	cmd.AddCommand(serveCmd(), migrateCmd(), seedAdminCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.ConnectDB()
			if err != nil {
				return err
			}
			if autoMigrate {
				if err := migration.Migrate(db); err != nil {
					return err
				}
			}

			app, cleanup, err := config.NewApp(db)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- app.Listen(":" + utils.GetConfig("APP_PORT"))
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				log.Info("shutting down")
				return app.ShutdownWithTimeout(10 * time.Second)
			}
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "Run database migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.ConnectDB()
			if err != nil {
				return err
			}
			return migration.Migrate(db)
		},
	}
}

func seedAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the administrator account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := utils.Get()
			if email == "" {
				email = cfg.AdminEmail
			}
			if password == "" {
				password = cfg.AdminPassword
			}
			if email == "" || password == "" {
				return errors.New("admin email and password are required (flags or ADMIN_EMAIL / ADMIN_PASSWORD)")
			}

			db, err := config.ConnectDB()
			if err != nil {
				return err
			}
			svc := user.NewUserService(user.NewUserRepository(db), jwt.NewJWTService(cfg.JWTSecret))

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			admin, err := svc.EnsureAdmin(ctx, name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s) ready\n", admin.Email, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Admin email (defaults to ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (defaults to ADMIN_PASSWORD)")
	return cmd
}
