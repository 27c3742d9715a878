// Command saludvital runs the Salud Vital clinic administration server and
// its maintenance tasks.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/server"
	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/service"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/tracer"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "saludvital",
		Short:         "Salud Vital clinic administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if configFile != "" {
				return os.Setenv("CONFIG_FILE", configFile)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file read for settings the environment leaves unset")
	rootCmd.AddCommand(serveCmd(), migrateCmd(), createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply schema migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(*cobra.Command, []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			return database.Migrate(a.db, a.log)
		},
	}
}

func createUserCmd() *cobra.Command {
	var (
		cmd      service.CreateUserCommand
		role     string
		doctorID uint
	)
	c := &cobra.Command{
		Use:   "create-user",
		Short: "Register an operator account",
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			cmd.Role = domain.Role(role)
			if c.Flags().Changed("doctor-id") {
				cmd.DoctorID = &doctorID
			}
			u, err := a.authService().CreateUser(c.Context(), &cmd)
			if err != nil {
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					for _, f := range verr.Fields {
						fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Field, f.Message)
					}
				}
				return err
			}
			a.log.Info("user created", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
			return nil
		},
	}
	f := c.Flags()
	f.StringVar(&cmd.Email, "email", "", "sign-in email")
	f.StringVar(&cmd.Password, "password", "", "initial password")
	f.StringVar(&cmd.FirstName, "first-name", "", "first name")
	f.StringVar(&cmd.LastName, "last-name", "", "last name")
	f.StringVar(&role, "role", string(domain.RoleAdmin), "admin, doctor, receptionist or pharmacist")
	f.UintVar(&doctorID, "doctor-id", 0, "linked doctor, required for the doctor role")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}

func runServer(parent context.Context, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	tp, err := tracer.Init(ctx, a.cfg.Tracing, a.cfg.App.Version)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			a.log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	if migrate {
		if err := database.Migrate(a.db, a.log); err != nil {
			return err
		}
	}

	deps, shutdown := a.serverDeps()
	defer shutdown()

	srv, err := server.New(a.cfg, deps, a.log)
	if err != nil {
		return err
	}

	a.log.Info("starting saludvital",
		zap.String("env", a.cfg.App.Environment),
		zap.String("version", a.cfg.App.Version),
		zap.String("timezone", a.cfg.App.Location().String()),
		zap.Bool("auth_enabled", a.cfg.Auth.Enabled),
	)
	return srv.Run(ctx)
}
