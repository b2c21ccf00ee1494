package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gorm.io/gorm"

	"library-api/internal/core/config"
	"library-api/internal/core/database"
	"library-api/internal/core/logger"
	"library-api/internal/domain"
	"library-api/internal/repo"
	"library-api/internal/seed"
	"library-api/internal/service"
)

type app struct {
	cfgPath string
	log     *zap.Logger
	cleanup func()
	db      *gorm.DB
}

func main() {
	_ = godotenv.Load()
	a := &app{}
	root := &cobra.Command{
		Use:               "library-admin",
		Short:             "Maintenance tasks for the library API database",
		SilenceUsage:      true,
		PersistentPreRunE: a.open,
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", os.Getenv("CONFIG_PATH"), "path to the YAML config")
	root.AddCommand(a.migrateCmd(), a.seedCmd(), a.createLibrarianCmd())

	if err := root.Execute(); err != nil {
		a.close()
		os.Exit(1)
	}
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.log, a.cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)
	a.db, err = database.NewGorm(database.Opts{
		Driver:       cfg.DB.Driver,
		DSN:          cfg.DB.DSN,
		Username:     cfg.DB.Username,
		Password:     cfg.DB.Password,
		MaxOpenConns: 2,
		LogLevel:     cfg.DB.LogLevel,
		Log:          logger.ToStdLogger(a.log.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if cmd.Name() != "migrate" {
		// every task needs the schema, so make sure it exists
		return database.Migrate(a.db)
	}
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = database.Close(a.db)
		a.db = nil
	}
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users, books and checkouts tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := database.Migrate(a.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			a.log.Info("migration done")
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default librarian and student accounts and sample books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := seed.Run(cmd.Context(), a.db, reset)
			if err != nil {
				return err
			}
			a.log.Info("seed done", zap.Bool("reset", reset), zap.Int("users", res.Users), zap.Int("books", res.Books))
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete all checkouts, books and users first")
	return cmd
}

func (a *app) createLibrarianCmd() *cobra.Command {
	var in service.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create-librarian",
		Short: "Create a librarian account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				pw, err := readPassword(fmt.Sprintf("Password for %s: ", in.Email))
				if err != nil {
					return err
				}
				in.Password = pw
			}
			if len(in.Password) < 6 {
				return errors.New("password must be at least 6 characters long")
			}
			in.Role = domain.RoleLibrarian
			u, err := service.NewUserService(repo.NewStore(a.db)).Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.log.Info("librarian created", zap.String("id", u.ID), zap.String("email", u.Email))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "login email")
	f.StringVar(&in.FirstName, "first-name", "", "first name")
	f.StringVar(&in.LastName, "last-name", "", "last name")
	f.StringVar(&in.Password, "password", "", "password; prompted for when omitted")
	for _, name := range []string{"email", "first-name", "last-name"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal to prompt on; pass --password")
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
