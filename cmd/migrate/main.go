package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ogurasousui/talent-guard/internal/platform/config"
	"github.com/spf13/cobra"
)

// migrator は golang-migrate のうち CLI が利用する操作です。
type migrator interface {
	Up() error
	Down() error
	Drop() error
	Version() (uint, bool, error)
}

var (
	configPath    string
	migrationsDir string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply talent-guard database migrations",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "assets/migrations", "directory containing migration files")

	rootCmd.AddCommand(
		actionCmd("up", "Apply all pending migrations"),
		actionCmd("down", "Revert all applied migrations"),
		actionCmd("drop", "Drop everything in the database"),
		actionCmd("version", "Print the current migration version"),
	)
	return rootCmd
}

func actionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(effectiveConfigPath(configPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			m, err := newMigrator(migrationsDir, cfg.Database.DSN())
			if err != nil {
				return err
			}
			defer m.Close()

			msg, err := runMigration(m, action)
			if err != nil {
				return fmt.Errorf("migration %s: %w", action, err)
			}
			cmd.Println(msg)
			return nil
		},
	}
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

func newMigrator(dir, dsn string) (*migrate.Migrate, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// runMigration は action を実行し、表示用のメッセージを返します。
func runMigration(m migrator, action string) (string, error) {
	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return "", err
		}
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return "", err
		}
	case "drop":
		if err := m.Drop(); err != nil {
			return "", err
		}
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				return "no migration applied", nil
			}
			return "", err
		}
		return fmt.Sprintf("version=%d dirty=%t", version, dirty), nil
	default:
		return "", fmt.Errorf("unsupported action %q", action)
	}
	return fmt.Sprintf("migration %s completed", action), nil
}
