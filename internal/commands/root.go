package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jujutime/juju/internal/registry"
	"github.com/jujutime/juju/internal/repository"
	"github.com/jujutime/juju/internal/storage"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var dataDirFlag string

var rootCmd = &cobra.Command{
	Use:   "juju",
	Short: "A personal time tracker with plain-file storage",
	Long: `juju records work sessions as human-readable, year-partitioned CSV files.
Sessions, projects and activity types are managed from the terminal; the data
stays in flat files you can read, diff and back up.`,
}

// dataDir resolves the data directory: --data-dir flag, then JUJU_DATA_DIR,
// then ~/.juju.
func dataDir() (string, error) {
	if dataDirFlag != "" {
		return dataDirFlag, nil
	}
	if env := os.Getenv("JUJU_DATA_DIR"); env != "" {
		return env, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".juju"), nil
}

// env bundles the wired-up storage stack for one command invocation.
type env struct {
	files    *storage.FileAccess
	store    *storage.CSVStore
	registry *registry.Service
	repo     *repository.Repository
	logger   *slog.Logger
	close    func()
}

// buildEnv wires the storage engine: file access layer, CSV store, project
// registry and session repository.
func buildEnv() (*env, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}

	files := storage.NewFileAccess()
	if err := files.EnsureDir(dir); err != nil {
		return nil, err
	}

	db, err := registry.Open(dir)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store := storage.NewCSVStore(files, dir)
	svc := registry.NewService(db)

	return &env{
		files:    files,
		store:    store,
		registry: svc,
		repo:     repository.New(store, svc, logger),
		logger:   logger,
		close:    func() { _ = registry.Close(db) },
	}, nil
}

// withEnv wraps a command function to wire the storage stack first.
func withEnv(fn func(*env, *cobra.Command, []string)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		e, err := buildEnv()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		defer e.close()
		fn(e, cmd, args)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("juju %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Override the data directory (default ~/.juju)")

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(versionCmd)
}
