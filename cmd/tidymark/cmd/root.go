package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nikbrunner/tidymark/internal/bookmarks"
	"github.com/nikbrunner/tidymark/internal/config"
	"github.com/nikbrunner/tidymark/internal/model"
	"github.com/nikbrunner/tidymark/internal/organizer"
	"github.com/nikbrunner/tidymark/internal/storage"
)

var version = "dev"

var (
	configPath string
	verbose    bool

	settings config.Settings
	logger   = zap.NewNop()
	backend  storage.Storage
	store    *model.Store
	tree     *bookmarks.MemoryTree
	service  *organizer.Service
)

var rootCmd = &cobra.Command{
	Use:   "tidymark",
	Short: "Classify and reorganize bookmarks",
	Long: `tidymark sorts bookmarks into category folders.

Bookmarks are classified by keyword rules, optionally refined by an AI
provider, or grouped into categories the AI invents. Every change is
previewed as a plan first; nothing moves until the plan is applied.

Bookmarks live in ~/.config/tidymark/bookmarks.json (or a SQLite database,
see storagePath in the config file). Use import/export to exchange them
with a browser.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if c, ok := backend.(io.Closer); ok {
			_ = c.Close()
		}
		_ = logger.Sync()
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $TIDYMARK_CONFIG or ~/.config/tidymark/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}

func setup() error {
	l, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = l
	zap.ReplaceGlobals(logger)

	path := configPath
	if path == "" {
		path = config.Path()
	}
	if err := config.SaveExample(path); err != nil {
		logger.Debug("could not write example config", zap.String("path", path), zap.Error(err))
	}

	settings, err = config.Load(path)
	if err != nil {
		return err
	}

	backend, err = storage.Open(settings.StoragePath)
	if err != nil {
		return fmt.Errorf("open bookmark storage: %w", err)
	}
	store, err = backend.Load()
	if err != nil {
		return fmt.Errorf("load bookmarks: %w", err)
	}

	tree = bookmarks.NewMemoryTree(store)
	service = organizer.NewService(tree, organizer.WithLogger(logger))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// save persists the store after a mutation.
func save(context.Context) error {
	if backend == nil {
		return errors.New("storage not initialized")
	}
	if err := backend.Save(store); err != nil {
		return fmt.Errorf("save bookmarks: %w", err)
	}
	return nil
}
