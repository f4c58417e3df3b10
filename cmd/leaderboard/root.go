package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/leaderboard/internal/config"
	"github.com/jask/leaderboard/internal/database"
	"github.com/jask/leaderboard/internal/database/repository"
	"github.com/jask/leaderboard/internal/leaderboard"
	"github.com/jask/leaderboard/internal/prefs"
	"github.com/jask/leaderboard/internal/tui"
)

// cli carries state shared by every subcommand for one invocation.
type cli struct {
	configPath string
	dbPath     string
	verbose    bool
	ephemeral  bool

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "leaderboard",
		Short: "Editable AI leaderboard",
		Long: `leaderboard keeps a dated table of AI categories with the leading tool,
the runner-up and notes for each. Run without arguments for the interactive editor.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInteractive(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $HOME/.config/leaderboard/config.toml)")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "database path (overrides database.path)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&c.ephemeral, "ephemeral", false, "keep everything in memory for this run")

	root.AddCommand(
		c.listCmd(),
		c.addCmd(),
		c.setCmd(),
		c.deleteCmd(),
		c.toolsCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.configCmd(),
		c.statusCmd(),
		c.resetCmd(),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.dbPath != "" {
		cfg.Database.Path = c.dbPath
	}
	c.cfg = cfg

	logger, err := newLogger(cfg.Log, c.verbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	c.logger = logger
	return nil
}

// openStore loads the store from the configured database. The returned func
// closes both the store and the database.
func (c *cli) openStore(ctx context.Context) (*leaderboard.Store, func(), error) {
	if c.ephemeral {
		s, err := leaderboard.Open(ctx, leaderboard.NewMemoryKV(), leaderboard.WithLogger(c.logger))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}

	db, err := c.openDB()
	if err != nil {
		return nil, nil, err
	}

	s, err := leaderboard.Open(ctx, repository.NewKVRepo(db), leaderboard.WithLogger(c.logger))
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return s, func() {
		_ = s.Close()
		_ = db.Close()
	}, nil
}

// openDB opens the configured sqlite database, applying migrations first.
func (c *cli) openDB() (*sql.DB, error) {
	if c.ephemeral {
		return nil, errors.New("no database in --ephemeral mode")
	}
	path := c.cfg.Database.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.OpenMigrated(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	version, dirty, err := database.SchemaVersion(path)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema version: %w", err)
	}
	c.logger.Debug("database ready",
		zap.String("path", path),
		zap.Uint("schema_version", version),
		zap.Bool("dirty", dirty))
	return db, nil
}

func (c *cli) location() *time.Location {
	loc, err := time.LoadLocation(c.cfg.UI.Timezone)
	if err != nil {
		c.logger.Warn("using UTC due to timezone load failure", zap.String("timezone", c.cfg.UI.Timezone), zap.Error(err))
		return time.UTC
	}
	return loc
}

func (c *cli) runInteractive(ctx context.Context) error {
	store, closeStore, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := tui.Options{
		Logger:   c.logger.Named("tui"),
		Location: c.location(),
		SaveView: prefs.SaveView,
	}
	if v, ok, err := prefs.LoadView(); err != nil {
		c.logger.Warn("ignoring unreadable view prefs", zap.Error(err))
	} else if ok {
		opts.View = &v
	}

	p := tea.NewProgram(tui.New(ctx, c.cfg, store, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
