package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/jask/fintree/internal/config"
	"github.com/jask/fintree/internal/database"
	"github.com/jask/fintree/internal/logging"
	"github.com/jask/fintree/internal/prefs"
	"github.com/jask/fintree/internal/service"
	"github.com/jask/fintree/internal/session"
	"github.com/jask/fintree/internal/tui"
)

// globalFlags override config for one invocation.
type globalFlags struct {
	dbPath    string
	prefsPath string
	user      string
}

// env is everything a command needs, opened once per invocation.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	svc      *service.Services
	store    *prefs.Store
	sessions session.Provider
	closers  []func()
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func (e *env) userID(ctx context.Context) (string, error) {
	s, err := e.sessions.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("session: %w", err)
	}
	return s.UserID, nil
}

func openEnv(g *globalFlags) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if g.dbPath != "" {
		cfg.Database.Path = g.dbPath
	}

	e := &env{cfg: cfg}
	logger, closeLog, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	e.logger = logger.With("component", logging.CompCLI)
	e.closers = append(e.closers, closeLog)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		e.Close()
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.OpenAndMigrate(cfg.Database.Path)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.db = db
	e.closers = append(e.closers, func() { _ = db.Close() })
	e.svc = service.New(db, logger)

	path := g.prefsPath
	if path == "" {
		if path, err = prefs.DefaultPath(); err != nil {
			e.Close()
			return nil, err
		}
	}
	e.store = prefs.NewStore(path)
	if g.user != "" {
		e.sessions = session.Static(g.user)
	} else {
		e.sessions = session.NewLocalProvider(e.store)
	}
	return e, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "fintree",
		Short:         "Personal finance hierarchies in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, g)
		},
	}
	root.PersistentFlags().StringVar(&g.dbPath, "db", "", "database file (overrides database.path)")
	root.PersistentFlags().StringVar(&g.prefsPath, "prefs", "", "preferences file")
	root.PersistentFlags().StringVar(&g.user, "user", "", "act as this user id instead of the local one")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Run the terminal UI",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTUI(cmd, g)
			},
		},
		newTreeCmd(g),
		newReparentCmd(g),
		newImportCmd(g),
		newMigrateCmd(g),
		newResetCmd(g),
		newDemoCmd(g),
	)
	return root
}

func runTUI(cmd *cobra.Command, g *globalFlags) error {
	e, err := openEnv(g)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	user, err := e.userID(ctx)
	if err != nil {
		return err
	}
	if err := database.SeedDefaults(ctx, e.db, user); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}

	zone.NewGlobal()
	app := tui.New(ctx, e.cfg, e.svc, e.sessions, e.store, e.logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
