// ABOUTME: Root Cobra command for habito CLI.
// ABOUTME: Opens config, store, cache and session in PersistentPreRunE and flushes writes after.
package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/habito/internal/cache"
	"github.com/harperreed/habito/internal/config"
	"github.com/harperreed/habito/internal/logging"
	"github.com/harperreed/habito/internal/session"
	"github.com/harperreed/habito/internal/storage"
	"github.com/harperreed/habito/internal/suggest"
	habitosync "github.com/harperreed/habito/internal/sync"
	"github.com/harperreed/habito/internal/workouts"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg        *config.Config
	logger     *zap.Logger
	repo       storage.Repository
	localCache *cache.Cache
	sess       *session.Session
	workoutSvc *workouts.Service

	dataDirFlag  string
	backendFlag  string
	logLevelFlag string
)

// Commands that run without a session.
var sessionless = map[string]bool{
	"help":          true,
	"version":       true,
	"completion":    true,
	"programs":      true,
	"link":          true,
	"install-skill": true,
}

var rootCmd = &cobra.Command{
	Use:   "habito",
	Short: "Habit and workout tracker",
	Long: `Habito tracks daily habits and a rotating workout program.

Each habit has a weekly schedule and a difficulty that sets the XP earned per
completion. Marking a habit done extends its streak; the XP ledger levels you
up every 100 XP.

QUICK START:

  $ habito add "Ler 10 páginas" --category saber --days seg,qua,sex
  $ habito today                  # What is due today
  $ habito done 3f2a              # Mark it done (ID prefix)
  $ habito week                   # Monday-start week summary
  $ habito stats                  # XP, level, streaks, balance

WORKOUTS:

  $ habito workout programs       # Built-in programs
  $ habito workout select prog-casa-ini
  $ habito workout next           # Next workout in the rotation
  $ habito workout finish --minutes 35

STORAGE:

  Activities live in the configured backend: sqlite (default), postgres or
  charm. Edits are applied locally first and written in the background;
  failed writes are kept and can be re-sent with 'habito sync push'.

CONFIGURATION:

  ~/.config/habito/config.json, overridable with HABITO_* environment
  variables (HABITO_BACKEND, HABITO_DATA_DIR, HABITO_POSTGRES_URL, ...).

MCP INTEGRATION:

  Run 'habito mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "habito": { "command": "habito", "args": ["mcp"] }
    }
  }`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if sessionless[cmd.Name()] {
			return nil
		}
		if err := openSession(cmd.Context()); err != nil {
			_ = closeSession()
			return err
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeSession()
	},
}

// loadConfig reads the config file and applies the global flags.
func loadConfig() (*config.Config, error) {
	c, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dataDirFlag != "" {
		c.DataDir = dataDirFlag
	}
	if backendFlag != "" {
		c.Backend = backendFlag
	}
	if logLevelFlag != "" {
		c.LogLevel = logLevelFlag
	}
	return c, nil
}

func openSession(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	cfg, err = loadConfig()
	if err != nil {
		return err
	}

	logger, err = logging.New(cfg.GetLogLevel())
	if err != nil {
		return err
	}

	userID, err := cfg.EnsureUserID()
	if err != nil {
		return fmt.Errorf("failed to resolve user id: %w", err)
	}

	repo, err = cfg.OpenStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	localCache, err = cache.OpenOrMemory(cache.DefaultDir(cfg.GetDataDir()), logger)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	sess, err = session.Login(ctx, userID, session.Options{
		Repo:    repo,
		Resets:  localCache,
		Tracker: habitosync.NewTracker(localCache, logger),
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to load activities: %w", err)
	}

	workoutSvc = workouts.NewService(nil, localCache)
	logger.Debug("session opened",
		zap.String("backend", cfg.GetBackend()),
		zap.String("user", userID),
		zap.Bool("new_day", sess.NewDay()))
	return nil
}

// execute runs the root command. PersistentPostRunE is skipped when a command
// fails, so the session is closed here as well.
func execute() error {
	err := rootCmd.Execute()
	if cerr := closeSession(); err == nil {
		err = cerr
	}
	return err
}

// closeSession waits for background writes, reports failures and releases
// the store and cache.
func closeSession() error {
	if sess != nil {
		sess.Flush()
		reportFailedWrites(sess.Tracker())
		sess.Logout()
		sess = nil
	}
	var firstErr error
	if repo != nil {
		if err := repo.Close(); err != nil {
			firstErr = err
		}
		repo = nil
	}
	if localCache != nil {
		if err := localCache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		localCache = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
	return firstErr
}

func reportFailedWrites(t *habitosync.Tracker) {
	records, err := t.Records()
	if err != nil {
		return
	}
	failed := 0
	for _, r := range records {
		if r.Status == habitosync.StatusFailed {
			failed++
		}
	}
	if failed > 0 {
		color.Yellow("⚠ %d change(s) not saved to the %s store; run 'habito sync push' to retry", failed, cfg.GetBackend())
	}
}

// newSuggester returns the OpenAI suggester when a key is configured.
func newSuggester() suggest.Suggester {
	if cfg == nil || cfg.GetOpenAIKey() == "" {
		return suggest.Static{}
	}
	return suggest.NewOpenAI(cfg.GetOpenAIKey(), cfg.GetOpenAIModel(), cfg.GetOpenAIBaseURL(), cfg.GetOpenAITimeout(), logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default ~/.local/share/habito)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: sqlite, postgres or charm")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
}
