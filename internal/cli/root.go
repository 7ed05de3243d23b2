package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devconnect/devconnect-go/internal/api"
	"github.com/devconnect/devconnect-go/internal/config"
	"github.com/devconnect/devconnect-go/internal/domain"
	"github.com/devconnect/devconnect-go/internal/session"
	"github.com/devconnect/devconnect-go/internal/sqlite"
)

// app holds the wired-up dependencies shared by all commands. Everything is
// constructed in initApp and injected into the view-models from there; no
// package carries ambient auth state.
var app struct {
	cfg      *config.Config
	logger   *slog.Logger
	sessions *session.Store
	client   *api.Client
}

// Cached following-feed snapshots older than cacheMaxAge are dropped, and
// the cache never keeps more than cacheMaxRows posts.
const (
	cacheMaxAge  = 24 * time.Hour
	cacheMaxRows = 500
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "devconnect",
	Short:         "Terminal client for the DevConnect social network",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the command tree.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func initApp() error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app.cfg = cfg

	app.sessions = session.NewStore(cfg.DataDir)
	if err := app.sessions.Load(); err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	app.client = api.NewClient(cfg.APIBase, cfg.HTTPTimeout)
	app.client.SetToken(app.sessions.Token())
	return nil
}

// requireAuth returns the session user or an actionable error.
func requireAuth() (*domain.User, error) {
	user := app.sessions.Current()
	if user == nil {
		return nil, fmt.Errorf("not logged in, run 'devconnect login' first")
	}
	if app.sessions.Expired() {
		return nil, fmt.Errorf("session expired, run 'devconnect login' again")
	}
	return user, nil
}

// newFeed builds a feed view-model, with the local post cache attached when
// withCache is set. The returned cleanup must be called when done.
func newFeed(withCache bool) (*domain.Feed, func(), error) {
	var cache domain.PostCache
	cleanup := func() {}

	if withCache {
		c, err := sqlite.Open(app.cfg.CachePath())
		if err != nil {
			// degraded but usable: the feed works without offline fallback
			app.logger.Warn("failed to open post cache", "error", err)
		} else {
			cache = c
			cleanup = func() {
				if _, err := c.Prune(context.Background(), cacheMaxAge, cacheMaxRows); err != nil {
					app.logger.Warn("failed to prune post cache", "error", err)
				}
				c.Close()
			}
		}
	}

	return domain.NewFeed(app.client, cache, app.sessions, app.logger), cleanup, nil
}
