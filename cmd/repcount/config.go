package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/ayusman/repcount/internal/app"
	"github.com/ayusman/repcount/internal/plugin"
	"github.com/ayusman/repcount/internal/store"
	"github.com/ayusman/repcount/internal/tracker"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Usage:   "SQLite database path (empty disables persistence)",
			Value:   defaultDBPath(),
			EnvVars: []string{"REPCOUNT_DB"},
		},
		&cli.StringFlag{
			Name:    "policy",
			Usage:   "how detections map to people: positional or tracked",
			Value:   string(tracker.PolicyPositional),
			EnvVars: []string{"REPCOUNT_POLICY"},
		},
		&cli.IntFlag{
			Name:    "grace",
			Usage:   "frames a tracked person may be missing before their counts are dropped",
			Value:   tracker.DefaultConfig().GracePeriod,
			EnvVars: []string{"REPCOUNT_GRACE"},
		},
		&cli.Float64Flag{
			Name:    "motion",
			Usage:   "percent of changed pixels that wakes the camera pipeline (negative disables)",
			Value:   app.DefaultMotionThreshold,
			EnvVars: []string{"REPCOUNT_MOTION"},
		},
		&cli.StringFlag{
			Name:    "plugins",
			Usage:   "directory of repetition plugins (empty disables plugins)",
			Value:   defaultPluginDir(),
			EnvVars: []string{"REPCOUNT_PLUGINS"},
		},
	}
}

func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".repcount", "repcount.db")
}

func defaultPluginDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".repcount", "plugins")
}

// startPlugins discovers the plugins named by --plugins and subscribes them
// to the app's events. The returned dispatcher must be closed after a.Stop.
func startPlugins(c *cli.Context, a *app.App) *plugin.Dispatcher {
	manager := plugin.NewManager(c.String("plugins"))
	if err := manager.Discover(); err != nil {
		log.Printf("Failed to discover plugins: %v", err)
	}
	for _, p := range manager.List() {
		log.Printf("Loaded plugin %s %s", p.Manifest.Name, p.Manifest.Version)
	}

	d := plugin.NewDispatcher(manager, plugin.NewExecutor(plugin.DefaultTimeout), func() string {
		if sess := a.Session(); sess != nil {
			return sess.ID
		}
		return ""
	})
	a.OnEvents(d.Handle)
	return d
}

// openStore opens the database named by --db. An empty path returns a nil store.
func openStore(c *cli.Context) (*store.Store, error) {
	path := c.String("db")
	if path == "" {
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	return st, nil
}

// appConfig builds the application configuration from the common flags.
func appConfig(c *cli.Context, st *store.Store) (app.Config, error) {
	policy, err := tracker.ParsePolicy(c.String("policy"))
	if err != nil {
		return app.Config{}, err
	}

	registry := tracker.DefaultConfig()
	registry.Policy = policy
	registry.GracePeriod = c.Int("grace")

	return app.Config{
		Store:        st,
		MotionThresh: c.Float64("motion"),
		Registry:     registry,
	}, nil
}
