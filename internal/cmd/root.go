package cmd

import (
	"fmt"
	"os"

	"github.com/clipstream/clipstream-go/pkg/cache"
	"github.com/clipstream/clipstream-go/pkg/client"
	"github.com/clipstream/clipstream-go/pkg/config"
	"github.com/clipstream/clipstream-go/pkg/likes"
	"github.com/clipstream/clipstream-go/pkg/logger"
	"github.com/clipstream/clipstream-go/pkg/playback"
	"github.com/clipstream/clipstream-go/pkg/store"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "clipstream",
	Short: "Clipstream - short-video social client",
	Long: `Clipstream is the client core of the Clipstream short-video
social platform: browse the feed, like posts with instant optimistic
feedback, and watch realtime like activity from the terminal.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.Init(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
			os.Exit(1)
		}

		logger.Init(verbose)

		if token := config.GetString("api.token"); token != "" {
			client.SetAuthToken(token)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

// app bundles the composition root shared by the feed and likes commands
type app struct {
	store       *store.Store
	cache       *cache.Cache
	manager     *likes.Manager
	coordinator *playback.Coordinator
}

// newApp constructs the shared services. The cache is optional: a failure
// to open it degrades to an in-memory session with a warning.
func newApp() *app {
	st := store.NewStore()

	var c *cache.Cache
	var err error
	if path := config.GetCachePath(); path != "" {
		c, err = cache.Open(path)
		if err != nil {
			logger.Warn("Local cache unavailable, continuing without persistence", "error", err)
			c = nil
		}
	}

	manager := likes.NewManager(likes.NewRestAPI(), st, c, likes.Options{
		FlushInterval: millis(config.GetInt("likes.flush_interval_ms")),
		BatchLimit:    config.GetInt("likes.batch_limit"),
	})
	manager.Start()

	coordinator := playback.NewCoordinator()
	if c != nil {
		prefs := c.Preferences()
		coordinator.SetMuted(prefs.Muted)
		coordinator.OnMuteChange(func(muted bool) {
			prefs.Muted = muted
			if err := c.SavePreferences(prefs); err != nil {
				logger.Warn("Failed to persist mute preference", "error", err)
			}
		})
	}

	return &app{
		store:       st,
		cache:       c,
		manager:     manager,
		coordinator: coordinator,
	}
}

func (a *app) close() {
	a.manager.Close()
	a.coordinator.Release()
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Warn("Failed to close cache", "error", err)
		}
	}
}
