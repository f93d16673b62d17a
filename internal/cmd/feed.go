package cmd

import (
	"time"

	"github.com/clipstream/clipstream-go/pkg/config"
	"github.com/clipstream/clipstream-go/pkg/realtime"
	"github.com/clipstream/clipstream-go/pkg/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	feedPages    int
	feedPageSize int
	useSimulator bool
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Browse and watch the feed",
}

var feedBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Fetch feed pages and show like state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		fs := service.NewFeedService(a.store, a.manager, a.coordinator)
		return fs.Browse(cmd.Context(), feedPages, feedPageSize)
	},
}

var feedWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Browse the feed, then stream realtime like updates",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		fs := service.NewFeedService(a.store, a.manager, a.coordinator)

		if useSimulator {
			postIDs := a.store.LikedPostIDs()
			for len(postIDs) < 3 {
				postIDs = append(postIDs, uuid.NewString())
			}

			sim := realtime.NewSimulator()
			sim.Run(postIDs, 2*time.Second)
			defer sim.Stop()
			return fs.Watch(cmd.Context(), sim)
		}

		ws := realtime.NewClient(realtime.Config{
			Host:                 config.GetString("realtime.host"),
			Port:                 config.GetInt("realtime.port"),
			Path:                 config.GetString("realtime.path"),
			HeartbeatIntervalMs:  30000,
			ReconnectBaseDelayMs: 2000,
			ReconnectMaxDelayMs:  30000,
			MaxReconnectAttempts: -1,
		})
		if err := ws.Connect(config.GetString("api.token")); err != nil {
			return err
		}
		defer ws.Disconnect()

		return fs.Watch(cmd.Context(), ws)
	},
}

func init() {
	feedBrowseCmd.Flags().IntVar(&feedPages, "pages", 1, "number of feed pages to fetch")
	feedBrowseCmd.Flags().IntVar(&feedPageSize, "page-size", 20, "posts per page")
	feedWatchCmd.Flags().BoolVar(&useSimulator, "simulate", false, "use the in-process realtime simulator")

	feedCmd.AddCommand(feedBrowseCmd)
	feedCmd.AddCommand(feedWatchCmd)
	rootCmd.AddCommand(feedCmd)
}
