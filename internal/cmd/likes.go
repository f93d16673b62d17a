package cmd

import (
	"fmt"

	"github.com/clipstream/clipstream-go/pkg/api"
	clierrors "github.com/clipstream/clipstream-go/pkg/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var likesCmd = &cobra.Command{
	Use:   "likes",
	Short: "Like, unlike and inspect posts",
}

var likesToggleCmd = &cobra.Command{
	Use:   "toggle <post-id>",
	Short: "Toggle your like on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		status, err := a.manager.ToggleLike(args[0])
		if err != nil {
			return err
		}

		if status.IsLiked {
			color.Red("♥ Liked (%d likes)", status.LikeCount)
		} else {
			fmt.Printf("♡ Unliked (%d likes)\n", status.LikeCount)
		}
		return nil
	},
}

var likesStatusCmd = &cobra.Command{
	Use:   "status <post-id>",
	Short: "Show the server like status for a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := api.GetLikeStatus(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("post:  %s\nliked: %v\nlikes: %d\n", args[0], status.IsLiked, status.LikeCount)
		return nil
	},
}

var (
	reportReason      string
	reportDescription string
)

var likesReportCmd = &cobra.Command{
	Use:   "report <post-id>",
	Short: "Report a post for moderation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := api.ReportPost(args[0], reportReason, reportDescription)
		if clierrors.IsAlreadyDone(err) {
			fmt.Println("You have already reported this post.")
			return nil
		}
		if err != nil {
			return err
		}

		color.Green("✓ Report submitted")
		return nil
	},
}

func init() {
	likesReportCmd.Flags().StringVar(&reportReason, "reason", "other", "report reason")
	likesReportCmd.Flags().StringVar(&reportDescription, "description", "", "additional details")

	likesCmd.AddCommand(likesToggleCmd)
	likesCmd.AddCommand(likesStatusCmd)
	likesCmd.AddCommand(likesReportCmd)
	rootCmd.AddCommand(likesCmd)
}
