package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear persisted like state and preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		defer a.close()

		a.store.Clear()
		a.manager.ClearCheckedCache()
		if a.cache != nil {
			if err := a.cache.Clear(); err != nil {
				return err
			}
		}

		color.Green("✓ Local cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
