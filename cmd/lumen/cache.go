package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lumen/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the snapshot disk cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspaceConfig(cmd)
		if err != nil {
			return err
		}
		cache, err := driver.OpenDiskCache(ws.cfg.CachePath())
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("cleaning %s: %w", cache.Dir(), err)
		}
		if !quiet(cmd) {
			fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", cache.Dir())
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
}
