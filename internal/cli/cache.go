package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heightcompare/pkg/cache"
	"github.com/matzehuels/heightcompare/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the catalog and chart cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached response and chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if b := c.Config.Cache.Backend; b != config.StoreFile {
				printInfo("Cache backend is %s; nothing to clear on disk", b)
				return nil
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			defer fc.Close()
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
