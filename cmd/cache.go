package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	errUtils "github.com/codewarden/warden/errors"
	"github.com/codewarden/warden/pkg/cache"
)

var cacheFlags struct {
	path string
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the analysis result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show cache size and location",
	Example: "  warden cache stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveCachePath()
		if err != nil {
			return err
		}
		c, err := cache.Load(path)
		if err != nil {
			return err
		}
		stats := c.Statistics()
		fmt.Printf("path:        %s\n", path)
		fmt.Printf("entries:     %d\n", stats.Entries)
		fmt.Printf("hits:        %d\n", stats.Hits)
		fmt.Printf("misses:      %d\n", stats.Misses)
		fmt.Printf("hit rate:    %.1f%%\n", stats.HitRate*100)
		if fp := c.Fingerprint(); fp != "" {
			fmt.Printf("fingerprint: %s\n", fp)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Delete the cache file",
	Example: "  warden cache clear",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveCachePath()
		if err != nil {
			return err
		}
		// Remove the file directly so even an unreadable or
		// future-versioned cache can be reset.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errUtils.Build(errUtils.ErrCache).
				WithCause(err).
				WithContext("path", path).
				Err()
		}
		fmt.Println("cache cleared")
		return nil
	},
}

var cacheCleanupCmd = &cobra.Command{
	Use:     "cleanup",
	Short:   "Drop cache entries for files that no longer exist",
	Example: "  warden cache cleanup",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveCachePath()
		if err != nil {
			return err
		}
		c, err := cache.Load(path)
		if err != nil {
			return err
		}
		removed := c.Cleanup()
		if err := c.Save(path); err != nil {
			return err
		}
		fmt.Printf("removed %d stale entries, %d remain\n", removed, c.Len())
		return nil
	},
}

func resolveCachePath() (string, error) {
	if cacheFlags.path != "" {
		return cacheFlags.path, nil
	}
	return cache.DefaultPath()
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheFlags.path, "cache-path", "", "Override the cache file location")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	RootCmd.AddCommand(cacheCmd)
}
