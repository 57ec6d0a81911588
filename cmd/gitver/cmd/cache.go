package cmd

import (
	"github.com/jmgilman/gitver/cache"
	"github.com/jmgilman/gitver/internal/logger"
	"github.com/spf13/cobra"
)

func newCacheCommand(a *app) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the version cache.",
		Args:  cobra.NoArgs,
	}

	var all bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached versions.",
		Long: `Remove the cache entry of the repository given with -g, or every entry
in the cache directory with --all.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := cache.New(a.cfg.CacheDir)

			if all {
				removed, err := store.ClearAll()
				if err != nil {
					return err
				}
				logger.InfoKV(cmd.Context(), "cache cleared", "dir", store.Dir(), "removed", removed)
				return nil
			}

			if err := a.cfg.RequireGitDir(); err != nil {
				return err
			}
			if err := store.Clear(a.cfg.GitDir); err != nil {
				return err
			}
			logger.InfoKV(cmd.Context(), "cache entry removed", "path", store.Path(a.cfg.GitDir))
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&all, "all", false, "remove every entry in the cache directory")

	cacheCmd.AddCommand(clearCmd)
	return cacheCmd
}
