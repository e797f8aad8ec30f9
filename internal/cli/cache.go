package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rshade/co2focus/internal/cache"
	"github.com/rshade/co2focus/internal/config"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Dataset cache commands"}
	cmd.AddCommand(NewCacheStatusCmd(), NewCacheClearCmd())
	return cmd
}

// NewCacheStatusCmd creates the "cache status" command.
func NewCacheStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the dataset cache location and entry count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache()
			if err != nil {
				return err
			}
			if !store.IsEnabled() {
				cmd.Println("Cache: disabled")
				return nil
			}
			n, err := store.Count()
			if err != nil {
				return err
			}
			cmd.Printf("Cache: %s\n", store.Directory())
			cmd.Printf("TTL: %s\n", cache.FormatDuration(store.TTL()))
			cmd.Printf("Entries: %d\n", n)
			return nil
		},
	}
}

// NewCacheClearCmd creates the "cache clear" command.
func NewCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached dataset snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache()
			if err != nil {
				return err
			}
			n, err := store.Count()
			if errors.Is(err, cache.ErrCacheDisabled) {
				cmd.Println("Cache: disabled, nothing to clear")
				return nil
			}
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			logger.Debug().Ctx(cmd.Context()).Int("entries", n).Msg("dataset cache cleared")
			cmd.Printf("Removed %d cache entries from %s\n", n, store.Directory())
			return nil
		},
	}
}

func openCache() (*cache.FileStore, error) {
	cfg := config.GetGlobalConfig()
	return cache.NewFileStore(cfg.Cache.Directory, cfg.Cache.Enabled, cfg.Cache.TTLSeconds)
}
