package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/co2focus/internal/cache"
	"github.com/rshade/co2focus/internal/chart"
	"github.com/rshade/co2focus/internal/config"
	"github.com/rshade/co2focus/internal/dashboard"
	"github.com/rshade/co2focus/internal/logging"
)

// loadState loads the dataset and model named by the configuration, with the
// persistent --data, --model and --no-cache flags taking precedence.
func loadState(cmd *cobra.Command) (*dashboard.AppState, error) {
	cfg := config.GetGlobalConfig()
	ctx := cmd.Context()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	csvPath := cfg.Data.CSVPath
	if v, _ := cmd.Flags().GetString("data"); v != "" {
		csvPath = v
	}
	modelPath := cfg.Data.ModelPath
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		modelPath = v
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")

	var store *cache.FileStore
	if cfg.Cache.Enabled && !noCache {
		s, err := cache.NewFileStore(cfg.Cache.Directory, true, cfg.Cache.TTLSeconds)
		if err != nil {
			// A broken cache setting should not block the command.
			logging.FromContext(ctx).Warn().Ctx(ctx).Err(err).Msg("dataset cache disabled")
		} else {
			store = s
		}
	}

	return dashboard.NewAppState(ctx, dashboard.Options{
		CSVPath:     csvPath,
		ModelPath:   modelPath,
		Cache:       store,
		FromYear:    cfg.Projection.FromYear,
		DefaultYear: cfg.Projection.DefaultYear,
		MinYear:     cfg.Projection.MinYear,
		MaxYear:     cfg.Projection.MaxYear,
	})
}

// resolveFormat returns the --output value, or the configured default when empty.
func resolveFormat(output string) (chart.Format, error) {
	if output == "" {
		output = config.GetDefaultOutputFormat()
	}
	return chart.ParseFormat(output)
}

// addOutputFlag registers the shared --output flag.
func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", "", "output format: table, json or ndjson (default from configuration)")
}
