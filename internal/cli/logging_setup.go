package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/co2focus/internal/config"
	"github.com/rshade/co2focus/internal/logging"
)

// logSession is the logger output of one command run.
type logSession struct {
	result  logging.LogPathResult
	started time.Time
}

// setupLogging builds the CLI logger from config and environment, then --debug,
// and stores it with a trace ID in the command context.
func setupLogging(cmd *cobra.Command) *logSession {
	loggingCfg := config.GetLoggingConfig()

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.File = ""
	}

	// The directory is created only once the final destination is known.
	if loggingCfg.File != "" {
		if err := config.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	session := &logSession{
		result:  logging.NewLoggerWithPath(loggingCfg.ToLoggingConfig()),
		started: time.Now(),
	}
	logger = logging.ComponentLogger(session.result.Logger, "cli")

	switch {
	case session.result.UsingFile:
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), session.result.FilePath)
	case session.result.FallbackUsed:
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), session.result.FallbackReason)
	}

	ctx := logging.ContextWithTraceID(cmd.Context(), logging.GetOrGenerateTraceID(cmd.Context()))
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).
		Str(logging.FieldOperation, cmd.CommandPath()).
		Str("version", cmd.Root().Version).
		Msg("command started")

	return session
}

// cleanupLogging records the command duration and closes the log file.
func cleanupLogging(cmd *cobra.Command, session *logSession) error {
	if session == nil {
		return nil
	}
	logger.Debug().Ctx(cmd.Context()).
		Str(logging.FieldOperation, cmd.CommandPath()).
		Dur("duration_ms", time.Since(session.started)).
		Msg("command finished")
	return session.result.Close()
}
