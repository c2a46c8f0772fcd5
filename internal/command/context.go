package command

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamavenir/weft/internal/engine"
	"github.com/adamavenir/weft/internal/flume"
	"github.com/adamavenir/weft/internal/query"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	Engine   *engine.Engine
	Log      *flume.OffsetLog
	JSONMode bool
}

// GetContext opens the log and the index for a command. The index is
// verified on open; corruption surfaces here.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	return getContext(cmd, engine.Open)
}

// GetResetContext opens the index with all derived state dropped. Only
// the rebuild command uses it.
func GetResetContext(cmd *cobra.Command) (*CommandContext, error) {
	return getContext(cmd, engine.OpenReset)
}

func getContext(cmd *cobra.Command, open func(string, flume.Log, *slog.Logger) (*engine.Engine, error)) (*CommandContext, error) {
	logPath, _ := cmd.Flags().GetString("log")
	dbPath, _ := cmd.Flags().GetString("db")
	jsonMode, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if dbPath == "" {
		dbPath = defaultDBPath(logPath)
	}

	log, err := flume.OpenOffsetLog(logPath)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	eng, err := open(dbPath, log, logger)
	if err != nil {
		return nil, err
	}

	return &CommandContext{Engine: eng, Log: log, JSONMode: jsonMode}, nil
}

// Close releases the index connection.
func (ctx *CommandContext) Close() {
	_ = ctx.Engine.Close()
}

// Resolver returns the read side.
func (ctx *CommandContext) Resolver() *query.Resolver {
	return ctx.Engine.Resolver()
}

// defaultDBPath derives the index path from the log path by swapping
// the extension for .db, so weft.log indexes into weft.db beside it.
func defaultDBPath(logPath string) string {
	if idx := strings.LastIndex(logPath, "."); idx > strings.LastIndexAny(logPath, "/\\") {
		return logPath[:idx] + ".db"
	}
	return logPath + ".db"
}
