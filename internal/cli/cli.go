// Package cli holds the mrytune sub-commands. Every command opens the
// application for the length of one invocation; session state that must
// survive between invocations (catalog, liked set, playlists, preferences)
// is restored from the preference store.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/mrytune/internal/app"
	"github.com/tejashwikalptaru/mrytune/internal/logger"
)

// Root returns the mrytune root command.
func Root(version string) *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:     "mrytune",
		Short:   "Headless music player with an offline cache",
		Version: version,
		SubCmds: []*cobra.Command{
			ImportCmd(),
			ListCmd(),
			SearchCmd(),
			SortCmd(),
			PlayCmd(),
			SaveCmd(),
			LikeCmd(),
			LikedCmd(),
			PlaylistCmd(),
			PrefsCmd(),
			VersionCmd(),
		},
	}.ToCobra()
}

// DefaultParamEnricher derives flag names and short flags from field names.
func DefaultParamEnricher() boa.ParamEnricher {
	return boa.ParamEnricherCombine(
		boa.ParamEnricherBool,
		boa.ParamEnricherName,
		boa.ParamEnricherShort,
	)
}

// runFunc is the body of a command once the application is open.
type runFunc func(ctx context.Context, a *app.Application, w io.Writer) error

// openApp builds the application from the environment. A non-empty backend
// overrides MRYTUNE_BLOB_BACKEND.
var openApp = func(ctx context.Context, backend string) (*app.Application, error) {
	config, err := app.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if backend != "" {
		config.BlobBackend = backend
	}
	// Command output goes to stdout; keep INFO chatter off unless asked for.
	if os.Getenv(logger.EnvLevel) == "" {
		config.LogLevel = slog.LevelWarn
	}
	return app.NewApplication(ctx, config)
}

// withApp opens the application, runs fn and shuts the application down.
func withApp(ctx context.Context, backend string, w io.Writer, fn runFunc) error {
	a, err := openApp(ctx, backend)
	if err != nil {
		return err
	}
	runErr := fn(ctx, a, w)
	if err := a.Shutdown(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// execute runs fn with a context cancelled on SIGINT/SIGTERM and exits
// non-zero on error.
func execute(cmd *cobra.Command, backend string, fn runFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withApp(ctx, backend, cmd.OutOrStdout(), fn); err != nil {
		stop()
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		os.Exit(1)
	}
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
