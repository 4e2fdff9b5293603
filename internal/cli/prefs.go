package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/mrytune/internal/app"
	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

func PrefsCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:   "prefs",
		Short: "Show or reset stored preferences",
		SubCmds: []*cobra.Command{
			PrefsShowCmd(),
			PrefsEqCmd(),
			PrefsResetCmd(),
		},
	}.ToCobra()
}

func PrefsShowCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:         "show",
		Short:       "Show stored preferences",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runPrefsShow(a, w)
			})
		},
	}.ToCobra()
}

func runPrefsShow(a *app.Application, w io.Writer) error {
	stored, err := a.Preferences().Load()
	if err != nil {
		// Unreadable values fall back to defaults; show what there is.
		a.Logger().Warn("some preferences could not be read", slog.Any("error", err))
	}

	t := newTable(w, table.Row{"Preference", "Value"})
	t.AppendRows([]table.Row{
		{"volume", fmt.Sprintf("%.2f", stored.Volume)},
		{"shuffle", stored.Shuffle},
		{"repeat", stored.Repeat},
		{"equalizer", formatEqualizer(stored.Equalizer)},
		{"liked", len(stored.Liked)},
		{"catalog", trackCount(stored.Tracks)},
	})
	t.Render()
	return nil
}

func trackCount(n int) string {
	if n == 1 {
		return "1 track"
	}
	return fmt.Sprintf("%d tracks", n)
}

type PrefsEqParams struct {
	Low  float64 `pos:"true" required:"true" help:"Low shelf gain at 200 Hz, in dB (-12 to 12)."`
	Mid  float64 `pos:"true" required:"true" help:"Peaking gain at 1 kHz, in dB (-12 to 12)."`
	High float64 `pos:"true" required:"true" help:"High shelf gain at 3 kHz, in dB (-12 to 12)."`
}

func PrefsEqCmd() *cobra.Command {
	return boa.CmdT[PrefsEqParams]{
		Use:         "eq",
		Short:       "Set the three band equalizer",
		Long:        "Set the three band equalizer. Put -- before negative gains: mrytune prefs eq -- -3 0 2",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *PrefsEqParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runPrefsEq(a, params, w)
			})
		},
	}.ToCobra()
}

func runPrefsEq(a *app.Application, params *PrefsEqParams, w io.Writer) error {
	eq := domain.Equalizer{Low: params.Low, Mid: params.Mid, High: params.High}
	if err := a.Session().SetEqualizer(eq); err != nil {
		return err
	}
	fmt.Fprintf(w, "Equalizer set to %s\n", formatEqualizer(eq))
	return nil
}

func formatEqualizer(eq domain.Equalizer) string {
	return fmt.Sprintf("low %+.1f dB, mid %+.1f dB, high %+.1f dB", eq.Low, eq.Mid, eq.High)
}

type PrefsResetParams struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func PrefsResetCmd() *cobra.Command {
	return boa.CmdT[PrefsResetParams]{
		Use:         "reset",
		Short:       "Forget preferences, liked tracks and the saved catalog",
		Long:        "Forget preferences, liked tracks and the saved catalog. Offline copies in the blob store and playlists are kept.",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *PrefsResetParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runPrefsReset(a, params, cmd.InOrStdin(), w)
			})
		},
	}.ToCobra()
}

func runPrefsReset(a *app.Application, params *PrefsResetParams, in io.Reader, w io.Writer) error {
	if !params.Yes {
		fmt.Fprint(w, "Reset preferences, liked tracks and the saved catalog? [y/N] ")
		var answer string
		_, _ = fmt.Fscanln(in, &answer)
		if answer != "y" && answer != "Y" && answer != "yes" {
			fmt.Fprintln(w, "Aborted")
			return nil
		}
	}

	if err := a.Preferences().Reset(); err != nil {
		return err
	}
	fmt.Fprintln(w, "Preferences reset")
	return nil
}
