package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/mrytune/internal/app"
	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

type SaveParams struct {
	Names   []string `pos:"true" optional:"true" help:"Tracks to save. None saves the whole catalog."`
	Backend string   `short:"b" optional:"true" help:"Blob store backend: memory, disk or redis. Overrides MRYTUNE_BLOB_BACKEND."`
}

func SaveCmd() *cobra.Command {
	return boa.CmdT[SaveParams]{
		Use:         "save",
		Short:       "Save tracks for offline playback",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *SaveParams, cmd *cobra.Command, args []string) {
			execute(cmd, params.Backend, func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runSave(ctx, a, params, w)
			})
		},
	}.ToCobra()
}

func runSave(ctx context.Context, a *app.Application, params *SaveParams, w io.Writer) error {
	if len(a.Session().Catalog()) == 0 {
		return domain.ErrEmptyCatalog
	}

	results := a.Session().SaveOffline(ctx, params.Names)

	t := newTable(w, table.Row{"Name", "Key", "Size", "Result"})
	for _, r := range results {
		if r.OK() {
			t.AppendRow(table.Row{r.Name, r.Key, r.Size, text.FgGreen.Sprint("saved")})
		} else {
			t.AppendRow(table.Row{r.Name, "", "", text.FgRed.Sprint(r.Err.Error())})
		}
	}
	t.Render()

	failed := lo.CountBy(results, func(r domain.SaveResult) bool { return !r.OK() })
	if failed > 0 {
		return fmt.Errorf("%d of %d tracks could not be saved", failed, len(results))
	}
	return nil
}
