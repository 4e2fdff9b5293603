package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/mrytune/internal/app"
	"github.com/tejashwikalptaru/mrytune/internal/domain"
	"github.com/tejashwikalptaru/mrytune/internal/service"
)

type ImportParams struct {
	Folder   string `short:"f" optional:"true" help:"Folder of audio files to import (not recursive)."`
	Manifest string `short:"m" optional:"true" help:"JSON manifest to import, as a URL or a local path."`
}

func ImportCmd() *cobra.Command {
	return boa.CmdT[ImportParams]{
		Use:         "import",
		Short:       "Replace the catalog with a folder or a manifest",
		Long:        "Replace the catalog with the audio files of a folder (" + fmt.Sprint(service.SupportedFormats()) + ") or the entries of a JSON manifest [{name, url, title, artist, cover}].",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *ImportParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runImport(ctx, a, params, w)
			})
		},
	}.ToCobra()
}

func runImport(ctx context.Context, a *app.Application, params *ImportParams, w io.Writer) error {
	if (params.Folder == "") == (params.Manifest == "") {
		return errors.New("exactly one of --folder or --manifest is required")
	}

	var (
		tracks []domain.Track
		err    error
	)
	if params.Folder != "" {
		tracks, err = a.Library().ImportFolder(ctx, params.Folder)
	} else {
		tracks, err = a.Library().ImportManifest(ctx, params.Manifest)
	}
	if err != nil {
		return err
	}

	a.Session().ReplaceCatalog(tracks)
	fmt.Fprintf(w, "Imported %s\n", trackCount(len(tracks)))
	renderTracks(w, a.Session(), tracks)
	return nil
}

func ListCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:         "ls",
		Aliases:     []string{"list"},
		Short:       "List the catalog",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runList(a, w)
			})
		},
	}.ToCobra()
}

func runList(a *app.Application, w io.Writer) error {
	catalog := a.Session().Catalog()
	if len(catalog) == 0 {
		fmt.Fprintln(w, "Catalog is empty")
		fmt.Fprintln(w, "\nImport tracks with: mrytune import --folder <dir>")
		return nil
	}
	renderTracks(w, a.Session(), catalog)
	return nil
}

type SearchParams struct {
	Query string `pos:"true" required:"true" help:"Text to look for in titles, names and artists."`
}

func SearchCmd() *cobra.Command {
	return boa.CmdT[SearchParams]{
		Use:         "search",
		Short:       "Search the catalog",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *SearchParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runSearch(a, params, w)
			})
		},
	}.ToCobra()
}

func runSearch(a *app.Application, params *SearchParams, w io.Writer) error {
	found := a.Session().Search(params.Query)
	if len(found) == 0 {
		fmt.Fprintf(w, "No tracks match %q\n", params.Query)
		return nil
	}
	renderTracks(w, a.Session(), found)
	return nil
}

type SortParams struct {
	By string `pos:"true" required:"true" help:"Sort order: alpha or plays."`
}

func SortCmd() *cobra.Command {
	return boa.CmdT[SortParams]{
		Use:         "sort",
		Short:       "Reorder the catalog",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *SortParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runSort(a, params, w)
			})
		},
	}.ToCobra()
}

func runSort(a *app.Application, params *SortParams, w io.Writer) error {
	criterion, err := domain.ParseSortCriterion(params.By)
	if err != nil {
		return err
	}
	if err := a.Session().Sort(criterion); err != nil {
		return err
	}
	renderTracks(w, a.Session(), a.Session().Catalog())
	return nil
}

func renderTracks(w io.Writer, session *service.SessionService, tracks []domain.Track) {
	t := newTable(w, table.Row{"#", "Name", "Title", "Artist", "Offline", "Liked"})
	for i, track := range tracks {
		t.AppendRow(table.Row{
			i + 1,
			track.Name,
			track.DisplayTitle(),
			track.DisplayArtist(),
			yesNo(track.IsCached()),
			yesNo(session.IsLiked(track.Name)),
		})
	}
	t.Render()
}
