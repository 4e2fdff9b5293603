package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/mrytune/internal/app"
	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

type LikeParams struct {
	Name string `pos:"true" required:"true" help:"Track name to like, or to unlike when already liked."`
}

func LikeCmd() *cobra.Command {
	return boa.CmdT[LikeParams]{
		Use:         "like",
		Short:       "Toggle a track in the liked set",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *LikeParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runLike(a, params, w)
			})
		},
	}.ToCobra()
}

func runLike(a *app.Application, params *LikeParams, w io.Writer) error {
	liked, err := a.Session().ToggleLike(params.Name)
	if err != nil {
		return err
	}
	if liked {
		fmt.Fprintf(w, "Liked %s\n", params.Name)
	} else {
		fmt.Fprintf(w, "Unliked %s\n", params.Name)
	}
	return nil
}

func LikedCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:         "liked",
		Short:       "List liked tracks",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runLiked(a, w)
			})
		},
	}.ToCobra()
}

func runLiked(a *app.Application, w io.Writer) error {
	names := a.Session().Liked()
	if len(names) == 0 {
		fmt.Fprintln(w, "No liked tracks")
		return nil
	}

	byName := lo.KeyBy(lo.UniqBy(a.Session().Catalog(), func(t domain.Track) string { return t.Name }),
		func(t domain.Track) string { return t.Name })

	t := newTable(w, table.Row{"Name", "Title", "Artist", "Offline"})
	for _, name := range names {
		track, ok := byName[name]
		if !ok {
			// Liked names may outlive the catalog they came from.
			t.AppendRow(table.Row{name, "", "", ""})
			continue
		}
		t.AppendRow(table.Row{name, track.DisplayTitle(), track.DisplayArtist(), yesNo(track.IsCached())})
	}
	t.Render()
	return nil
}
