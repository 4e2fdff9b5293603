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

func PlaylistCmd() *cobra.Command {
	cmd := boa.CmdT[boa.NoParams]{
		Use:   "playlist",
		Short: "Manage playlists",
		SubCmds: []*cobra.Command{
			PlaylistCreateCmd(),
			PlaylistAddCmd(),
			PlaylistRmCmd(),
			PlaylistLsCmd(),
			PlaylistShowCmd(),
		},
	}.ToCobra()
	cmd.Aliases = []string{"playlists", "pl"}
	return cmd
}

type PlaylistNameParams struct {
	Name string `pos:"true" required:"true" help:"Playlist name."`
}

func PlaylistCreateCmd() *cobra.Command {
	return boa.CmdT[PlaylistNameParams]{
		Use:         "create",
		Short:       "Create an empty playlist",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *PlaylistNameParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runPlaylistCreate(a, params, w)
			})
		},
	}.ToCobra()
}

func runPlaylistCreate(a *app.Application, params *PlaylistNameParams, w io.Writer) error {
	playlist, err := a.Playlists().Create(params.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Created playlist %s (%s)\n", playlist.Name, playlist.ID)
	return nil
}

type PlaylistAddParams struct {
	Playlist string `pos:"true" required:"true" help:"Playlist name."`
	Track    string `pos:"true" required:"true" help:"Catalog track name to append."`
}

func PlaylistAddCmd() *cobra.Command {
	return boa.CmdT[PlaylistAddParams]{
		Use:         "add",
		Short:       "Append a catalog track to a playlist",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *PlaylistAddParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runPlaylistAdd(a, params, w)
			})
		},
	}.ToCobra()
}

func runPlaylistAdd(a *app.Application, params *PlaylistAddParams, w io.Writer) error {
	inCatalog := lo.ContainsBy(a.Session().Catalog(), func(t domain.Track) bool { return t.Name == params.Track })
	if !inCatalog {
		return fmt.Errorf("%w: %s", domain.ErrTrackNotFound, params.Track)
	}

	playlist, err := a.Playlists().Append(params.Playlist, params.Track)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Added %s to %s (%d tracks)\n", params.Track, playlist.Name, len(playlist.TrackNames))
	return nil
}

func PlaylistRmCmd() *cobra.Command {
	return boa.CmdT[PlaylistNameParams]{
		Use:         "rm",
		Aliases:     []string{"delete"},
		Short:       "Delete a playlist",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *PlaylistNameParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runPlaylistRm(a, params, w)
			})
		},
	}.ToCobra()
}

func runPlaylistRm(a *app.Application, params *PlaylistNameParams, w io.Writer) error {
	if err := a.Playlists().Delete(params.Name); err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted playlist %s\n", params.Name)
	return nil
}

func PlaylistLsCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:         "ls",
		Aliases:     []string{"list"},
		Short:       "List playlists",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runPlaylistLs(a, w)
			})
		},
	}.ToCobra()
}

func runPlaylistLs(a *app.Application, w io.Writer) error {
	playlists, err := a.Playlists().List()
	if err != nil {
		return err
	}
	if len(playlists) == 0 {
		fmt.Fprintln(w, "No playlists")
		return nil
	}

	t := newTable(w, table.Row{"Name", "Tracks", "Updated"})
	for _, p := range playlists {
		t.AppendRow(table.Row{p.Name, len(p.TrackNames), p.UpdatedAt.Format("2006-01-02 15:04")})
	}
	t.Render()
	return nil
}

func PlaylistShowCmd() *cobra.Command {
	return boa.CmdT[PlaylistNameParams]{
		Use:         "show",
		Short:       "Show the catalog tracks of a playlist",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *PlaylistNameParams, cmd *cobra.Command, args []string) {
			execute(cmd, "", func(ctx context.Context, a *app.Application, w io.Writer) error {
				return runPlaylistShow(a, params, w)
			})
		},
	}.ToCobra()
}

func runPlaylistShow(a *app.Application, params *PlaylistNameParams, w io.Writer) error {
	tracks, err := a.Playlists().Tracks(params.Name)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		fmt.Fprintf(w, "Playlist %s has no tracks in the catalog\n", params.Name)
		return nil
	}
	renderTracks(w, a.Session(), tracks)
	return nil
}
