package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tejashwikalptaru/mrytune/internal/app"
	"github.com/tejashwikalptaru/mrytune/internal/domain"
)

const (
	seekStep   = 10 * time.Second
	volumeStep = 0.1
	historyLen = 10

	keyCtrlC     = 3
	keyBackspace = 8
	keyEscape    = 27
	keyDelete    = 127
)

const playHelp = "Keys: space pause/resume, n/. next, p/, previous, [/] seek, +/- volume, " +
	"s shuffle, r repeat, l like, a add to playlist, i info, q quit"

type PlayParams struct {
	Name    string  `pos:"true" optional:"true" help:"Track to start with. Defaults to the first track, or a random one with --shuffle."`
	Shuffle bool    `short:"s" help:"Pick the next track at random."`
	Repeat  bool    `short:"r" help:"Replay the current track when it ends."`
	Volume  float64 `short:"v" optional:"true" help:"Volume between 0 and 1. Negative keeps the saved volume." default:"-1"`
	Backend string  `short:"b" optional:"true" help:"Blob store backend: memory, disk or redis. Overrides MRYTUNE_BLOB_BACKEND."`
}

func PlayCmd() *cobra.Command {
	return boa.CmdT[PlayParams]{
		Use:   "play",
		Short: "Play the catalog with keyboard controls",
		Long: "Play the catalog from the given track. Offline copies are preferred over the network. " +
			"Playback stops at the end of the catalog unless --repeat or --shuffle is set.\n\n" + playHelp,
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(params *PlayParams, cmd *cobra.Command, args []string) {
			execute(cmd, params.Backend, func(ctx context.Context, a *app.Application, w io.Writer) error {
				fd := int(os.Stdin.Fd())
				if !term.IsTerminal(fd) {
					return runPlay(ctx, a, params, nil, w)
				}

				oldState, err := term.MakeRaw(fd)
				if err != nil {
					return fmt.Errorf("failed to set terminal to raw mode: %w", err)
				}
				defer func() { _ = term.Restore(fd, oldState) }()

				return runPlay(ctx, a, params, os.Stdin, crlfWriter{w})
			})
		},
	}.ToCobra()
}

// crlfWriter turns "\n" into "\r\n" for a terminal in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// console serializes player output. Bus handlers and the key loop write from
// different goroutines, and the progress line is redrawn in place.
type console struct {
	mu       sync.Mutex
	w        io.Writer
	progress bool
}

func (c *console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endProgressLocked()
	fmt.Fprintf(c.w, format+"\n", args...)
}

func (c *console) Progress(position, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "\r%s / %s ", formatClock(position), formatClock(duration))
	c.progress = true
}

// Writer returns the underlying writer after finishing any progress line.
func (c *console) Writer() io.Writer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endProgressLocked()
	return c.w
}

func (c *console) endProgressLocked() {
	if c.progress {
		fmt.Fprintln(c.w)
		c.progress = false
	}
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// readKeys feeds the bytes of in to a channel that is closed on EOF or once
// done is closed. A read already blocked on in only returns with the next key.
func readKeys(in io.Reader, done <-chan struct{}) <-chan byte {
	if in == nil {
		return nil
	}
	keys := make(chan byte, 16)
	go func() {
		defer close(keys)
		reader := bufio.NewReader(in)
		for {
			b, err := reader.ReadByte()
			if err != nil {
				return
			}
			select {
			case keys <- b:
			case <-done:
				return
			}
		}
	}()
	return keys
}

// runPlay plays the catalog until it ends, ctx is done or q is pressed. keys
// may be nil, and playback goes on after keys reaches EOF.
func runPlay(ctx context.Context, a *app.Application, params *PlayParams, keys io.Reader, w io.Writer) error {
	session := a.Session()
	if len(session.Catalog()) == 0 {
		return domain.ErrEmptyCatalog
	}

	// Flags are persisted like any other change, so the next run starts from them.
	if params.Shuffle {
		session.SetShuffle(true)
	}
	if params.Repeat {
		session.SetRepeat(true)
	}
	if params.Volume >= 0 {
		if err := session.SetVolume(params.Volume); err != nil {
			return err
		}
	}

	out := &console{w: w}
	ended := make(chan struct{}, 1)
	rejected := make(chan error, 1)

	bus := a.EventBus()
	subs := []domain.SubscriptionID{
		bus.Subscribe(domain.EventTrackStarted, func(e domain.Event) {
			started := e.(domain.TrackStartedEvent)
			origin := "stream"
			if started.Cached {
				origin = "offline"
			}
			out.Printf("Playing %s - %s (%s)", started.Track.DisplayTitle(), started.Track.DisplayArtist(), origin)
		}),
		bus.Subscribe(domain.EventTrackProgress, func(e domain.Event) {
			p := e.(domain.TrackProgressEvent)
			out.Progress(p.Position, p.Duration)
		}),
		bus.Subscribe(domain.EventPlaybackRejected, func(e domain.Event) {
			r := e.(domain.PlaybackRejectedEvent)
			select {
			case rejected <- fmt.Errorf("%s: %w", r.Track.Name, r.Error):
			default:
			}
		}),
		bus.Subscribe(domain.EventCatalogEnded, func(domain.Event) {
			select {
			case ended <- struct{}{}:
			default:
			}
		}),
	}
	defer func() {
		for _, id := range subs {
			bus.Unsubscribe(id)
		}
	}()

	var err error
	switch {
	case params.Name != "":
		err = session.PlayByName(ctx, params.Name)
	case params.Shuffle:
		err = session.Next(ctx)
	default:
		err = session.Open(ctx, 0)
	}
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	input := readKeys(keys, done)
	if input != nil {
		out.Printf("%s", playHelp)
	}

	p := &player{a: a, out: out}
	for {
		select {
		case <-ctx.Done():
			out.Printf("Stopped")
			err := session.Stop()
			printHistory(a, out.Writer())
			return err
		case <-ended:
			out.Printf("End of catalog")
			printHistory(a, out.Writer())
			return nil
		case err := <-rejected:
			return err
		case key, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			if p.handle(ctx, key) {
				out.Printf("Stopped")
				err := session.Stop()
				printHistory(a, out.Writer())
				return err
			}
		}
	}
}

// player maps keys to session commands. A playlist name is collected
// after 'a' until Enter; Escape cancels it.
type player struct {
	a   *app.Application
	out *console

	naming   bool
	playlist strings.Builder
}

// handle applies key and reports whether playback should stop.
func (p *player) handle(ctx context.Context, key byte) bool {
	if key == keyCtrlC {
		return true
	}
	if p.naming {
		p.name(key)
		return false
	}

	session := p.a.Session()
	var err error
	switch key {
	case 'q', 'Q':
		return true
	case ' ':
		err = session.TogglePlay(ctx)
		if err == nil {
			p.out.Printf("%s", session.Status())
		}
	case 'n', '.':
		err = session.Next(ctx)
	case 'p', ',':
		err = session.Previous(ctx)
	case '[', ']':
		position := session.Snapshot().Position
		if key == '[' {
			position = max(position-seekStep, 0)
		} else {
			position += seekStep
		}
		err = session.Seek(position)
	case '+', '=', '-':
		volume := session.Snapshot().Volume
		if key == '-' {
			volume -= volumeStep
		} else {
			volume += volumeStep
		}
		volume = min(max(volume, 0), 1)
		if err = session.SetVolume(volume); err == nil {
			p.out.Printf("Volume %.0f%%", volume*100)
		}
	case 's':
		enabled := !session.Snapshot().Shuffle
		session.SetShuffle(enabled)
		p.out.Printf("Shuffle %s", onOff(enabled))
	case 'r':
		enabled := !session.Snapshot().Repeat
		session.SetRepeat(enabled)
		p.out.Printf("Repeat %s", onOff(enabled))
	case 'l':
		var liked bool
		if liked, err = session.ToggleLikeCurrent(); err == nil {
			if liked {
				p.out.Printf("Liked")
			} else {
				p.out.Printf("Unliked")
			}
		}
	case 'a':
		p.naming = true
		p.playlist.Reset()
		p.out.Printf("Add to playlist (Enter to confirm, Esc to cancel):")
	case 'i':
		p.info()
	case '?', 'h':
		p.out.Printf("%s", playHelp)
	}
	if err != nil {
		p.out.Printf("! %v", err)
	}
	return false
}

func (p *player) name(key byte) {
	switch key {
	case '\r', '\n':
		p.naming = false
		name := strings.TrimSpace(p.playlist.String())
		if name == "" {
			p.out.Printf("Cancelled")
			return
		}
		playlist, err := p.a.Playlists().AppendCurrent(name)
		if err != nil {
			p.out.Printf("! %v", err)
			return
		}
		p.out.Printf("Added to %s (%d tracks)", playlist.Name, len(playlist.TrackNames))
	case keyEscape:
		p.naming = false
		p.out.Printf("Cancelled")
	case keyBackspace, keyDelete:
		name := p.playlist.String()
		if name != "" {
			p.playlist.Reset()
			p.playlist.WriteString(name[:len(name)-1])
		}
	default:
		if key >= ' ' {
			p.playlist.WriteByte(key)
		}
	}
}

func (p *player) info() {
	snap := p.a.Session().Snapshot()
	if snap.CurrentTrack == nil {
		p.out.Printf("! %v", domain.ErrNoTrackSelected)
		return
	}
	t := snap.CurrentTrack
	p.out.Printf("%s - %s [%s] %s, volume %.0f%%, shuffle %s, repeat %s",
		t.DisplayTitle(), t.DisplayArtist(), snap.Status, formatClock(snap.Position),
		snap.Volume*100, onOff(snap.Shuffle), onOff(snap.Repeat))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// printHistory renders the recently and most played tracks of the session.
func printHistory(a *app.Application, w io.Writer) {
	session := a.Session()
	recent := session.Recent(historyLen)
	popular := session.Popular(historyLen)
	if len(recent) == 0 && len(popular) == 0 {
		return
	}

	t := newTable(w, table.Row{"#", "Recently played", "Most played", "Plays"})
	for i := range max(len(recent), len(popular)) {
		row := table.Row{i + 1, "", "", ""}
		if i < len(recent) {
			row[1] = recent[i]
		}
		if i < len(popular) {
			row[2] = popular[i].Name
			row[3] = popular[i].Count
		}
		t.AppendRow(row)
	}
	t.Render()
}
