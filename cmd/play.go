package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/prism/internal/game"
	"github.com/papapumpkin/prism/internal/menu"
	"github.com/papapumpkin/prism/internal/progress"
	"github.com/papapumpkin/prism/internal/route"
	"github.com/papapumpkin/prism/internal/telemetry"
	"github.com/papapumpkin/prism/internal/ui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Interactive play loop",
	Long: `Reads commands from stdin, one per line. Type "help" for the command list.
The route catalog file is watched and reloaded while playing.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().Bool("no-watch", false, "do not hot-reload the route catalog")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	return withSession(ctx, func(s *session) error {
		pl := &player{svc: s.svc, printer: s.printer, events: s.events}

		if noWatch, _ := cmd.Flags().GetBool("no-watch"); !noWatch {
			w, err := route.NewWatcher(s.cfg.CatalogFile, s.catalog)
			if err != nil {
				return fmt.Errorf("watching %s: %w", s.cfg.CatalogFile, err)
			}
			if err := w.Start(); err != nil {
				return fmt.Errorf("watching %s: %w", s.cfg.CatalogFile, err)
			}
			defer w.Stop()
			pl.reloads = w.Reloads
		}

		s.printer.Banner()
		return pl.run(ctx, cmd.InOrStdin())
	})
}

// errQuit ends the play loop.
var errQuit = errors.New("quit")

// player runs the interactive loop over a game service.
type player struct {
	svc     *game.Service
	printer *ui.Printer
	events  *telemetry.Emitter
	reloads <-chan route.ReloadEvent
}

// run reads commands from in until EOF, quit, or ctx is done.
func (p *player) run(ctx context.Context, in io.Reader) error {
	stop := make(chan struct{})
	defer close(stop)
	lines, readErr := readLines(in, stop)

	p.printer.Prompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-p.reloads:
			if !ok {
				p.reloads = nil
				continue
			}
			p.printer.CatalogReloaded(ev.DLC, ev.Special, ev.Err)
			if ev.Err == nil {
				_ = p.events.Emit(telemetry.Event{
					Kind: telemetry.KindCatalogReloaded,
					Data: map[string][]string{"dlc": ev.DLC, "special": ev.Special},
				})
			}

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			err := p.handle(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				p.printer.Error(err.Error())
			}
			p.printer.Prompt()
		}
	}
}

// readLines scans in on its own goroutine and sends each line until input
// ends or stop is closed. The error channel receives the scan error at EOF.
func readLines(in io.Reader, stop <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case <-stop:
				return
			default:
			}
			select {
			case lines <- sc.Text():
			case <-stop:
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}

// handle executes one command line.
func (p *player) handle(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	word, args := fields[0], fields[1:]

	switch strings.ToLower(word) {
	case "help", "?":
		p.printer.ShowHelp()
		return nil
	case "status":
		return p.status(ctx)
	case "log":
		if len(args) == 0 {
			entries, err := p.svc.History(ctx, "")
			if err != nil {
				return err
			}
			p.printer.TextLog(entries)
			return nil
		}
		_, err := p.svc.RecordText(ctx, strings.Join(args, " "))
		return err
	}

	opt, err := menu.Parse(word)
	if err != nil {
		return fmt.Errorf("%w (type \"help\" for commands)", err)
	}
	if err := menu.Dispatch(ctx, opt, p.handlers(args)); err != nil {
		return err
	}
	if opt == menu.Start || opt == menu.Advance {
		return p.autosave(ctx)
	}
	return nil
}

func (p *player) handlers(args []string) menu.Handlers {
	return menu.Handlers{
		Start: func(ctx context.Context) error {
			if len(args) == 0 {
				if opts, err := p.svc.Routes(ctx); err == nil {
					p.printer.Routes(opts)
				}
				return errors.New("usage: start <route>")
			}
			res := p.svc.SelectRoute(ctx, args[0])
			p.printer.RouteResult(args[0], res)
			return nil
		},
		Load: func(ctx context.Context) error {
			if len(args) == 0 {
				res := p.svc.ListSaves(ctx)
				if !res.Success {
					return errors.New(res.Message)
				}
				p.printer.Saves(res.Saves, p.svc.ActiveSlot())
				return nil
			}
			res := p.svc.LoadSave(ctx, args[0])
			if !res.Success {
				return errors.New(res.Message)
			}
			return p.status(ctx)
		},
		Settings: func(ctx context.Context) error {
			return p.settings(ctx, args)
		},
		Routes: func(ctx context.Context) error {
			opts, err := p.svc.Routes(ctx)
			if err != nil {
				return err
			}
			p.printer.Routes(opts)
			return nil
		},
		Advance: func(ctx context.Context) error {
			n, err := parseSteps(args)
			if err != nil {
				return err
			}
			return advance(ctx, p.svc, p.printer, n)
		},
		Quit: func(context.Context) error {
			return errQuit
		},
	}
}

func (p *player) status(ctx context.Context) error {
	st, err := p.svc.CurrentState(ctx)
	if err != nil {
		return err
	}
	p.printer.Status(st, progress.ScenesPerRoute)
	return nil
}

// settings shows settings, or sets one: "volume 0.5", "speed 2", "autosave off".
func (p *player) settings(ctx context.Context, args []string) error {
	if len(args) >= 2 {
		var u game.SettingsUpdate
		switch strings.ToLower(args[0]) {
		case "volume":
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid volume %q", args[1])
			}
			u.Volume = &v
		case "speed", "text-speed":
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid text speed %q", args[1])
			}
			u.TextSpeed = &v
		case "autosave", "auto-save":
			on := args[1] == "on" || args[1] == "true"
			u.AutoSave = &on
		default:
			return fmt.Errorf("unknown setting %q", args[0])
		}
		if _, err := p.svc.UpdateSettings(ctx, u); err != nil {
			return err
		}
	}
	st, err := p.svc.Settings(ctx)
	if err != nil {
		return err
	}
	p.printer.Settings(st)
	return nil
}

// autosave saves after a mutation when the player has auto-save on.
func (p *player) autosave(ctx context.Context) error {
	if _, err := p.svc.AutoSave(ctx); err != nil {
		return fmt.Errorf("auto-save: %w", err)
	}
	return nil
}
