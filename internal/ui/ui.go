// Package ui provides stderr-based human output for prism. Styling goes
// through lipgloss and is dropped when the destination is not a terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/papapumpkin/prism/internal/game"
	"github.com/papapumpkin/prism/internal/menu"
	"github.com/papapumpkin/prism/internal/settings"
	"github.com/papapumpkin/prism/internal/textlog"
	"github.com/papapumpkin/prism/internal/unlock"
)

// Printer writes styled progress output.
type Printer struct {
	w io.Writer

	bold    lipgloss.Style
	dim     lipgloss.Style
	accent  lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	failure lipgloss.Style
}

// New returns a Printer writing to w. When color is false every style
// renders plain text.
func New(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:       w,
		bold:    r.NewStyle().Bold(true),
		dim:     r.NewStyle().Faint(true),
		accent:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		warn:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	}
}

// NewStderr returns a Printer on os.Stderr, colored only when stderr is a
// terminal and noColor is unset.
func NewStderr(noColor bool) *Printer {
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return New(os.Stderr, tty && !noColor)
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Banner prints the session header.
func (p *Printer) Banner() {
	p.printf("%s %s\n\n", p.accent.Render("PRISM"), p.dim.Render("branching narrative progress"))
}

// Prompt prints the input prompt without a newline.
func (p *Printer) Prompt() {
	p.printf("%s ", p.accent.Render("prism>"))
}

// Error prints msg as a failure.
func (p *Printer) Error(msg string) {
	p.printf("%s %s\n", p.failure.Render("error:"), msg)
}

// Info prints msg dimmed.
func (p *Printer) Info(msg string) {
	p.printf("%s\n", p.dim.Render(msg))
}

// Success prints msg with a check mark.
func (p *Printer) Success(msg string) {
	p.printf("%s %s\n", p.success.Render("✓"), msg)
}

// ShowHelp lists the play loop commands.
func (p *Printer) ShowHelp() {
	help := map[menu.Option]string{
		menu.Start:    "start a route: start <route>",
		menu.Load:     "list saves, or load one: load <id>",
		menu.Settings: "show settings, or set one: settings volume 0.5",
		menu.Routes:   "list routes and whether they can be selected",
		menu.Advance:  "advance one scene, or n scenes: advance <n>",
		menu.Quit:     "exit prism",
	}
	p.printf("%s\n", p.bold.Render("Commands:"))
	for _, o := range menu.All() {
		p.printf("  %-10s %s\n", o, help[o])
	}
	p.printf("  %-10s %s\n", "log", "record a line of text: log <text>")
	p.printf("  %-10s %s\n", "help", "show this message")
}

// ProgressBarLine renders a scene position as a fixed-width bar.
func ProgressBarLine(routeName string, scene, total int) string {
	const width = 20
	if routeName == "" {
		routeName = "(no route)"
	}
	filled := 0
	if total > 0 {
		filled = min(scene, total) * width / total
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s %d/%d", routeName, bar, scene, total)
}

// Status prints the active record.
func (p *Printer) Status(st game.State, total int) {
	p.printf("%s %s\n", p.bold.Render("slot"), st.Slot)
	p.printf("  %s\n", ProgressBarLine(st.CurrentRoute, st.CurrentScene, total))

	cleared := "none"
	if len(st.ClearedRoutes) > 0 {
		cleared = strings.Join(st.ClearedRoutes, ", ")
	}
	p.printf("  cleared: %s\n", cleared)

	if st.TrueRouteUnlocked {
		p.printf("  true route: %s\n", p.success.Render("unlocked"))
	} else {
		p.printf("  true route: %s\n", p.dim.Render("locked"))
	}
}

// RouteResult prints the outcome of a route selection.
func (p *Printer) RouteResult(name string, res game.Result) {
	if res.Success {
		p.Success(fmt.Sprintf("now playing %s", p.bold.Render(name)))
		return
	}
	p.printf("%s %s\n", p.warn.Render("✗ cannot select "+name+":"), res.Message)
}

// Advanced prints the outcome of a scene advance.
func (p *Printer) Advanced(routeName string, res game.AdvanceResult, total int) {
	p.printf("%s\n", ProgressBarLine(routeName, res.CurrentScene, total))
	if res.RouteCleared {
		p.printf("%s %s\n", p.success.Render("★ route cleared:"), routeName)
	}
}

// Routes prints every route with its unlock decision.
func (p *Printer) Routes(opts []unlock.RouteOption) {
	for _, o := range opts {
		switch {
		case !o.CanSelect:
			p.printf("  %s %-16s %s\n", p.dim.Render("🔒"), o.Name, p.dim.Render(o.Reason))
		case o.Cleared:
			p.printf("  %s %-16s %s\n", p.success.Render("✓"), o.Name, p.dim.Render("cleared"))
		default:
			p.printf("  %s %s\n", p.accent.Render("•"), o.Name)
		}
	}
}

// Saves prints the save list, marking the active slot.
func (p *Printer) Saves(saves []game.Summary, active string) {
	if len(saves) == 0 {
		p.Info("no saves")
		return
	}
	for _, s := range saves {
		marker := " "
		if s.ID == active {
			marker = p.accent.Render("*")
		}
		routeName := s.RouteName
		if routeName == "" {
			routeName = "-"
		}
		p.printf("%s %-6s %-16s scene %-4d %s\n", marker, s.ID, routeName, s.SceneNumber,
			p.dim.Render(s.LastUpdated.Format("2006-01-02 15:04:05")))
	}
}

// Settings prints player settings.
func (p *Printer) Settings(s settings.Settings) {
	p.printf("%s\n", p.bold.Render("settings:"))
	p.printf("  volume:      %.2f\n", s.Volume())
	p.printf("  text speed:  %.2f\n", s.TextSpeed())
	p.printf("  auto-save:   %v\n", s.AutoSaveEnabled())
}

// TextLog prints logged text oldest first.
func (p *Printer) TextLog(entries []textlog.Entry) {
	if len(entries) == 0 {
		p.Info("text log is empty")
		return
	}
	for _, e := range entries {
		p.printf("%s %s\n", p.dim.Render(fmt.Sprintf("[%s:%d]", e.Route, e.Scene.Value())), e.Text)
	}
}

// CatalogReloaded reports a catalog hot reload.
func (p *Printer) CatalogReloaded(dlc, special []string, err error) {
	if err != nil {
		p.Error(fmt.Sprintf("reloading routes: %v", err))
		return
	}
	p.Info(fmt.Sprintf("routes reloaded (dlc: %d, special: %d)", len(dlc), len(special)))
}
