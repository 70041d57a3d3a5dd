package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/prism/internal/config"
	"github.com/papapumpkin/prism/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "View JSONL telemetry events",
	Long: `Reads and formats the JSONL telemetry file in the data directory.

With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.NoArgs,
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	telemetryCmd.Flags().String("kind", "", "only show events of this kind")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, _ []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	kind, _ := cmd.Flags().GetString("kind")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path := cfg.TelemetryPath()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	w := cmd.OutOrStdout()
	lt := &lineTail{r: bufio.NewReader(f)}
	lt.printLines(w, kind)

	if !follow {
		lt.flush(w, kind)
		return nil
	}
	return tailFollow(w, lt, path, kind)
}

// lineTail reads newline-terminated events from a growing file. An
// unterminated tail is held until a later read completes it.
type lineTail struct {
	r       *bufio.Reader
	partial string
}

// printLines prints every complete line available from the reader.
func (lt *lineTail) printLines(w io.Writer, kind string) {
	for {
		chunk, err := lt.r.ReadString('\n')
		lt.partial += chunk
		if err != nil {
			return
		}
		if line := strings.TrimSpace(lt.partial); line != "" {
			printEvent(w, line, kind)
		}
		lt.partial = ""
	}
}

// flush prints a held tail as-is. Used when no further writes are awaited.
func (lt *lineTail) flush(w io.Writer, kind string) {
	if line := strings.TrimSpace(lt.partial); line != "" {
		printEvent(w, line, kind)
	}
	lt.partial = ""
}

// tailFollow watches the file for new data using fsnotify and prints new events.
func tailFollow(w io.Writer, lt *lineTail, path, kind string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	for event := range watcher.Events {
		if event.Op&fsnotify.Write == 0 {
			continue
		}
		lt.printLines(w, kind)
	}
	return nil
}

// printEvent decodes a JSONL line and prints a human-readable representation.
// When kind is set, events of other kinds are skipped.
func printEvent(w io.Writer, line, kind string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}
	if kind != "" && evt.Kind != kind {
		return
	}

	parts := []string{fmt.Sprintf("[%s]", evt.Timestamp.Format(time.DateTime)), evt.Kind}
	if evt.Slot != "" {
		parts = append(parts, "slot="+evt.Slot)
	}
	if evt.Route != "" {
		parts = append(parts, "route="+evt.Route)
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
