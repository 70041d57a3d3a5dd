package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/prism/internal/game"
	"github.com/papapumpkin/prism/internal/progress"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active route, scene and cleared routes",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Bool("json", false, "output status as JSON to stdout")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		st, err := s.svc.CurrentState(cmd.Context())
		if err != nil {
			s.printer.Error(err.Error())
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeStatusJSON(cmd.OutOrStdout(), st)
		}
		s.printer.Status(st, progress.ScenesPerRoute)
		return nil
	})
}

// statusJSON is the structured representation of status for --json output.
type statusJSON struct {
	Slot              string   `json:"slot"`
	CurrentRoute      string   `json:"current_route"`
	CurrentScene      int      `json:"current_scene"`
	ScenesPerRoute    int      `json:"scenes_per_route"`
	ClearedRoutes     []string `json:"cleared_routes"`
	TrueRouteUnlocked bool     `json:"true_route_unlocked"`
}

// writeStatusJSON writes st as indented JSON to w.
func writeStatusJSON(w io.Writer, st game.State) error {
	cleared := st.ClearedRoutes
	if cleared == nil {
		cleared = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(statusJSON{
		Slot:              st.Slot,
		CurrentRoute:      st.CurrentRoute,
		CurrentScene:      st.CurrentScene,
		ScenesPerRoute:    progress.ScenesPerRoute,
		ClearedRoutes:     cleared,
		TrueRouteUnlocked: st.TrueRouteUnlocked,
	})
}
