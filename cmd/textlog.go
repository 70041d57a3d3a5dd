package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/prism/internal/route"
)

var logCmd = &cobra.Command{
	Use:   "log [text...]",
	Short: "Record a line of text at the current scene, or show the text log",
	Long: `With arguments, records them as one line of text at the current route and scene.
Without arguments, prints the text log oldest first.`,
	RunE: runLog,
}

func init() {
	logCmd.Flags().String("route", "", "only show entries for this route")
	logCmd.Flags().Bool("clear", false, "delete logged text (all, or --route only)")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		ctx := cmd.Context()
		routeName, _ := cmd.Flags().GetString("route")

		if wipe, _ := cmd.Flags().GetBool("clear"); wipe {
			return clearLog(cmd, s, routeName)
		}

		if len(args) > 0 {
			if _, err := s.svc.RecordText(ctx, strings.Join(args, " ")); err != nil {
				s.printer.Error(err.Error())
				return err
			}
			return nil
		}

		entries, err := s.svc.History(ctx, routeName)
		if err != nil {
			s.printer.Error(err.Error())
			return err
		}
		s.printer.TextLog(entries)
		return nil
	})
}

func clearLog(cmd *cobra.Command, s *session, routeName string) error {
	var err error
	if routeName == "" {
		err = s.backend.TextLog().DeleteAll(cmd.Context())
	} else {
		err = s.backend.TextLog().DeleteByRoute(cmd.Context(), route.From(routeName))
	}
	if err != nil {
		s.printer.Error(err.Error())
		return err
	}
	s.printer.Success("text log cleared")
	return nil
}
