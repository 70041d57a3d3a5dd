package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/prism/internal/game"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change volume, text speed and auto-save",
	Args:  cobra.NoArgs,
	RunE:  runSettings,
}

func init() {
	settingsCmd.Flags().Float64("volume", 0, "volume between 0.0 and 1.0")
	settingsCmd.Flags().Float64("text-speed", 0, "text speed multiplier, greater than 0")
	settingsCmd.Flags().Bool("auto-save", true, "save progress automatically")
	settingsCmd.Flags().Bool("reset", false, "restore default settings")
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, _ []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		ctx := cmd.Context()
		if reset, _ := cmd.Flags().GetBool("reset"); reset {
			if err := s.backend.Settings().InitializeDefault(ctx); err != nil {
				s.printer.Error(err.Error())
				return err
			}
		}

		u := settingsUpdateFromFlags(cmd)
		if u.Volume != nil || u.TextSpeed != nil || u.AutoSave != nil {
			if _, err := s.svc.UpdateSettings(ctx, u); err != nil {
				s.printer.Error(err.Error())
				return err
			}
		}

		st, err := s.svc.Settings(ctx)
		if err != nil {
			s.printer.Error(err.Error())
			return err
		}
		s.printer.Settings(st)
		return nil
	})
}

// settingsUpdateFromFlags collects only the flags the user set.
func settingsUpdateFromFlags(cmd *cobra.Command) game.SettingsUpdate {
	var u game.SettingsUpdate
	flags := cmd.Flags()
	if flags.Changed("volume") {
		v, _ := flags.GetFloat64("volume")
		u.Volume = &v
	}
	if flags.Changed("text-speed") {
		v, _ := flags.GetFloat64("text-speed")
		u.TextSpeed = &v
	}
	if flags.Changed("auto-save") {
		v, _ := flags.GetBool("auto-save")
		u.AutoSave = &v
	}
	return u
}
