package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/prism/internal/progress"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "List save slots",
	Args:  cobra.NoArgs,
	RunE:  runSaves,
}

var loadCmd = &cobra.Command{
	Use:   "load <id>",
	Short: "Show a save slot; pass --slot <id> to other commands to play it",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a save slot",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(savesCmd, loadCmd, deleteCmd)
}

func runSaves(cmd *cobra.Command, _ []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		res := s.svc.ListSaves(cmd.Context())
		if !res.Success {
			s.printer.Error(res.Message)
			return errors.New(res.Message)
		}
		s.printer.Saves(res.Saves, s.svc.ActiveSlot())
		return nil
	})
}

func runLoad(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		res := s.svc.LoadSave(cmd.Context(), args[0])
		if !res.Success {
			s.printer.Error(res.Message)
			return errors.New(res.Message)
		}
		st, err := s.svc.CurrentState(cmd.Context())
		if err != nil {
			return err
		}
		s.printer.Status(st, progress.ScenesPerRoute)
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		if err := s.backend.Progress().Delete(cmd.Context(), args[0]); err != nil {
			s.printer.Error(err.Error())
			return err
		}
		s.printer.Success(fmt.Sprintf("deleted save %s", args[0]))
		return nil
	})
}
