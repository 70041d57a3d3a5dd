package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/prism/internal/game"
	"github.com/papapumpkin/prism/internal/progress"
)

var selectCmd = &cobra.Command{
	Use:   "select <route>",
	Short: "Start playing a route from its first scene",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelect,
}

var advanceCmd = &cobra.Command{
	Use:   "advance [n]",
	Short: "Advance the current route by one scene, or by n scenes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAdvance,
}

func init() {
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(advanceCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		res := s.svc.SelectRoute(cmd.Context(), args[0])
		s.printer.RouteResult(args[0], res)
		if !res.Success {
			return errors.New(res.Message)
		}
		return nil
	})
}

func runAdvance(cmd *cobra.Command, args []string) error {
	n, err := parseSteps(args)
	if err != nil {
		return err
	}
	return withSession(cmd.Context(), func(s *session) error {
		if err := advance(cmd.Context(), s.svc, s.printer, n); err != nil {
			s.printer.Error(err.Error())
			return err
		}
		return nil
	})
}

// parseSteps reads an optional positive step count, defaulting to 1.
func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid scene count %q: want a positive integer", args[0])
	}
	return n, nil
}

// advancePrinter is the output advance needs.
type advancePrinter interface {
	Advanced(routeName string, res game.AdvanceResult, total int)
}

// advance steps n scenes, stopping early once the route is at its last scene.
func advance(ctx context.Context, svc *game.Service, p advancePrinter, n int) error {
	st, err := svc.CurrentState(ctx)
	if err != nil {
		return err
	}

	var res game.AdvanceResult
	for i := 0; i < n; i++ {
		res, err = svc.AdvanceScene(ctx)
		if err != nil {
			return err
		}
		if res.RouteCleared || res.CurrentScene >= progress.ScenesPerRoute {
			break
		}
	}
	p.Advanced(st.CurrentRoute, res, progress.ScenesPerRoute)
	return nil
}
