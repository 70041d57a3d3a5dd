package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/prism/internal/route"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List routes and whether each can be selected",
	Args:  cobra.NoArgs,
	RunE:  runRoutes,
}

var routesAddDLCCmd = &cobra.Command{
	Use:   "add-dlc <name>...",
	Short: "Register DLC routes in the catalog file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  catalogEdit(func(c *route.Catalog, name string) { c.AddDLCRoute(name) }),
}

var routesRemoveDLCCmd = &cobra.Command{
	Use:   "remove-dlc <name>...",
	Short: "Remove DLC routes from the catalog file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  catalogEdit(func(c *route.Catalog, name string) { c.RemoveDLCRoute(name) }),
}

var routesAddSpecialCmd = &cobra.Command{
	Use:   "add-special <name>...",
	Short: "Register special routes in the catalog file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  catalogEdit(func(c *route.Catalog, name string) { c.AddSpecialRoute(name) }),
}

var routesRemoveSpecialCmd = &cobra.Command{
	Use:   "remove-special <name>...",
	Short: "Remove special routes from the catalog file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  catalogEdit(func(c *route.Catalog, name string) { c.RemoveSpecialRoute(name) }),
}

var routesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop every DLC and special route from the catalog file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			s.catalog.ResetConfiguration()
			return saveCatalog(s)
		})
	},
}

func init() {
	routesCmd.AddCommand(routesAddDLCCmd, routesRemoveDLCCmd, routesAddSpecialCmd, routesRemoveSpecialCmd, routesResetCmd)
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, _ []string) error {
	return withSession(cmd.Context(), func(s *session) error {
		opts, err := s.svc.Routes(cmd.Context())
		if err != nil {
			s.printer.Error(err.Error())
			return err
		}
		s.printer.Routes(opts)
		return nil
	})
}

// catalogEdit applies edit to the catalog for every argument and writes the
// catalog file back.
func catalogEdit(edit func(c *route.Catalog, name string)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			for _, name := range args {
				edit(s.catalog, name)
			}
			return saveCatalog(s)
		})
	}
}

func saveCatalog(s *session) error {
	if err := route.SaveCatalogFile(s.cfg.CatalogFile, s.catalog); err != nil {
		s.printer.Error(err.Error())
		return err
	}
	s.printer.CatalogReloaded(s.catalog.DLCRoutes(), s.catalog.SpecialRoutes(), nil)
	return nil
}
