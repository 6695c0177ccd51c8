package main

import (
	"github.com/spf13/cobra"
)

func validateCmd(flags *rootFlags) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check outlet.json and the route manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			branches := a.tree.Branches()
			success(cmd, "%s: %d routes", a.cfg.ManifestPath(), len(branches))
			if list {
				for _, b := range branches {
					info(cmd, "%s", b)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List matchable route paths in ranking order")

	return cmd
}
