package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCapabilitiesCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "capabilities",
		Aliases: []string{"caps"},
		Short:   "List the registered capabilities",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(global)
			if err != nil {
				return err
			}
			registry, err := a.registry(nil)
			if err != nil {
				return err
			}

			for _, id := range registry.IDs() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
