package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/formplan/internal/planfile"
)

func newLintCommand(global *globalOptions) *cobra.Command {
	var refsFile string

	cmd := &cobra.Command{
		Use:   "lint [CATALOG]",
		Short: "Check every form of a plan catalog",
		Long: `Build, normalize and bind every form of a plan catalog against the
registered capabilities without running it. The catalog defaults to the
configured plans path. Missing $ref: entries are only reported when --refs
is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(global)
			if err != nil {
				return err
			}

			path := a.cfg.Plans.Path
			if len(args) == 1 {
				path = args[0]
			}
			catalog, err := planfile.Load(path)
			if err != nil {
				return err
			}

			var refs map[string]any
			if refsFile != "" {
				if refs, err = readObject(refsFile); err != nil {
					return err
				}
			}

			registry, err := a.registry(nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			problems := catalog.Lint(cmd.Context(), registry, refs)
			bad := make(map[string]bool, len(problems))
			for _, p := range problems {
				bad[p.Form] = true
				fmt.Fprintf(out, "%s %s: %v\n", colorRed.Sprint("FAIL"), p.Form, p.Err)
			}
			for _, name := range catalog.Names() {
				if !bad[name] {
					fmt.Fprintf(out, "%s %s\n", colorGreen.Sprint("ok  "), name)
				}
			}

			if len(problems) > 0 {
				fmt.Fprintf(out, "%s\n", colorYellow.Sprintf("%d of %d forms failed", len(bad), catalog.Len()))
				return &exitError{code: ExitInvalid}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&refsFile, "refs", "", "reference data to check $ref: entries against")
	return cmd
}
