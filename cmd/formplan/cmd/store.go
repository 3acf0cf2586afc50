package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/msto63/formplan/internal/uniqueness"
)

func newStoreCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the values validateUnique treats as taken",
		Long: `Manage the uniqueness store read by validateUnique.

Values are grouped by scope; a step without a scope argument uses its field
name. Values are compared case-insensitively after trimming. A running
server with store.cache_ttl set may report a removed value as taken until
its cache entry expires.`,
	}

	cmd.AddCommand(
		storeEditCommand(global, "add", "Mark values as taken", func(ctx context.Context, s *uniqueness.SQLiteStore, out io.Writer, scope, value string) error {
			added, err := s.Add(ctx, scope, value)
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(out, "%s %s\n", colorGreen.Sprint("added  "), value)
			} else {
				fmt.Fprintf(out, "%s %s\n", colorYellow.Sprint("exists "), value)
			}
			return nil
		}),
		storeEditCommand(global, "remove", "Release taken values", func(ctx context.Context, s *uniqueness.SQLiteStore, out io.Writer, scope, value string) error {
			removed, err := s.Remove(ctx, scope, value)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(out, "%s %s\n", colorGreen.Sprint("removed"), value)
			} else {
				fmt.Fprintf(out, "%s %s\n", colorYellow.Sprint("absent "), value)
			}
			return nil
		}),
		newStoreListCommand(global),
	)
	return cmd
}

type storeEdit func(ctx context.Context, s *uniqueness.SQLiteStore, out io.Writer, scope, value string) error

func storeEditCommand(global *globalOptions, use, short string, edit storeEdit) *cobra.Command {
	return &cobra.Command{
		Use:   use + " SCOPE VALUE...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(global)
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			scope := args[0]
			for _, value := range args[1:] {
				if err := edit(cmd.Context(), store, cmd.OutOrStdout(), scope, value); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newStoreListCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list SCOPE",
		Short: "List the taken values of a scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(global)
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			values, err := store.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, v := range values {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}
