package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	"github.com/msto63/formplan/foundation/core/i18n"
)

func newMessagesCommand(global *globalOptions) *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "messages [PREFIX]",
		Short: "Show the message catalog as resolved for a locale",
		Long: `Show every message key of the catalog with its text in the given locale.

Keys missing from the locale fall back to the default locale. Messages are
shown unrendered, so template placeholders such as {{.min}} stay visible.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(global)
			if err != nil {
				return err
			}

			m := a.messages
			if locale == "" {
				locale = m.GetDefaultLocale()
			}
			if !m.HasLocale(i18n.NormalizeLocale(locale)) {
				return mdwerror.Newf("unknown locale %q", locale).
					WithCode(mdwerror.CodeInvalidInput).
					WithOperation("cmd.messages").
					WithDetail("available", strings.Join(m.GetAvailableLocales(), ", "))
			}

			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}

			out := cmd.OutOrStdout()
			for _, key := range m.GetTranslationKeys() {
				if !strings.HasPrefix(key, prefix) {
					continue
				}
				text, err := m.TryTLocale(locale, key)
				if err != nil {
					fmt.Fprintf(out, "%-36s %s\n", key, colorYellow.Sprint("(missing)"))
					continue
				}
				fmt.Fprintf(out, "%-36s %s\n", key, text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "", "catalog locale (default: configured locale)")
	return cmd
}
