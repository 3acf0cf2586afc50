package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes of the formplan CLI
const (
	ExitOK      = 0 // everything valid
	ExitInvalid = 1 // at least one input or form failed validation
	ExitError   = 2 // configuration, plan or transport error
)

// exitError carries an exit code without printing anything further
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// globalOptions holds the persistent flags
type globalOptions struct {
	cfgFile string
	verbose bool
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "formplan",
		Short: "Declarative form validation",
		Long: `formplan validates form submissions against declarative plans.

A plan is an ordered list of steps, each naming the input fields it reads,
the capability that checks them and whether they are required. Plans come
from a catalog file (YAML or TOML) and from the built-in forms.

Commands:
  validate      - validate JSON inputs locally or against a server
  lint          - check every form of a catalog
  capabilities  - list the registered capabilities
  messages      - list message keys and their text
  store         - maintain the values checked by validateUnique
  serve         - run the formplan.v1.Validation gRPC service
  version       - print build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: ./configs/formplan.toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newValidateCommand(opts),
		newLintCommand(opts),
		newCapabilitiesCommand(opts),
		newMessagesCommand(opts),
		newStoreCommand(opts),
		newServeCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line and prints a failure to stderr
func Execute() error {
	err := NewRootCommand().Execute()
	var exit *exitError
	if err != nil && !errors.As(err, &exit) {
		printError(err)
	}
	return err
}

// ExitCode maps the result of Execute to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return ExitError
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", colorRed.Sprint("error:"), err)
}
