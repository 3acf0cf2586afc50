package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/msto63/formplan/internal/service"
)

type validateOptions struct {
	form     string
	refsFile string
	server   string
	locale   string
	jobs     int
}

// validator is satisfied by the local service and the remote client
type validator interface {
	Validate(ctx context.Context, req service.Request) (*service.Response, error)
}

type inputResult struct {
	path string
	resp *service.Response
}

func newValidateCommand(global *globalOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate --form NAME [--refs FILE] INPUT.json...",
		Short: "Validate JSON inputs against a form",
		Long: `Validate one or more JSON inputs against a form.

Inputs are validated concurrently and reported in argument order. Use "-"
to read an input from stdin. With --server the inputs are sent to a
running formplan service instead of being validated locally.

Exit status is 1 when any input fails validation and 2 on errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, global, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.form, "form", "f", "", "form name")
	cmd.Flags().StringVar(&opts.refsFile, "refs", "", "JSON or YAML file with reference data")
	cmd.Flags().StringVar(&opts.server, "server", "", "validate against a formplan server at ADDR")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "message locale (default: configured locale)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 4, "inputs validated in parallel")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}

func runValidate(cmd *cobra.Command, global *globalOptions, opts *validateOptions, args []string) error {
	a, err := newApp(global)
	if err != nil {
		return err
	}

	var refs map[string]any
	if opts.refsFile != "" {
		if refs, err = readObject(opts.refsFile); err != nil {
			return err
		}
	}

	v, closeFn, err := openValidator(a, opts.server)
	if err != nil {
		return err
	}
	defer closeFn()

	results := make([]inputResult, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	if opts.jobs > 0 {
		g.SetLimit(opts.jobs)
	}
	for i, path := range args {
		g.Go(func() error {
			input, err := readObject(path)
			if err != nil {
				return err
			}
			resp, err := v.Validate(ctx, service.Request{
				Form:   opts.form,
				Input:  input,
				Refs:   refs,
				Locale: opts.locale,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = inputResult{path: path, resp: resp}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := printResults(cmd.OutOrStdout(), results)
	if failed > 0 {
		return &exitError{code: ExitInvalid}
	}
	return nil
}

func openValidator(a *app, server string) (validator, func(), error) {
	if server != "" {
		client, err := service.Dial(server, a.logger)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	}

	store, lookup, _, err := a.openLookup()
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() { store.Close() }

	registry, err := a.registry(lookup)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	set, _, err := a.forms()
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	svc, err := service.NewService(service.Config{
		Forms:    set,
		Registry: registry,
		Messages: a.messages,
		Logger:   a.logger,
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return svc, closeStore, nil
}

// printResults writes one block per input and returns the number of
// failed inputs
func printResults(w io.Writer, results []inputResult) int {
	failed := 0
	for _, r := range results {
		if r.resp.Ok {
			fmt.Fprintf(w, "%s %s\n", colorGreen.Sprint("ok"), r.path)
			printValues(w, r.resp.Values)
			continue
		}

		failed++
		fmt.Fprintf(w, "%s %s\n", colorRed.Sprint("invalid"), r.path)
		for _, field := range r.resp.Fields {
			for _, msg := range r.resp.Errors[field] {
				fmt.Fprintf(w, "  %s: %s\n", colorBold.Sprint(field), msg)
			}
		}
	}
	return failed
}

func printValues(w io.Writer, values map[string]any) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		data, err := json.Marshal(values[k])
		if err != nil {
			data = []byte(fmt.Sprint(values[k]))
		}
		fmt.Fprintf(w, "  %s = %s\n", k, data)
	}
}

