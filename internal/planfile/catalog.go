// Package planfile loads named validation plans from YAML or TOML catalog
// files and keeps them current while the files change.
package planfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	"github.com/msto63/formplan/foundation/core/validation"
)

// RefPrefix marks an argument that is replaced by reference data
const RefPrefix = "$ref:"

// Format is a catalog encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", mdwerror.Newf("unsupported catalog format %q", filepath.Ext(path)).
			WithCode(mdwerror.CodeConfigError).
			WithOperation("planfile.Load").
			WithDetail("path", path)
	}
}

// Form is one named plan as written in the catalog
type Form struct {
	Description string `yaml:"description" toml:"description"`
	// Composite lists the report prefixes that collapse into one entry
	Composite []string `yaml:"composite" toml:"composite"`
	// BlankIsMissing defaults to true
	BlankIsMissing *bool                    `yaml:"blank_is_missing" toml:"blank_is_missing"`
	Steps          []map[string]interface{} `yaml:"steps" toml:"steps"`
}

type document struct {
	Forms map[string]Form `yaml:"forms" toml:"forms"`
}

// Catalog is an immutable set of named forms
type Catalog struct {
	path  string
	forms map[string]Form
	names []string
}

// Load reads a catalog file
func Load(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		code := mdwerror.CodeConfigError
		if os.IsNotExist(err) {
			code = mdwerror.CodeNotFound
		}
		return nil, mdwerror.Wrap(err, "failed to read catalog").
			WithCode(code).
			WithOperation("planfile.Load").
			WithDetail("path", path)
	}

	c, err := Parse(data, format)
	if err != nil {
		var mdwErr *mdwerror.Error
		if errors.As(err, &mdwErr) {
			return nil, mdwErr.WithDetail("path", path)
		}
		return nil, err
	}
	c.path = path
	return c, nil
}

// Parse decodes a catalog. Unknown form keys are rejected.
func Parse(data []byte, format Format) (*Catalog, error) {
	var doc document

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, parseError(err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, parseError(err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, parseError(fmt.Errorf("unknown key %s", undecoded[0]))
		}
	default:
		return nil, mdwerror.Newf("unsupported catalog format %q", format).
			WithCode(mdwerror.CodeConfigError).
			WithOperation("planfile.Parse")
	}

	c := &Catalog{forms: doc.Forms}
	if c.forms == nil {
		c.forms = make(map[string]Form)
	}
	for name := range c.forms {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c, nil
}

func parseError(err error) error {
	return mdwerror.Wrap(err, "failed to parse catalog").
		WithCode(mdwerror.CodePlanInvalid).
		WithOperation("planfile.Parse")
}

// Path returns the file the catalog was loaded from
func (c *Catalog) Path() string {
	return c.path
}

// Names returns the form names in sorted order
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of forms
func (c *Catalog) Len() int {
	return len(c.names)
}

// Form returns the named form
func (c *Catalog) Form(name string) (Form, bool) {
	f, ok := c.forms[name]
	return f, ok
}

// Plan returns the plan function of the named form. Missing references
// fail the call with PLAN_INVALID.
func (c *Catalog) Plan(name string) (validation.PlanFunc, error) {
	f, ok := c.forms[name]
	if !ok {
		return nil, unknownForm(name)
	}
	return f.plan(name, true), nil
}

// Validator builds a validator for the named form. opts.Name and
// opts.CompositeFields are taken from the catalog; BlankIsMissing too when
// the form sets it.
func (c *Catalog) Validator(name string, registry *validation.Registry, opts validation.Options) (*validation.Validator, error) {
	f, ok := c.forms[name]
	if !ok {
		return nil, unknownForm(name)
	}
	return validation.New(registry, f.plan(name, true), f.options(name, opts)), nil
}

// Problem is a lint finding for one form
type Problem struct {
	Form string
	Err  error
}

// Lint normalizes every form and binds it against registry without running
// it. References missing from refs are tolerated so catalogs can be checked
// without production data.
func (c *Catalog) Lint(ctx context.Context, registry *validation.Registry, refs map[string]any) []Problem {
	var problems []Problem
	for _, name := range c.names {
		f := c.forms[name]
		v := validation.New(registry, f.plan(name, false), f.options(name, validation.DefaultOptions()))
		if err := v.Check(ctx, nil, refs); err != nil {
			problems = append(problems, Problem{Form: name, Err: err})
		}
	}
	return problems
}

func (f Form) options(name string, opts validation.Options) validation.Options {
	opts.Name = name
	opts.CompositeFields = append([]string(nil), f.Composite...)
	if f.BlankIsMissing != nil {
		opts.BlankIsMissing = *f.BlankIsMissing
	}
	return opts
}

// plan copies the declared steps for every call, so reference folding
// never leaks into the catalog
func (f Form) plan(name string, strict bool) validation.PlanFunc {
	return func(_ map[string]any, refs map[string]any) ([]validation.RawStep, error) {
		steps := make([]validation.RawStep, len(f.Steps))
		for i, decl := range f.Steps {
			step := make(validation.RawStep, len(decl))
			for k, v := range decl {
				step[k] = v
			}

			if args, ok := step[validation.KeyArgs].([]interface{}); ok {
				folded, err := foldRefs(args, refs, strict)
				if err != nil {
					return nil, err.
						WithDetail("form", name).
						WithDetail("step", i)
				}
				step[validation.KeyArgs] = folded
			}
			steps[i] = step
		}
		return steps, nil
	}
}

// foldRefs replaces "$ref:<key>" arguments with refs[key]
func foldRefs(args []interface{}, refs map[string]any, strict bool) ([]interface{}, *mdwerror.Error) {
	out := make([]interface{}, len(args))
	for i, arg := range args {
		s, isString := arg.(string)
		if !isString || !strings.HasPrefix(s, RefPrefix) {
			out[i] = arg
			continue
		}

		key := strings.TrimPrefix(s, RefPrefix)
		value, ok := validation.Lookup(refs, key)
		if !ok && strict {
			return nil, mdwerror.Newf("reference %q is not available", key).
				WithCode(mdwerror.CodePlanInvalid).
				WithOperation("planfile.Plan").
				WithDetail("ref", key)
		}
		out[i] = value
	}
	return out, nil
}

func unknownForm(name string) error {
	return mdwerror.Newf("unknown form %q", name).
		WithCode(mdwerror.CodeNotFound).
		WithOperation("planfile.Catalog").
		WithDetail("form", name)
}
