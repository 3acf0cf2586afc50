// Package forms holds the form definitions written in Go and the Set
// abstraction shared with plan catalogs.
package forms

import (
	"sort"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	"github.com/msto63/formplan/foundation/core/validation"
)

// Set is a named collection of forms. *planfile.Catalog, *planfile.Source
// and Builtin implement it.
type Set interface {
	Names() []string
	Validator(name string, registry *validation.Registry, opts validation.Options) (*validation.Validator, error)
}

// Definition is a form written in Go
type Definition struct {
	Description string
	Composite   []string
	Plan        validation.PlanFunc
}

// Builtin is a Set of Go definitions
type Builtin map[string]Definition

// Standard returns the built-in forms
func Standard() Builtin {
	return Builtin{
		"account": {
			Description: "User account with password confirmation and role",
			Composite:   []string{"password"},
			Plan:        AccountPlan,
		},
		"booking": {
			Description: "Room booking for a date range",
			Composite:   []string{"dates"},
			Plan:        BookingPlan,
		},
	}
}

// Names returns the form names in sorted order
func (b Builtin) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validator builds a validator for the named form
func (b Builtin) Validator(name string, registry *validation.Registry, opts validation.Options) (*validation.Validator, error) {
	def, ok := b[name]
	if !ok {
		return nil, notFound(name)
	}
	opts.Name = name
	opts.CompositeFields = append([]string(nil), def.Composite...)
	return validation.New(registry, def.Plan, opts), nil
}

// Union resolves names against sets in order; the first set that knows a
// name wins
func Union(sets ...Set) Set {
	return union(sets)
}

type union []Set

func (u union) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range u {
		for _, name := range s.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func (u union) Validator(name string, registry *validation.Registry, opts validation.Options) (*validation.Validator, error) {
	for _, s := range u {
		v, err := s.Validator(name, registry, opts)
		if err == nil {
			return v, nil
		}
		if !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
			return nil, err
		}
	}
	return nil, notFound(name)
}

func notFound(name string) error {
	return mdwerror.Newf("unknown form %q", name).
		WithCode(mdwerror.CodeNotFound).
		WithOperation("forms.Validator").
		WithDetail("form", name)
}
