package forms

import (
	mdwerror "github.com/msto63/formplan/foundation/core/error"
	"github.com/msto63/formplan/foundation/core/validation"
	"github.com/msto63/formplan/internal/uniqueness"
)

// CapUnique is the uniqueness capability the account form expects in the
// registry
const CapUnique = uniqueness.CapUnique

// RefRoles names the reference entry listing the assignable roles
const RefRoles = "roles"

// AccountPlan validates a user account. The username is checked for format
// first and for uniqueness second; password and password_confirm report
// under the composite "password" key. Roles come from refs.
func AccountPlan(_ map[string]any, refs map[string]any) ([]validation.RawStep, error) {
	roles, ok := validation.Lookup(refs, RefRoles)
	if !ok {
		return nil, mdwerror.New("account form needs the roles reference").
			WithCode(mdwerror.CodePlanInvalid).
			WithOperation("forms.AccountPlan").
			WithDetail("ref", RefRoles)
	}

	return []validation.RawStep{
		{
			"field":    "username",
			"method":   "validateUsername",
			"required": true,
		},
		{
			"field":  "username",
			"method": string(CapUnique),
			"args":   []any{"username"},
		},
		{
			"field":    "email",
			"method":   "validateEmail",
			"required": true,
		},
		{
			"field":    "password",
			"method":   "validateString",
			"args":     []any{8, 128},
			"required": true,
		},
		{
			"field":       "password",
			"fields":      []string{"password", "password_confirm"},
			"method":      "validateMatch",
			"required":    true,
			"requiredMsg": "Please enter the password twice",
		},
		{
			"field":    "role",
			"method":   "validateInSet",
			"args":     []any{roles},
			"required": true,
		},
		{
			"field":  "display_name",
			"method": "validateString",
			"args":   []any{0, 64},
		},
	}, nil
}
