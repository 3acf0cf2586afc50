package planfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	"github.com/msto63/formplan/foundation/core/validation"
	"github.com/msto63/formplan/foundation/utils/validationx"
)

const catalogYAML = `
forms:
  signup:
    description: Account creation
    composite: [password]
    steps:
      - field: username
        method: validateUsername
        required: true
      - field: password
        fields: [password, password_confirm]
        method: validateMatch
        required: true
      - field: role
        method: validateInSet
        args: ["$ref:roles"]
        required: true
  booking:
    composite: [dates]
    steps:
      - field: uid
        method: validateNumberInRange
        args: [1, 20000]
        required: true
      - field: dates
        fields: [dates_start, dates_end]
        method: validateDateRange
        required: true
      - field: notes
        method: validateOptional
`

const catalogTOML = `
[forms.booking]
composite = ["dates"]

[[forms.booking.steps]]
field = "uid"
method = "validateNumberInRange"
args = [1, 20000]
required = true

[[forms.booking.steps]]
field = "dates"
fields = ["dates_start", "dates_end"]
method = "validateDateRange"
required = true
`

func newRegistry(t *testing.T) *validation.Registry {
	t.Helper()
	r := validation.NewRegistry(nil)
	require.NoError(t, validationx.Register(r, nil))
	r.Freeze()
	return r
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseYAML(t *testing.T) {
	c, err := Parse([]byte(catalogYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, []string{"booking", "signup"}, c.Names())
	assert.Equal(t, 2, c.Len())

	f, ok := c.Form("signup")
	require.True(t, ok)
	assert.Equal(t, "Account creation", f.Description)
	assert.Equal(t, []string{"password"}, f.Composite)
	assert.Len(t, f.Steps, 3)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("forms:\n  signup:\n    compsite: [dates]\n"), FormatYAML)
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodePlanInvalid), "got %v", err)

	_, err = Parse([]byte("[forms.signup]\ncompsite = [\"dates\"]\n"), FormatTOML)
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodePlanInvalid), "got %v", err)
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse(nil, FormatYAML)
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestSignupValidator(t *testing.T) {
	c, err := Parse([]byte(catalogYAML), FormatYAML)
	require.NoError(t, err)

	v, err := c.Validator("signup", newRegistry(t), validation.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "signup", v.Name())
	assert.Equal(t, []string{"password"}, v.CompositeFields())

	refs := map[string]any{"roles": []string{"admin", "user"}}

	t.Run("valid", func(t *testing.T) {
		outcome, err := v.ValidateData(context.Background(), map[string]any{
			"username":         "alice",
			"password":         "s3cret!",
			"password_confirm": "s3cret!",
			"role":             "user",
		}, refs)
		require.NoError(t, err)
		require.True(t, outcome.Ok(), "report: %v", outcome.Report())
		assert.Equal(t, map[string]any{"username": "alice", "password": "s3cret!", "role": "user"}, outcome.Values())
	})

	t.Run("composite password report", func(t *testing.T) {
		outcome, err := v.ValidateData(context.Background(), map[string]any{
			"username": "alice",
			"password": "s3cret!",
			"role":     "root",
		}, refs)
		require.NoError(t, err)
		require.False(t, outcome.Ok())
		assert.Equal(t, map[string][]string{
			"password": {"This field is required"},
			"role":     {"Must be one of: admin, user"},
		}, outcome.Report().Payload())
	})

	t.Run("missing reference", func(t *testing.T) {
		_, err := v.ValidateData(context.Background(), map[string]any{"username": "alice"}, nil)
		require.Error(t, err)
		assert.True(t, mdwerror.HasCode(err, mdwerror.CodePlanInvalid))
		assert.Contains(t, err.Error(), "roles")
	})

	t.Run("catalog stays untouched", func(t *testing.T) {
		f, _ := c.Form("signup")
		assert.Equal(t, []interface{}{"$ref:roles"}, f.Steps[2]["args"])
	})
}

func TestBookingFromTOML(t *testing.T) {
	c, err := Parse([]byte(catalogTOML), FormatTOML)
	require.NoError(t, err)

	v, err := c.Validator("booking", newRegistry(t), validation.DefaultOptions())
	require.NoError(t, err)

	outcome, err := v.ValidateData(context.Background(), map[string]any{
		"uid":         500,
		"dates_start": "2026-10-05",
		"dates_end":   "2026-10-01",
	}, nil)
	require.NoError(t, err)
	require.False(t, outcome.Ok())
	assert.Equal(t, []string{"dates"}, outcome.Report().Fields())
	assert.Equal(t, []string{"End date must not be before start date"}, outcome.Report().Messages("dates"))
}

func TestBlankIsMissingOverride(t *testing.T) {
	doc := `
forms:
  raw:
    blank_is_missing: false
    steps:
      - field: comment
        method: validateOptional
        required: true
`
	c, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err)

	v, err := c.Validator("raw", newRegistry(t), validation.DefaultOptions())
	require.NoError(t, err)

	outcome, err := v.ValidateData(context.Background(), map[string]any{"comment": "   "}, nil)
	require.NoError(t, err)
	require.True(t, outcome.Ok())
	assert.Equal(t, "   ", outcome.Values()["comment"])
}

func TestUnknownForm(t *testing.T) {
	c, err := Parse([]byte(catalogYAML), FormatYAML)
	require.NoError(t, err)

	_, err = c.Validator("nope", newRegistry(t), validation.Options{})
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodeNotFound))

	_, err = c.Plan("nope")
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodeNotFound))
}

func TestLint(t *testing.T) {
	doc := `
forms:
  good:
    steps:
      - field: role
        method: validateInSet
        args: ["$ref:roles"]
  typo:
    steps:
      - field: email
        method: validateEmial
  broken:
    steps:
      - field: uid
        method: validateNumberInRange
        args: {min: 1}
`
	c, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err)

	problems := c.Lint(context.Background(), newRegistry(t), nil)
	require.Len(t, problems, 2)

	assert.Equal(t, "broken", problems[0].Form)
	assert.True(t, mdwerror.HasCode(problems[0].Err, mdwerror.CodePlanInvalid))
	assert.Equal(t, "typo", problems[1].Form)
	assert.True(t, mdwerror.HasCode(problems[1].Err, mdwerror.CodeUnknownCapability))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	c, err := Load(writeFile(t, dir, "forms.yml", catalogYAML))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "forms.yml"), c.Path())

	_, err = Load(writeFile(t, dir, "forms.json", "{}"))
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodeConfigError))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodeNotFound))

	_, err = Load(writeFile(t, dir, "broken.yaml", "forms: [\n"))
	require.Error(t, err)
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodePlanInvalid))
	var mdwErr *mdwerror.Error
	require.ErrorAs(t, err, &mdwErr)
	path, _ := mdwErr.Detail("path")
	assert.Equal(t, filepath.Join(dir, "broken.yaml"), path)
}
