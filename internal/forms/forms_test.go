package forms

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	"github.com/msto63/formplan/foundation/core/validation"
	"github.com/msto63/formplan/foundation/utils/validationx"
	"github.com/msto63/formplan/internal/uniqueness"
)

func newRegistry(t *testing.T, taken ...string) *validation.Registry {
	t.Helper()
	r := validation.NewRegistry(nil)
	require.NoError(t, validationx.Register(r, nil))
	r.MustRegister(CapUnique, uniqueness.NewCapability(uniqueness.NewMemory(map[string][]string{"username": taken}), nil))
	r.Freeze()
	return r
}

func validate(t *testing.T, r *validation.Registry, form string, input, refs map[string]any) (*validation.Outcome, error) {
	t.Helper()
	v, err := Standard().Validator(form, r, validation.DefaultOptions())
	require.NoError(t, err)
	return v.ValidateData(context.Background(), input, refs)
}

var accountRefs = map[string]any{"roles": []string{"admin", "user"}}

func validAccount() map[string]any {
	return map[string]any{
		"username":         "alice",
		"email":            "Alice@Example.com",
		"password":         "correct horse",
		"password_confirm": "correct horse",
		"role":             "user",
	}
}

func TestAccount(t *testing.T) {
	r := newRegistry(t, "admin")

	t.Run("valid", func(t *testing.T) {
		outcome, err := validate(t, r, "account", validAccount(), accountRefs)
		require.NoError(t, err)
		require.True(t, outcome.Ok(), "report: %v", outcome.Report())
		assert.Equal(t, map[string]any{
			"username":     "alice",
			"email":        "alice@example.com",
			"password":     "correct horse",
			"role":         "user",
			"display_name": nil,
		}, outcome.Values())
	})

	t.Run("username taken", func(t *testing.T) {
		input := validAccount()
		input["username"] = "admin"
		outcome, err := validate(t, r, "account", input, accountRefs)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"username": {"This value is already taken"}}, outcome.Report().Payload())
	})

	t.Run("invalid username is not looked up", func(t *testing.T) {
		input := validAccount()
		input["username"] = "9lives"
		outcome, err := validate(t, r, "account", input, accountRefs)
		require.NoError(t, err)
		assert.Len(t, outcome.Report().Messages("username"), 1)
	})

	t.Run("password problems collapse", func(t *testing.T) {
		input := validAccount()
		input["password"] = "short"
		input["password_confirm"] = "other"
		outcome, err := validate(t, r, "account", input, accountRefs)
		require.NoError(t, err)
		assert.Equal(t, []string{"password"}, outcome.Report().Fields())
		assert.Equal(t, []string{"Must be at least 8 characters; Values do not match"}, outcome.Report().Messages("password"))
	})

	t.Run("missing confirmation", func(t *testing.T) {
		input := validAccount()
		delete(input, "password_confirm")
		outcome, err := validate(t, r, "account", input, accountRefs)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"password": {"Please enter the password twice"}}, outcome.Report().Payload())
	})

	t.Run("empty submission", func(t *testing.T) {
		outcome, err := validate(t, r, "account", map[string]any{"username": "  "}, accountRefs)
		require.NoError(t, err)
		assert.Equal(t, []string{"username", "email", "password", "role"}, outcome.Report().Fields())
	})

	t.Run("roles reference is required", func(t *testing.T) {
		_, err := validate(t, r, "account", validAccount(), nil)
		assert.True(t, mdwerror.HasCode(err, mdwerror.CodePlanInvalid))
	})
}

func TestBooking(t *testing.T) {
	r := newRegistry(t)

	input := func(start, end string) map[string]any {
		return map[string]any{"uid": "500", "dates_start": start, "dates_end": end, "room": "blue"}
	}

	t.Run("valid without references", func(t *testing.T) {
		outcome, err := validate(t, r, "booking", input("2026-10-01", "2026-12-24"), nil)
		require.NoError(t, err)
		require.True(t, outcome.Ok(), "report: %v", outcome.Report())

		values := outcome.Values()
		assert.Equal(t, 500, values["uid"])
		assert.Equal(t, validationx.DateRange{
			Start: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC),
		}, values["dates"])
		assert.NotContains(t, values, "room")
		assert.Contains(t, values, "notes")
	})

	refs := map[string]any{"rooms": []any{"blue", "green"}, "max_booking_days": 14}

	t.Run("references tighten the plan", func(t *testing.T) {
		in := input("2026-10-01", "2026-12-24")
		in["room"] = "red"
		outcome, err := validate(t, r, "booking", in, refs)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{
			"dates": {"Range must not exceed 14 days"},
			"room":  {"Must be one of: blue, green"},
		}, outcome.Report().Payload())
	})

	t.Run("unparseable dates share one entry", func(t *testing.T) {
		outcome, err := validate(t, r, "booking", input("soon", "later"), refs)
		require.NoError(t, err)
		assert.Equal(t, []string{"Must be a valid date; Must be a valid date"}, outcome.Report().Messages("dates"))
	})

	t.Run("uid out of range", func(t *testing.T) {
		in := input("2026-10-01", "2026-10-02")
		in["uid"] = 0
		outcome, err := validate(t, r, "booking", in, refs)
		require.NoError(t, err)
		assert.Equal(t, []string{"Must be between 1 and 20000"}, outcome.Report().Messages("uid"))
	})
}

type fakeSet struct {
	names []string
	err   error
}

func (f fakeSet) Names() []string { return f.names }

func (f fakeSet) Validator(name string, registry *validation.Registry, opts validation.Options) (*validation.Validator, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, n := range f.names {
		if n == name {
			opts.Name = "fake:" + name
			return validation.New(registry, validation.Static(), opts), nil
		}
	}
	return nil, mdwerror.New("no such form").WithCode(mdwerror.CodeNotFound)
}

func TestUnion(t *testing.T) {
	r := newRegistry(t)
	u := Union(fakeSet{names: []string{"contact", "booking"}}, Standard())

	assert.Equal(t, []string{"account", "booking", "contact"}, u.Names())

	v, err := u.Validator("booking", r, validation.Options{})
	require.NoError(t, err)
	assert.Equal(t, "fake:booking", v.Name(), "first set wins")

	v, err = u.Validator("account", r, validation.Options{})
	require.NoError(t, err)
	assert.Equal(t, "account", v.Name())

	_, err = u.Validator("nope", r, validation.Options{})
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodeNotFound))

	broken := Union(fakeSet{err: fmt.Errorf("catalog unavailable")}, Standard())
	_, err = broken.Validator("account", r, validation.Options{})
	assert.EqualError(t, err, "catalog unavailable")
}

func TestStandardPlansNormalize(t *testing.T) {
	for name, def := range Standard() {
		t.Run(name, func(t *testing.T) {
			raw, err := def.Plan(nil, map[string]any{"roles": []string{"user"}, "rooms": []string{"a"}})
			require.NoError(t, err)
			_, err = validation.Normalize(raw)
			require.NoError(t, err)
		})
	}
}
