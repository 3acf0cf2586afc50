package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	"github.com/msto63/formplan/internal/service"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const signupCatalog = `
forms:
  signup:
    steps:
      - field: username
        method: validateUsername
        required: true
      - field: username
        method: validateUnique
      - field: email
        method: validateEmail
        required: true
      - field: role
        method: validateInSet
        args: ["$ref:roles"]
`

const brokenCatalog = `
forms:
  signup:
    steps:
      - field: username
        method: validateUsername
  typo:
    steps:
      - field: email
        method: validateEmial
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// setup writes a config pointing at catalog inside a temp dir
func setup(t *testing.T, catalog string, extra string) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	plans := filepath.Join(dir, "forms.yaml")
	if catalog != "" {
		writeFile(t, dir, "forms.yaml", catalog)
	}
	cfgPath = writeFile(t, dir, "formplan.toml", fmt.Sprintf(`
[general]
log_level = "error"

[plans]
path = %q

[store]
path = %q
cache_ttl = "1m"
%s`, plans, filepath.Join(dir, "data", "formplan.db"), extra))
	return dir, cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"validate", "lint", "capabilities", "messages", "store", "serve", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestRootLongListsCommands(t *testing.T) {
	root := NewRootCommand()
	for _, sub := range root.Commands() {
		if sub.Hidden || sub.Name() == "help" || sub.Name() == "completion" {
			continue
		}
		assert.Contains(t, root.Long, "\n  "+sub.Name()+" ", "command %s missing from the overview", sub.Name())
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitInvalid, ExitCode(&exitError{code: ExitInvalid}))
	assert.Equal(t, ExitError, ExitCode(fmt.Errorf("boom")))
}

func TestValidate(t *testing.T) {
	dir, cfg := setup(t, signupCatalog, "")
	refs := writeFile(t, dir, "refs.yaml", "roles: [admin, user]\n")
	good := writeFile(t, dir, "good.json", `{"username": "alice", "email": "Alice@Example.com", "role": "user"}`)
	bad := writeFile(t, dir, "bad.json", `{"username": "1x", "role": "root"}`)

	t.Run("all valid", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "validate", "--form", "signup", "--refs", refs, good)
		require.NoError(t, err)
		assert.Contains(t, out, "ok "+good)
		assert.Contains(t, out, `email = "alice@example.com"`)
	})

	t.Run("one invalid", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "validate", "--form", "signup", "--refs", refs, good, bad)
		require.Error(t, err)
		assert.Equal(t, ExitInvalid, ExitCode(err))
		assert.Contains(t, out, "invalid "+bad)
		assert.Contains(t, out, "email: This field is required")
		assert.Contains(t, out, "role: Must be one of: admin, user")
		assert.Less(t, bytes.Index([]byte(out), []byte(good)), bytes.Index([]byte(out), []byte(bad)), "results keep argument order")
	})

	t.Run("builtin form", func(t *testing.T) {
		booking := writeFile(t, dir, "booking.json", `{"uid": 12, "dates_start": "2026-11-01", "dates_end": "2026-11-03"}`)
		out, err := run(t, "--config", cfg, "validate", "-f", "booking", booking)
		require.NoError(t, err)
		assert.Contains(t, out, "uid = 12")
	})

	t.Run("unknown form", func(t *testing.T) {
		_, err := run(t, "--config", cfg, "validate", "--form", "nope", good)
		require.Error(t, err)
		assert.Equal(t, ExitError, ExitCode(err))
		assert.True(t, mdwerror.HasCode(err, mdwerror.CodeNotFound))
	})

	t.Run("missing ref is a plan error", func(t *testing.T) {
		_, err := run(t, "--config", cfg, "validate", "--form", "signup", good)
		require.Error(t, err)
		assert.True(t, mdwerror.HasCode(err, mdwerror.CodePlanInvalid))
	})

	t.Run("unreadable input", func(t *testing.T) {
		_, err := run(t, "--config", cfg, "validate", "--form", "signup", filepath.Join(dir, "missing.json"))
		require.Error(t, err)
		assert.True(t, mdwerror.HasCode(err, mdwerror.CodeInvalidInput))
	})
}

func TestValidateUsesStore(t *testing.T) {
	dir, cfg := setup(t, signupCatalog, "")
	refs := writeFile(t, dir, "refs.yaml", "roles: [admin, user]\n")
	input := writeFile(t, dir, "alice.json", `{"username": "alice", "email": "alice@example.com", "role": "user"}`)

	_, err := run(t, "--config", cfg, "validate", "--form", "signup", "--refs", refs, input)
	require.NoError(t, err)

	_, err = run(t, "--config", cfg, "store", "add", "username", "alice")
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "validate", "--form", "signup", "--refs", refs, input)
	require.Error(t, err)
	assert.Equal(t, ExitInvalid, ExitCode(err))
	assert.Contains(t, out, "invalid "+input)
	assert.Contains(t, out, "username: This value is already taken")
}

func TestLint(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		_, cfg := setup(t, signupCatalog, "")
		out, err := run(t, "--config", cfg, "lint")
		require.NoError(t, err)
		assert.Contains(t, out, "signup")
	})

	t.Run("unknown capability", func(t *testing.T) {
		_, cfg := setup(t, brokenCatalog, "")
		out, err := run(t, "--config", cfg, "lint")
		require.Error(t, err)
		assert.Equal(t, ExitInvalid, ExitCode(err))
		assert.Contains(t, out, "FAIL typo")
		assert.Contains(t, out, "1 of 2 forms failed")
	})

	t.Run("explicit catalog", func(t *testing.T) {
		dir, cfg := setup(t, "", "")
		path := writeFile(t, dir, "other.yaml", signupCatalog)
		_, err := run(t, "--config", cfg, "lint", path)
		require.NoError(t, err)
	})
}

func TestCapabilities(t *testing.T) {
	_, cfg := setup(t, "", "")
	out, err := run(t, "--config", cfg, "capabilities")
	require.NoError(t, err)
	for _, id := range []string{"validateEmail", "validateRequiredField", "validateUnique", "validateDateRange"} {
		assert.Contains(t, out, id+"\n")
	}
}

func TestMessages(t *testing.T) {
	_, cfg := setup(t, "", "")

	out, err := run(t, "--config", cfg, "messages", "--locale", "de", "validation.email")
	require.NoError(t, err)
	assert.Contains(t, out, "Muss eine gültige E-Mail-Adresse sein")
	assert.NotContains(t, out, "validation.required")

	out, err = run(t, "--config", cfg, "messages", "validation.number.range")
	require.NoError(t, err)
	assert.Contains(t, out, "{{.min}}")

	_, err = run(t, "--config", cfg, "messages", "--locale", "xx")
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodeInvalidInput))
}

func TestStore(t *testing.T) {
	_, cfg := setup(t, "", "")

	out, err := run(t, "--config", cfg, "store", "add", "username", "bob", " Alice ", "BOB")
	require.NoError(t, err)
	assert.Contains(t, out, "added   bob")
	assert.Contains(t, out, "exists  BOB")

	out, err = run(t, "--config", cfg, "store", "list", "username")
	require.NoError(t, err)
	assert.Equal(t, "Alice\nbob\n", out)

	out, err = run(t, "--config", cfg, "store", "remove", "username", "alice", "carol")
	require.NoError(t, err)
	assert.Contains(t, out, "removed alice")
	assert.Contains(t, out, "absent  carol")

	out, err = run(t, "--config", cfg, "store", "list", "username")
	require.NoError(t, err)
	assert.Equal(t, "bob\n", out)

	_, err = run(t, "--config", cfg, "store", "add", "username")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "formplan v")

	out, err = run(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"api": "v1"`)
}

func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	return lis.Addr().(*net.TCPAddr).Port
}

func TestServe(t *testing.T) {
	port := freePort(t)
	dir, cfg := setup(t, signupCatalog, fmt.Sprintf(`
[server]
host = "127.0.0.1"
port = %d
shutdown_timeout = "2s"
`, port))

	_, err := run(t, "--config", cfg, "store", "add", "username", "bob")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := runContext(t, ctx, "--config", cfg, "serve", "--watch")
		done <- err
	}()

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	client, err := service.Dial(addr, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool {
		callCtx, callCancel := context.WithTimeout(ctx, time.Second)
		defer callCancel()
		names, err := client.ListForms(callCtx)
		return err == nil && len(names) == 3
	}, 10*time.Second, 50*time.Millisecond)

	resp, err := client.Validate(ctx, service.Request{
		Form:  "signup",
		Input: map[string]any{"username": "alice", "email": "a@example.com"},
		Refs:  map[string]any{"roles": []string{"user"}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Ok, "errors: %v", resp.Errors)

	resp, err = client.Validate(ctx, service.Request{
		Form:  "signup",
		Input: map[string]any{"username": "Bob", "email": "b@example.com"},
		Refs:  map[string]any{"roles": []string{"user"}},
	})
	require.NoError(t, err)
	assert.False(t, resp.Ok)
	assert.Equal(t, []string{"This value is already taken"}, resp.Errors["username"])

	_, err = os.Stat(filepath.Join(dir, "data", "formplan.db"))
	assert.NoError(t, err, "uniqueness store is created")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
