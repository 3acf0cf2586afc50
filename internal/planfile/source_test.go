package planfile

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
)

const oneForm = `
forms:
  signup:
    steps:
      - field: username
        method: validateUsername
`

const twoForms = oneForm + `
  contact:
    steps:
      - field: email
        method: validateEmail
`

func TestSourceReload(t *testing.T) {
	path := writeFile(t, t.TempDir(), "forms.yaml", oneForm)

	s, err := Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"signup"}, s.Catalog().Names())

	var reloads, failures int32
	s.OnReload(func(c *Catalog, err error) {
		if err != nil {
			assert.Nil(t, c)
			atomic.AddInt32(&failures, 1)
			return
		}
		atomic.AddInt32(&reloads, 1)
	})

	require.NoError(t, os.WriteFile(path, []byte(twoForms), 0o644))
	require.NoError(t, s.Reload())
	assert.Equal(t, []string{"contact", "signup"}, s.Catalog().Names())
	assert.NoError(t, s.Err())

	require.NoError(t, os.WriteFile(path, []byte("forms: [\n"), 0o644))
	err = s.Reload()
	require.Error(t, err)
	assert.True(t, mdwerror.HasCode(s.Err(), mdwerror.CodePlanInvalid))
	assert.Equal(t, []string{"contact", "signup"}, s.Catalog().Names(), "previous catalog is kept")
	assert.Equal(t, int32(1), atomic.LoadInt32(&reloads))
	assert.Equal(t, int32(1), atomic.LoadInt32(&failures))
}

func TestOpenFailsOnBrokenFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "forms.yaml", "forms: [\n")
	_, err := Open(path, nil)
	assert.Error(t, err)
}

func TestSourceWatch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "forms.yaml", oneForm)

	s, err := Open(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, 20*time.Millisecond) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(twoForms), 0o644))
	require.Eventually(t, func() bool {
		return s.Catalog().Len() == 2
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("forms: [\n"), 0o644))
	require.Eventually(t, func() bool {
		return s.Err() != nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, s.Catalog().Len())

	assert.Error(t, s.Watch(ctx, time.Millisecond), "second watcher is rejected")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
