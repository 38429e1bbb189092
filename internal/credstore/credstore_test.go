package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeStore(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validSecret = "0a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d" // 40 chars

func TestLoad(t *testing.T) {
	path := writeStore(t, `
[PFFAtestkey001]
secret = `+validSecret+`
permit = system/*, status/get

[PFFAnopermit01]
secret = `+validSecret+`
`)
	loader := NewLoader(path, zaptest.NewLogger(t))

	t.Run("resolves key with permit", func(t *testing.T) {
		cred, err := loader.Load("PFFAtestkey001")
		require.NoError(t, err)
		assert.Equal(t, "PFFAtestkey001", cred.APIKey)
		assert.Equal(t, validSecret, cred.Secret)
		assert.Equal(t, "system/*, status/get", cred.Permit)
	})

	t.Run("permit defaults to empty", func(t *testing.T) {
		cred, err := loader.Load("PFFAnopermit01")
		require.NoError(t, err)
		assert.Equal(t, "", cred.Permit)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := loader.Load("PFFAmissing001")
		require.ErrorIs(t, err, ErrUnknownKey)
	})
}

func TestLoadStoreUnavailable(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		loader := NewLoader(filepath.Join(t.TempDir(), "nope.ini"), zaptest.NewLogger(t))
		_, err := loader.Load("PFFAtestkey001")
		require.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("directory instead of file", func(t *testing.T) {
		loader := NewLoader(t.TempDir(), zaptest.NewLogger(t))
		_, err := loader.Load("PFFAtestkey001")
		require.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestLoadStoreMalformed(t *testing.T) {
	path := writeStore(t, "this line has no delimiter\n")
	loader := NewLoader(path, zaptest.NewLogger(t))
	_, err := loader.Load("PFFAtestkey001")
	require.ErrorIs(t, err, ErrStoreMalformed)
}

func TestLoadSkipsEmptySecret(t *testing.T) {
	path := writeStore(t, `
[PFFAemptysec01]
secret =
permit = system/*
`)
	loader := NewLoader(path, zaptest.NewLogger(t))
	_, err := loader.Load("PFFAemptysec01")
	require.ErrorIs(t, err, ErrUnknownKey)
}

func TestLoadExcludesDemoSections(t *testing.T) {
	// A section literally named after a demo key is never selectable, even
	// when its secret differs from the documented demo secret.
	path := writeStore(t, `
[PFFAexample01]
secret = `+validSecret+`
permit = *
`)
	loader := NewLoader(path, zaptest.NewLogger(t))
	_, err := loader.Load("PFFAexample01")
	require.ErrorIs(t, err, ErrUnknownKey)
}

func TestDemoDenylist(t *testing.T) {
	assert.True(t, IsDemoKey("PFFAexample01"))
	assert.True(t, IsDemoKey("PFFAexample02"))
	assert.False(t, IsDemoKey("PFFAtestkey001"))

	assert.True(t, IsDemoSecret("abcdefghijklmnopqrstuvwxyz0123456789abcd"))
	assert.False(t, IsDemoSecret(validSecret))
}
