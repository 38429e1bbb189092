package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.ini")

	apikey, secret, err := generate(path, "system/*,status/get")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(apikey, keyPrefix))
	assert.GreaterOrEqual(t, len(apikey), 12)
	assert.LessOrEqual(t, len(apikey), 40)
	assert.GreaterOrEqual(t, len(secret), 40)
	assert.LessOrEqual(t, len(secret), 128)

	f, err := ini.Load(path)
	require.NoError(t, err)
	sec, err := f.GetSection(apikey)
	require.NoError(t, err)
	assert.Equal(t, secret, sec.Key("secret").String())
	assert.Equal(t, "system/*,status/get", sec.Key("permit").String())
}

func TestGenerateAppendsToExistingStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.ini")

	first, _, err := generate(path, "")
	require.NoError(t, err)
	second, _, err := generate(path, "")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	f, err := ini.Load(path)
	require.NoError(t, err)
	assert.True(t, f.HasSection(first))
	assert.True(t, f.HasSection(second))
}
