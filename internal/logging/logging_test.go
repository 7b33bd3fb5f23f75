package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	err := Initialize(Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	defer func() {
		_ = Initialize(DefaultConfig())
	}()

	Named("loader").Infow("loaded source", "rows", 3)
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"loaded source"`)
	assert.Contains(t, string(data), `"logger":"loader"`)
	assert.Contains(t, string(data), `"rows":3`)
}

func TestInitialize_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	require.NoError(t, Initialize(Config{Level: "error", Format: "json", Output: path}))
	defer func() {
		_ = Initialize(DefaultConfig())
	}()

	Sugar.Info("hidden")
	Sugar.Error("shown")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestInitialize_BadPath(t *testing.T) {
	err := Initialize(Config{Output: filepath.Join(t.TempDir(), "missing", "run.log")})
	assert.Error(t, err)
}

func TestNamed_SatisfiesLogger(t *testing.T) {
	require.NoError(t, Initialize(DefaultConfig()))
	require.NotNil(t, Base)
	require.NotNil(t, Sugar)

	var l Logger = Named("calc")
	assert.NotNil(t, l)
	assert.Equal(t, Nop(), OrNop(nil))
}
