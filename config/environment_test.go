package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvFiles(t *testing.T) {
	primary, secondary := EnvFiles("/srv/jobboard/app")
	assert.Equal(t, filepath.FromSlash("/srv/jobboard/app/.env"), primary)
	assert.Equal(t, filepath.FromSlash("/srv/jobboard/.env"), secondary)
}

func TestLoadEnvironmentMissingFiles(t *testing.T) {
	baseDir, _ := newBaseDir(t)

	environment, err := LoadEnvironment(baseDir, []string{"A=1", "B=x=y", "malformed", "=novalue"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"A": "1", "B": "x=y"}, environment.Map())
}

func TestLoadEnvironmentDoesNotTouchProcessEnv(t *testing.T) {
	baseDir, _ := newBaseDir(t)
	writeEnvFile(t, baseDir, "JOBBOARD_TEST_ONLY_KEY=from-file\n")

	environment, err := LoadEnvironment(baseDir, nil)
	require.NoError(t, err)

	value, ok, err := environment.Lookup("JOBBOARD_TEST_ONLY_KEY")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-file", value)

	_, inProcess := os.LookupEnv("JOBBOARD_TEST_ONLY_KEY")
	assert.False(t, inProcess)
}

func TestLoadEnvironmentUnreadableFile(t *testing.T) {
	baseDir, _ := newBaseDir(t)
	writeEnvFile(t, baseDir, "UNTERMINATED='oops\n")

	_, err := LoadEnvironment(baseDir, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImproperlyConfigured)
}

func TestEnvironmentMapIsACopy(t *testing.T) {
	environment := NewEnvironment(map[string]string{"K": "v"})

	m := environment.Map()
	m["K"] = "changed"

	value, _, _ := environment.Lookup("K")
	assert.Equal(t, "v", value)
	assert.True(t, environment.IsSet("K"))
	assert.False(t, environment.IsSet("missing"))
}
