package cli

import (
	"path/filepath"
	"testing"

	"github.com/openmirror/landingzone/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lzmirror.yml")
	cfgFile = path
	initDatabase = "SalesDB"
	t.Cleanup(func() {
		cfgFile = ""
		initDatabase = ""
	})

	require.NoError(t, runInit(initCmd, nil))

	// The generated file must pass LoadConfig's validation as-is.
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "SalesDB", cfg.Mirror.Database)
	assert.Equal(t, "SalesDB/Files/LandingZone/Orders/", cfg.TableID("Orders").Prefix())

	// A second init refuses to overwrite.
	assert.Error(t, runInit(initCmd, nil))
}
