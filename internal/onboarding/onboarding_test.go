package onboarding

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erkhq/erk/internal/config"
)

func TestDetectDefaultsErksRootUnderHome(t *testing.T) {
	home := t.TempDir()

	st, err := Detect(home)
	require.NoError(t, err)
	require.False(t, st.AlreadyConfigured)
	require.Equal(t, filepath.Join(home, "erks"), st.Defaults.ErksRoot)
}

func TestDetectReportsAlreadyConfigured(t *testing.T) {
	home := t.TempDir()
	existing := &config.GlobalConfig{ErksRoot: filepath.Join(home, "custom-erks"), UseStackTool: true}
	require.NoError(t, existing.Save(config.GlobalConfigPath(home)))

	st, err := Detect(home)
	require.NoError(t, err)
	require.True(t, st.AlreadyConfigured)
	require.Equal(t, filepath.Join(home, "custom-erks"), st.Defaults.ErksRoot)
	require.True(t, st.Defaults.UseStackTool)
}

func TestApplyWritesGlobalConfig(t *testing.T) {
	home := t.TempDir()
	cfg := &config.GlobalConfig{ErksRoot: filepath.Join(home, "erks"), ShowPRInfo: true}

	require.NoError(t, Apply(home, cfg))

	loaded, err := config.LoadGlobal(config.GlobalConfigPath(home))
	require.NoError(t, err)
	require.Equal(t, cfg.ErksRoot, loaded.ErksRoot)
	require.True(t, loaded.ShowPRInfo)
}
