package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Provider string `json:"provider"`
	Url      string `json:"url"`
	Timeout  int    `json:"timeout_seconds"`
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("conf", "odk.local.json5"), LocalPath(filepath.Join("conf", "odk.json5")))
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "odk.json5")

	err := os.WriteFile(name, []byte(`{
		// base config
		provider: "ona",
		url: "https://api.ona.io",
		timeout_seconds: 10,
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "odk.local.json5"), []byte(`{url: "https://esurv.example.org"}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		Provider: "ona",
		Url:      "https://esurv.example.org",
		Timeout:  10,
	}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "odk.json5"))
	require.True(t, os.IsNotExist(err))
}
