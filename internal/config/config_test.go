package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{EnvProvider, EnvUrl, EnvUsername, EnvPassword, EnvTimeoutSeconds} {
		t.Setenv(key, "")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "odk.json5")
	err := os.WriteFile(path, []byte(`{
		provider: "ona",
		url: "https://esurv.example.org/api/v1/data/8604.json",
		username: "from-file",
		timeout_seconds: 20,
	}`), 0600)
	require.NoError(t, err)

	t.Setenv(EnvUsername, "from-env")
	t.Setenv(EnvPassword, "hunter2")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	require.Equal(t, Config{
		Provider:       "ona",
		Url:            "https://esurv.example.org/api/v1/data/8604.json",
		Username:       "from-env",
		Password:       "hunter2",
		TimeoutSeconds: 20,
	}, cfg)
	require.NoError(t, cfg.Validate())

	opts := cfg.Options(nil)
	require.Equal(t, time.Second*20, opts.Timeout)
	require.Equal(t, "from-env", opts.Username)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set
	os.Unsetenv(EnvProvider)
	os.Unsetenv(EnvUrl)
	os.Unsetenv(EnvUsername)

	envFile := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(envFile, []byte("ODK_PROVIDER=kobo\nODK_URL=https://kf.kobotoolbox.org\nODK_USERNAME=alice\n"), 0600)
	require.NoError(t, err)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json5"), envFile)
	require.NoError(t, err)
	require.Equal(t, "kobo", cfg.Provider)
	require.Equal(t, "https://kf.kobotoolbox.org", cfg.Url)
	require.Equal(t, "alice", cfg.Username)
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)
	_, err := Load("", filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	err := Config{Provider: "ona"}.Validate()
	require.ErrorIs(t, err, ErrMissingSetting)
	require.Contains(t, err.Error(), "url, username")

	err = Config{Provider: "ona", Url: "https://x", Username: "u", TimeoutSeconds: -1}.Validate()
	require.Error(t, err)
}

func TestInvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeoutSeconds, "soon")
	_, err := Load("", "")
	require.Error(t, err)
}
