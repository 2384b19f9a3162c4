package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mdnote/internal/index"
	pkgconfig "github.com/starford/mdnote/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.AuthEnabled())
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, AuthModeDisabled, cfg.Mode)
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.AuthEnabled())
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is empty")
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	assert.Error(t, cfg.Validate())
}

func TestStorageConfig_Driver(t *testing.T) {
	cfg := StorageConfig{Dir: "d"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, index.DriverModernc, cfg.Driver)

	cfg.Driver = index.DriverMattn
	assert.NoError(t, cfg.Validate())

	cfg.Driver = "postgres"
	assert.Error(t, cfg.Validate())

	assert.Error(t, (&StorageConfig{}).Validate())
}

func TestFullConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Inbox.Enabled())
	assert.True(t, cfg.Index.AutoSyncLinks)
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	assert.Error(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Setenv("MDNOTE_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  log_level: debug
  http: { port: 9090 }
storage:
  dir: /var/lib/mdnote
settings:
  cache_ttl: 30s
inbox:
  dir: /srv/inbox
auth:
  mode: token
  token: ${MDNOTE_TEST_TOKEN}
`), 0o644))

	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.Load(path, cfg))

	assert.Equal(t, 9090, cfg.App.HTTP.Port)
	assert.Equal(t, "/var/lib/mdnote", cfg.Storage.Dir)
	assert.Equal(t, index.DriverModernc, cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.Settings.CacheTTL)
	assert.True(t, cfg.Inbox.Enabled())
	assert.Equal(t, "s3cret", cfg.Auth.Token)
	assert.True(t, cfg.Index.AutoSyncLinks)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vault:\n  path: ./vault\n"), 0o644))
	assert.Error(t, pkgconfig.Load(path, NewDefaultConfig()))
}

func TestLoadWithDefaults_MissingFile(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"), "", cfg))
	assert.Equal(t, "./data", cfg.Storage.Dir)
}
