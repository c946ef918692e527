package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "txflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sepolia", cfg.Network)
	assert.Equal(t, ".env", cfg.EnvFile)
	assert.Equal(t, 2*time.Minute, cfg.Confirm.Timeout)
	assert.Equal(t, time.Second, cfg.Confirm.PollInterval)
	assert.Equal(t, "deployments", cfg.Records.Dir)
	assert.Equal(t, "ERC721#ERC721", cfg.Deploy.Key)
	assert.Equal(t, []string{"ProfilePics", "PFP"}, cfg.Deploy.Args)
	assert.Equal(t, "mint", cfg.Mint.Operation)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
network: localhost
confirm:
  timeout: 30s
  poll_interval: 250ms
records:
  dir: /tmp/records
deploy:
  key: Collection#Main
  args: [Avatars, AVT]
mint:
  operation: safeMint
  token_uri: ipfs://token-uri
networks:
  localhost:
    url: http://127.0.0.1:9545
  devnet:
    url: http://devnet:8545
    chain_id: 1337
    key_var: DEVNET_PRIVATE_KEY
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Network)
	assert.Equal(t, 30*time.Second, cfg.Confirm.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Confirm.PollInterval)
	assert.Equal(t, "/tmp/records", cfg.Records.Dir)
	assert.Equal(t, "Collection#Main", cfg.Deploy.Key)
	assert.Equal(t, []string{"Avatars", "AVT"}, cfg.Deploy.Args)
	assert.Equal(t, "safeMint", cfg.Mint.Operation)
	assert.Equal(t, "ipfs://token-uri", cfg.Mint.TokenURI)
	assert.Equal(t, "json", cfg.Log.Format)

	t.Run("network table merges over defaults", func(t *testing.T) {
		table := cfg.NetworkTable()

		local := table["localhost"]
		assert.Equal(t, "http://127.0.0.1:9545", local.URL)
		assert.Equal(t, uint64(31337), local.ChainID)
		assert.Equal(t, "LOCALHOST_PRIVATE_KEY", local.KeyVar)

		devnet := table["devnet"]
		assert.Equal(t, "http://devnet:8545", devnet.URL)
		assert.Equal(t, uint64(1337), devnet.ChainID)
		assert.Equal(t, "DEVNET_PRIVATE_KEY", devnet.KeyVar)

		assert.Contains(t, table, "sepolia")
		assert.Contains(t, table, "lisk-sepolia")
	})
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "network: sepolia\n")
	t.Setenv("TXFLOW_NETWORK", "lisk-sepolia")
	t.Setenv("TXFLOW_CONFIRM_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "lisk-sepolia", cfg.Network)
	assert.Equal(t, 5*time.Second, cfg.Confirm.Timeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidFile(t *testing.T) {
	path := writeConfig(t, "network: [unterminated\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestCredentials(t *testing.T) {
	t.Run("environment first", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), "custom.env")
		require.NoError(t, os.WriteFile(envFile, []byte("A=from-file\nB=only-file\n"), 0o600))
		t.Setenv("A", "from-env")

		cfg := &Config{EnvFile: envFile}
		creds, err := cfg.Credentials()
		require.NoError(t, err)

		v, ok := creds.Lookup("A")
		assert.True(t, ok)
		assert.Equal(t, "from-env", v)

		v, ok = creds.Lookup("B")
		assert.True(t, ok)
		assert.Equal(t, "only-file", v)
	})

	t.Run("explicit missing file", func(t *testing.T) {
		cfg := &Config{EnvFile: filepath.Join(t.TempDir(), "missing.env")}
		_, err := cfg.Credentials()
		assert.Error(t, err)
	})

	t.Run("default missing file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg := &Config{EnvFile: ".env"}
		_, err := cfg.Credentials()
		assert.NoError(t, err)
	})

	t.Run("no file", func(t *testing.T) {
		cfg := &Config{}
		creds, err := cfg.Credentials()
		require.NoError(t, err)
		assert.NotNil(t, creds)
	})
}
