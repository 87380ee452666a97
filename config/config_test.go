package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ListenAddr:     "127.0.0.1:9000",
		RPCListenAddr:  "127.0.0.1:9001",
		GenesisPath:    "genesis.json",
		PublicKeyPath:  "public_key.json",
		PublicUCIVPath: "public_uciv.json",
		DataDir:        "data",
		WorkerPoolSize: 4,
	}
}

func TestValidateRejectsSameListenAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.RPCListenAddr = cfg.ListenAddr
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresGenesisPaths(t *testing.T) {
	cfg := validConfig()
	cfg.GenesisPath = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateTLSAllOrNothing(t *testing.T) {
	cfg := validConfig()
	cfg.TLS = &TLSConfig{CACert: "ca.pem"}
	assert.Error(t, cfg.Validate())

	cfg.TLS = &TLSConfig{CACert: "ca.pem", NodeCert: "node.pem", NodeKey: "node.key"}
	assert.NoError(t, cfg.Validate())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := validConfig()
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.ListenAddr, loaded.ListenAddr)
	assert.Equal(t, cfg.WorkerPoolSize, loaded.WorkerPoolSize)
}
