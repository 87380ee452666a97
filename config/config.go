// Package config describes the node-local runtime configuration: listen
// addresses, the three genesis file paths, the peer address-book location,
// and optional mTLS material. The election-wide genesis configuration
// itself (sealer set, clique parameters, public key and UCIV image sets) is
// parsed separately by the genesis package; this package only points at it.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// TLSConfig holds paths to the PEM files needed for mTLS between sealers.
// When nil or all paths empty, the node falls back to plain TCP, which is
// adequate for a closed permissioned deployment but not recommended
// otherwise.
type TLSConfig struct {
	CACert   string `json:"ca_cert"`
	NodeCert string `json:"node_cert"`
	NodeKey  string `json:"node_key"`
}

// Config holds all node-local configuration.
type Config struct {
	// ListenAddr is this node's advertised socket address. It must appear
	// verbatim in the genesis sealer list; genesis.Config.IndexOf derives
	// this node's signer_index from it.
	ListenAddr string `json:"listen_addr"`
	// RPCListenAddr is the separate client-facing listener address.
	RPCListenAddr string `json:"rpc_listen_addr"`

	GenesisPath    string `json:"genesis_path"`
	PublicKeyPath  string `json:"public_key_path"`
	PublicUCIVPath string `json:"public_uciv_path"`

	// DataDir holds the peer address book (spec §6 names no other
	// persisted state; the chain itself is never written to disk).
	DataDir string `json:"data_dir"`

	// Mint, when true, starts the minting loop in addition to the two
	// listeners.
	Mint bool `json:"mint"`

	// WorkerPoolSize bounds the fixed-size worker pool that runs the
	// listeners and the minter (spec §2, §5). Load uses 8 when the field is
	// absent; any value present must be positive.
	WorkerPoolSize int `json:"worker_pool_size"`

	TLS *TLSConfig `json:"tls,omitempty"`
}

// Load reads a JSON config file from path and validates required fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{WorkerPoolSize: 8}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required fields are present and well-formed.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.RPCListenAddr == "" {
		return fmt.Errorf("rpc_listen_addr must not be empty")
	}
	if c.ListenAddr == c.RPCListenAddr {
		return fmt.Errorf("listen_addr and rpc_listen_addr must not be the same (%s)", c.ListenAddr)
	}
	if c.GenesisPath == "" || c.PublicKeyPath == "" || c.PublicUCIVPath == "" {
		return fmt.Errorf("genesis_path, public_key_path and public_uciv_path must all be set")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.WorkerPoolSize <= 0 {
		return fmt.Errorf("worker_pool_size must be positive, got %d", c.WorkerPoolSize)
	}
	if c.TLS != nil {
		t := c.TLS
		allSet := t.CACert != "" && t.NodeCert != "" && t.NodeKey != ""
		allEmpty := t.CACert == "" && t.NodeCert == "" && t.NodeKey == ""
		if !allSet && !allEmpty {
			return fmt.Errorf("tls: all three paths (ca_cert, node_cert, node_key) must be set or all empty")
		}
	}
	return nil
}

// Save writes the config to path as formatted JSON, for the node's init CLI
// command to scaffold a starting point.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
