// Package genesis describes the parsed, hashed initial configuration of a
// tolvote network: the clique parameters, the fixed sealer set, and the
// election's public cryptographic material (public key and UCIV image sets).
package genesis

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tolelom/tolvote/crypto"
	"github.com/tolelom/tolvote/elgamal"
)

// CliqueConfig holds the consensus-tuning parameters.
type CliqueConfig struct {
	BlockPeriod uint64 `json:"block_period"` // seconds; must be > 0
	SignerLimit int    `json:"signer_limit"` // co-leader window size; must be >= 0
}

// Data is the on-disk shape of genesis.json.
type Data struct {
	Version string       `json:"version"`
	Clique  CliqueConfig `json:"clique"`
	Sealer  []string     `json:"sealer"` // ordered socket addresses, host:port
}

// Config is the fully parsed genesis configuration: the on-disk Data plus
// the separately-loaded public key and UCIV image sets (original_source's
// public_key.json and public_uciv.json). Chain and consensus.CliqueProtocol
// both consume this struct directly.
type Config struct {
	Version string
	Clique  CliqueConfig
	Sealer  []string

	PublicKey   elgamal.PublicKey
	ImageSets   []elgamal.ImageSet

	hash string // memoised SHA-1, computed once in Load/New
}

// Validate enforces the structural constraints from spec §6.
func (d *Data) Validate() error {
	if d.Version == "" {
		return fmt.Errorf("genesis: version must not be empty")
	}
	if d.Clique.BlockPeriod == 0 {
		return fmt.Errorf("genesis: clique.block_period must be positive")
	}
	if d.Clique.SignerLimit < 0 {
		return fmt.Errorf("genesis: clique.signer_limit must not be negative")
	}
	if len(d.Sealer) == 0 {
		return fmt.Errorf("genesis: sealer list must not be empty")
	}
	return nil
}

// New builds a Config from already-parsed components and computes the
// genesis_configuration_hash once.
func New(data Data, pub elgamal.PublicKey, imageSets []elgamal.ImageSet) (*Config, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	cfg := &Config{
		Version:   data.Version,
		Clique:    data.Clique,
		Sealer:    append([]string(nil), data.Sealer...),
		PublicKey: pub,
		ImageSets: append([]elgamal.ImageSet(nil), imageSets...),
	}
	cfg.hash = computeHash(cfg)
	return cfg, nil
}

// Load reads genesis.json, public_key.json and public_uciv.json from the
// three named paths (original_source/src/lib.rs's on-disk contract) and
// returns a validated Config. Reading and parsing config files is the
// out-of-scope, collaborator-level concern from spec §1; only the resulting
// Config struct and its Hash are core-owned.
func Load(genesisPath, publicKeyPath, publicUCIVPath string) (*Config, error) {
	raw, err := os.ReadFile(genesisPath)
	if err != nil {
		return nil, fmt.Errorf("read genesis file: %w", err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse genesis file: %w", err)
	}

	pubRaw, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key file: %w", err)
	}
	var pub elgamal.PublicKey
	if err := json.Unmarshal(pubRaw, &pub); err != nil {
		return nil, fmt.Errorf("parse public key file: %w", err)
	}

	ucivRaw, err := os.ReadFile(publicUCIVPath)
	if err != nil {
		return nil, fmt.Errorf("read public UCIV file: %w", err)
	}
	var imageSets []elgamal.ImageSet
	if err := json.Unmarshal(ucivRaw, &imageSets); err != nil {
		return nil, fmt.Errorf("parse public UCIV file: %w", err)
	}

	return New(data, pub, imageSets)
}

// Hash returns the genesis_configuration_hash: a SHA-1 over the canonical
// JSON serialization of the merged configuration (spec §6). Networks are
// distinguished by this value; it is computed once at construction.
func (c *Config) Hash() string {
	return c.hash
}

// canonical is the struct whose JSON encoding is hashed. Field order is
// fixed by struct declaration order, matching encoding/json's stable
// marshalling of struct fields, so the hash is deterministic across nodes
// that parsed byte-identical source files.
type canonical struct {
	Version   string            `json:"version"`
	Clique    CliqueConfig      `json:"clique"`
	Sealer    []string          `json:"sealer"`
	PublicKey elgamal.PublicKey `json:"public_key"`
	ImageSets []elgamal.ImageSet `json:"public_uciv"`
}

func computeHash(c *Config) string {
	data, err := json.Marshal(canonical{
		Version:   c.Version,
		Clique:    c.Clique,
		Sealer:    c.Sealer,
		PublicKey: c.PublicKey,
		ImageSets: c.ImageSets,
	})
	if err != nil {
		// json.Marshal on this struct shape cannot fail in practice.
		return ""
	}
	return crypto.HashSHA1(data)
}

// SignerCount returns the fixed number of sealers (signer_count in spec §3).
func (c *Config) SignerCount() int {
	return len(c.Sealer)
}

// IndexOf returns the position of addr in the sealer list, or -1 if addr is
// not a sealer. This is how a node learns its own signer_index.
func (c *Config) IndexOf(addr string) int {
	for i, s := range c.Sealer {
		if s == addr {
			return i
		}
	}
	return -1
}
