package core

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tolelom/tolvote/genesis"
)

// Chain is the content-addressed block DAG (spec §3, §4.1). Unlike the
// teacher's linear Blockchain, a Chain has no single tip: every block that
// satisfies the parent-exists invariant is kept, and "the" current block is
// whatever a ChainWalker resolves it to be at query time. There is no
// backing store — the DAG lives in memory only for the lifetime of the
// process (spec §6).
type Chain struct {
	mu sync.RWMutex

	genesisConfigHash  string
	genesisBlockID     string
	blocks             map[string]*Block
	adjacency          map[string][]string // parent identifier -> ordered child identifiers
	generation         uint64              // bumped on every successful AddBlock, for cache invalidation
}

// NewChain builds a Chain rooted at the genesis block implied by cfg. The
// genesis block's identifier is independent of cfg.Hash() — it is a Block
// like any other, with an empty parent — but every node derives the exact
// same genesis block because NewGenesisBlock is deterministic.
func NewChain(cfg *genesis.Config) *Chain {
	g := NewGenesisBlock()
	c := &Chain{
		genesisConfigHash: cfg.Hash(),
		genesisBlockID:    g.Identifier,
		blocks:            map[string]*Block{g.Identifier: g},
		adjacency:         map[string][]string{g.Identifier: nil},
	}
	return c
}

// GenesisConfigurationHash returns the network identity hash derived from
// the parsed genesis configuration (spec §6).
func (c *Chain) GenesisConfigurationHash() string {
	return c.genesisConfigHash
}

// GenesisBlockIdentifier returns the identifier of the chain's root block.
func (c *Chain) GenesisBlockIdentifier() string {
	return c.genesisBlockID
}

// AddBlock inserts block into the DAG and reports whether it was newly
// added. Re-adding a block whose identifier is already known is an
// idempotent no-op: appended is false and err is nil (spec §8 invariant 2).
// It returns ErrUnknownParent if no block with the given parent_identifier
// exists yet, and ErrIdentifierCollision if a different block already
// occupies that identifier.
func (c *Chain) AddBlock(block *Block) (appended bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.blocks[block.Identifier]; ok {
		same := existing.Content.ParentIdentifier == block.Content.ParentIdentifier &&
			existing.Content.TimestampSeconds == block.Content.TimestampSeconds &&
			len(existing.Content.Transactions) == len(block.Content.Transactions)
		for i := 0; same && i < len(existing.Content.Transactions); i++ {
			same = existing.Content.Transactions[i].Equal(block.Content.Transactions[i])
		}
		if same {
			return false, nil
		}
		return false, ErrIdentifierCollision
	}

	if _, ok := c.blocks[block.Content.ParentIdentifier]; !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownParent, block.Content.ParentIdentifier)
	}

	c.blocks[block.Identifier] = block
	c.adjacency[block.Identifier] = nil
	c.adjacency[block.Content.ParentIdentifier] = append(c.adjacency[block.Content.ParentIdentifier], block.Identifier)
	c.generation++
	return true, nil
}

// Block looks up a block by identifier.
func (c *Chain) Block(identifier string) (*Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.blocks[identifier]
	return b, ok
}

// Children returns the ordered identifiers of blocks whose parent is
// identifier, in the order they were first added (first-encountered
// tie-breaking for the walkers below).
func (c *Chain) Children(identifier string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.adjacency[identifier]...)
}

// Generation returns a counter that increases every time AddBlock changes
// the DAG. Callers (notably the lookup cache) use it to detect staleness
// without taking the chain lock on every read.
func (c *Chain) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// snapshot captures the fields a ChainWalker needs without holding the
// chain's lock for the duration of a (potentially deep, recursive) walk.
type snapshot struct {
	genesisID string
	blocks    map[string]*Block
	adjacency map[string][]string
}

func (c *Chain) snapshot() snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return snapshot{
		genesisID: c.genesisBlockID,
		blocks:    c.blocks,
		adjacency: c.adjacency,
	}
}

// HeaviestHeight returns the depth (in edges from genesis) of the deepest
// block currently known — 0 for a chain holding only genesis.
func (c *Chain) HeaviestHeight() int {
	visitor := NewHeaviestBlockVisitor()
	_ = NewHeaviestBlockWalker().WalkChain(c, visitor)
	return visitor.Height
}

// Wire is the serializable snapshot of a Chain carried in ChainResponse
// (spec §6: "Chain is required to be serializable").
type Wire struct {
	GenesisConfigurationHash string              `json:"genesis_configuration_hash"`
	GenesisBlockIdentifier   string              `json:"genesis_block_identifier"`
	Blocks                   map[string]*Block   `json:"blocks"`
	Adjacency                map[string][]string `json:"adjacency"`
}

// ToWire produces a serializable snapshot of the whole chain.
func (c *Chain) ToWire() Wire {
	c.mu.RLock()
	defer c.mu.RUnlock()
	blocks := make(map[string]*Block, len(c.blocks))
	for id, b := range c.blocks {
		blocks[id] = b
	}
	adjacency := make(map[string][]string, len(c.adjacency))
	for id, children := range c.adjacency {
		adjacency[id] = append([]string(nil), children...)
	}
	return Wire{
		GenesisConfigurationHash: c.genesisConfigHash,
		GenesisBlockIdentifier:   c.genesisBlockID,
		Blocks:                   blocks,
		Adjacency:                adjacency,
	}
}

// FromWire rebuilds a Chain from a received snapshot, for use as the
// candidate chain in ReplaceChain. It trusts the snapshot's internal
// consistency (the invariants in spec §3) without re-validating it block by
// block — replace_chain only ever compares genesis hash and height.
func FromWire(w Wire) *Chain {
	blocks := make(map[string]*Block, len(w.Blocks))
	for id, b := range w.Blocks {
		blocks[id] = b
	}
	adjacency := make(map[string][]string, len(w.Adjacency))
	for id, children := range w.Adjacency {
		adjacency[id] = append([]string(nil), children...)
	}
	return &Chain{
		genesisConfigHash: w.GenesisConfigurationHash,
		genesisBlockID:    w.GenesisBlockIdentifier,
		blocks:            blocks,
		adjacency:         adjacency,
	}
}

// ReplaceChain implements remote chain reconciliation (spec §4.3): other is
// adopted only if it shares this chain's genesis identity and is strictly
// taller. Equal or shorter candidates are kept out, deterministically
// avoiding thrash between two nodes each claiming the other should yield.
func (c *Chain) ReplaceChain(other *Chain) (replaced bool) {
	if other.GenesisConfigurationHash() != c.GenesisConfigurationHash() {
		return false
	}
	if other.HeaviestHeight() <= c.HeaviestHeight() {
		return false
	}

	other.mu.RLock()
	blocks := make(map[string]*Block, len(other.blocks))
	for id, b := range other.blocks {
		blocks[id] = b
	}
	adjacency := make(map[string][]string, len(other.adjacency))
	for id, children := range other.adjacency {
		adjacency[id] = append([]string(nil), children...)
	}
	other.mu.RUnlock()

	c.mu.Lock()
	c.blocks = blocks
	c.adjacency = adjacency
	c.generation++
	c.mu.Unlock()
	return true
}

// canonicalConfig wraps the genesis configuration hash, used only so
// Chain.String has something human-readable to print in logs.
type canonicalConfig struct {
	Hash string `json:"genesis_configuration_hash"`
}

func (c *Chain) String() string {
	data, _ := json.Marshal(canonicalConfig{Hash: c.genesisConfigHash})
	return fmt.Sprintf("Chain(%s, blocks=%d)", string(data), len(c.blocks))
}
