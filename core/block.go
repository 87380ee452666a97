package core

import (
	"encoding/json"

	"github.com/tolelom/tolvote/crypto"
)

// EmptyParentIdentifier is the parent identifier carried by the genesis
// block (spec §3).
const EmptyParentIdentifier = ""

// BlockContent is the hashed payload of a Block: the parent link, the
// minting timestamp, and the ordered transaction sequence. Blocks are value
// objects produced once and never mutated (spec §3), so BlockContent has no
// setters.
type BlockContent struct {
	ParentIdentifier string         `json:"parent_identifier"`
	TimestampSeconds int64          `json:"timestamp_seconds"`
	Transactions     []*Transaction `json:"transactions"`
}

// Block is a content-addressed node in the chain DAG. Two blocks are equal
// iff their Identifier matches (spec §3).
type Block struct {
	Identifier string       `json:"identifier"`
	Content    BlockContent `json:"content"`
}

// ParentIdentifier is a convenience accessor onto Content.
func (b *Block) ParentIdentifier() string { return b.Content.ParentIdentifier }

// Transactions is a convenience accessor onto Content.
func (b *Block) Transactions() []*Transaction { return b.Content.Transactions }

// Timestamp is a convenience accessor onto Content.
func (b *Block) Timestamp() int64 { return b.Content.TimestampSeconds }

// computeIdentifier hashes the canonical JSON encoding of Content. Two
// blocks built from byte-identical content always produce the same
// identifier (testable property 2, spec §8).
func computeIdentifier(content BlockContent) string {
	data, err := json.Marshal(content)
	if err != nil {
		// json.Marshal on this struct shape (strings, ints, transaction
		// pointers that themselves marshal cleanly) cannot fail in practice.
		return ""
	}
	return crypto.Hash(data)
}

// NewBlock constructs a Block from its content, computing Identifier once.
// txs is copied so the caller's buffer slice can be reused/cleared
// afterwards without retroactively mutating the minted block.
func NewBlock(parentIdentifier string, timestampSeconds int64, txs []*Transaction) *Block {
	content := BlockContent{
		ParentIdentifier: parentIdentifier,
		TimestampSeconds: timestampSeconds,
		Transactions:     append([]*Transaction(nil), txs...),
	}
	return &Block{
		Identifier: computeIdentifier(content),
		Content:    content,
	}
}

// NewGenesisBlock constructs the chain's root block: empty parent, no
// transactions, timestamp pinned to 0 so every node derives the identical
// identifier from the same genesis configuration.
func NewGenesisBlock() *Block {
	return NewBlock(EmptyParentIdentifier, 0, nil)
}

// VerifyIntegrity recomputes the content hash and reports whether it still
// matches Identifier. Chain.AddBlock and the inbound block path do not call
// it; a block is stored under whatever Identifier it carries.
func (b *Block) VerifyIntegrity() bool {
	return b.Identifier == computeIdentifier(b.Content)
}
