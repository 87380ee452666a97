// Package consensus implements the Clique-style Proof-of-Authority driver:
// deterministic leader/co-leader selection over a fixed sealer set,
// time-gated block minting with wiggle delays for co-leaders, and
// longest-chain reconciliation against remote peers.
package consensus

import (
	"time"

	"github.com/tolelom/tolvote/core"
	"github.com/tolelom/tolvote/elgamal"
	"github.com/tolelom/tolvote/events"
	"github.com/tolelom/tolvote/genesis"
)

// wiggle is the fixed delay a co-leader waits before attempting to sign,
// giving the leader's block time to arrive first (spec §4.3, glossary).
const wiggle = time.Second

// CliqueProtocol is the stateful consensus driver: one instance per node,
// owning the chain and the pending-transaction buffer behind a single
// coarse mutex discipline enforced by its caller (the peer node holds one
// lock around every handle/handle_rpc/minter call — spec §5). CliqueProtocol
// itself does no locking; it is not safe for concurrent use without an
// external lock, by design.
type CliqueProtocol struct {
	buffer      *core.TransactionBuffer
	signerIndex int
	signerCount int
	genesis     *genesis.Config
	chain       *core.Chain
	verifier    verifier
	emitter     *events.Emitter
	lookup      *core.LookupCache
}

type verifier interface {
	elgamal.MembershipVerifier
	elgamal.CAIVerifier
}

// lookupCacheSize bounds the number of distinct FindTransaction queries
// CliqueProtocol memoizes.
const lookupCacheSize = 4096

// New builds a CliqueProtocol for the sealer at signerIndex within cfg's
// sealer set, operating on chain.
func New(cfg *genesis.Config, chain *core.Chain, signerIndex int, emitter *events.Emitter) *CliqueProtocol {
	lookup, err := core.NewLookupCache(chain, lookupCacheSize)
	if err != nil {
		// Only fails for a non-positive size, which lookupCacheSize never is.
		panic(err)
	}
	return &CliqueProtocol{
		buffer:      core.NewTransactionBuffer(),
		signerIndex: signerIndex,
		signerCount: cfg.SignerCount(),
		genesis:     cfg,
		chain:       chain,
		verifier:    elgamal.NewProofVerifier(),
		emitter:     emitter,
		lookup:      lookup,
	}
}

// heaviestHeight is the pure function h from spec §4.3: the depth of the
// deepest known block, 0 for an empty chain.
func (p *CliqueProtocol) heaviestHeight() int {
	return p.chain.HeaviestHeight()
}

// IsLeader reports whether this sealer is the unique leader at the current
// heaviest height: signer_index == h mod signer_count.
func (p *CliqueProtocol) IsLeader() bool {
	return p.signerIndex == p.heaviestHeight()%p.signerCount
}

// IsCoLeader reports whether this sealer falls in the co-leader window: the
// signer_limit positions immediately after the leader, wrapping modulo
// signer_count.
func (p *CliqueProtocol) IsCoLeader() bool {
	h := p.heaviestHeight()
	limit := p.genesis.Clique.SignerLimit
	if limit <= 0 {
		return false
	}
	lower := (h%p.signerCount + 1) % p.signerCount
	upper := (h + limit) % p.signerCount
	if lower <= upper {
		return p.signerIndex >= lower && p.signerIndex <= upper
	}
	return p.signerIndex >= lower || p.signerIndex <= upper
}

// IsBlockPeriodOver reports whether at least clique.block_period seconds
// have elapsed since the current heaviest block's timestamp.
func (p *CliqueProtocol) IsBlockPeriodOver(nowSeconds int64) bool {
	visitor := core.NewHeaviestBlockVisitor()
	if err := core.NewHeaviestBlockWalker().WalkChain(p.chain, visitor); err != nil {
		return false
	}
	block, ok := p.chain.Block(visitor.BlockID)
	if !ok {
		return false
	}
	return nowSeconds >= block.Timestamp()+int64(p.genesis.Clique.BlockPeriod)
}

// OnTransactionReceive implements spec §4.3's intake rules: verify Vote
// proofs, drop duplicates already buffered, and buffer only if this node
// currently holds a minting role.
func (p *CliqueProtocol) OnTransactionReceive(tx *core.Transaction) error {
	if !tx.Verify(p.genesis.PublicKey, p.genesis.ImageSets, p.verifier, p.verifier) {
		return core.ErrInvalidTransaction
	}
	if p.buffer.Contains(tx.ID) {
		return nil
	}
	switch tx.Kind {
	case core.KindVoteOpened:
		p.emitter.Emit(events.Event{Type: events.EventVoteOpened, Height: p.heaviestHeight()})
	case core.KindVoteClosed:
		p.emitter.Emit(events.Event{Type: events.EventVoteClosed, Height: p.heaviestHeight()})
	}
	if p.IsLeader() || p.IsCoLeader() {
		p.buffer.Add(tx)
	}
	return nil
}

// CreateCurrentBlockAndResetTransactionBuffer builds a candidate block atop
// the current heaviest block and drains the buffer into it. It does not
// append the block to the chain.
func (p *CliqueProtocol) CreateCurrentBlockAndResetTransactionBuffer(nowSeconds int64) *core.Block {
	visitor := core.NewHeaviestBlockVisitor()
	_ = core.NewHeaviestBlockWalker().WalkChain(p.chain, visitor)
	txs := p.buffer.DrainAll()
	return core.NewBlock(visitor.BlockID, nowSeconds, txs)
}

// Sign is the idempotent self-append gate used by the minter. It returns the block and true if it was newly
// appended (the caller should broadcast it); it returns (nil, false) if the
// block was already known.
func (p *CliqueProtocol) Sign(block *core.Block) (*core.Block, bool, error) {
	if _, ok := p.chain.Block(block.Identifier); ok {
		return nil, false, nil
	}
	appended, err := p.chain.AddBlock(block)
	if err != nil {
		return nil, false, err
	}
	if !appended {
		return nil, false, nil
	}
	p.emit(events.EventBlockCommitted, block)
	return block, true, nil
}

// ReceiveBlock implements inbound BlockPayload handling (spec §4.3): first
// purge any locally buffered transaction the incoming block already
// contains, so a co-leader does not re-mint it, then attempt to append.
func (p *CliqueProtocol) ReceiveBlock(block *core.Block) (appended bool, err error) {
	ids := make([]string, 0, len(block.Transactions()))
	for _, tx := range block.Transactions() {
		ids = append(ids, tx.ID)
	}
	p.buffer.RemoveMatching(ids)

	appended, err = p.chain.AddBlock(block)
	if err == nil && appended {
		p.emit(events.EventBlockCommitted, block)
	}
	return appended, err
}

// ReplaceChain implements remote chain reconciliation (spec §4.3): other is
// adopted only if genesis-compatible and strictly taller.
func (p *CliqueProtocol) ReplaceChain(other *core.Chain) bool {
	replaced := p.chain.ReplaceChain(other)
	if replaced {
		p.emitter.Emit(events.Event{Type: events.EventChainReplaced})
	}
	return replaced
}

// CalculateResult walks the heaviest path and returns the current tally.
func (p *CliqueProtocol) CalculateResult() (core.Tally, error) {
	return core.CalculateTally(p.chain, p.genesis.PublicKey)
}

// Chain exposes the underlying chain for read-only use by the peer node
// (serving ChainRequest, FindTransaction).
func (p *CliqueProtocol) Chain() *core.Chain { return p.chain }

// FindTransaction locates the block containing the transaction with the
// given identifier, using the memoized lookup cache.
func (p *CliqueProtocol) FindTransaction(txID string) (blockID string, found bool, err error) {
	return p.lookup.FindTransaction(txID)
}

// SignerIndex returns this node's position in the sealer set.
func (p *CliqueProtocol) SignerIndex() int { return p.signerIndex }

func (p *CliqueProtocol) emit(typ events.EventType, block *core.Block) {
	if p.emitter == nil {
		return
	}
	p.emitter.Emit(events.Event{Type: typ, BlockID: block.Identifier, Height: p.heaviestHeight()})
}

// Tick drives one step of the minting state machine (spec §4.3). lock is
// held by the caller around the whole call — role checks, buffer clearing,
// and candidate construction all happen under it. Tick does not sign: it
// returns the candidate block (nil when this node does not mint on this
// tick) and whether this node is a co-leader, so the caller can release the
// lock, wait for Wiggle if so, and then pass the candidate to Sign, which
// decides whether it is broadcast.
func (p *CliqueProtocol) Tick(nowSeconds int64) (candidate *core.Block, isCoLeader bool) {
	leader, coLeader := p.IsLeader(), p.IsCoLeader()
	if !leader && !coLeader {
		p.buffer.DrainAll()
		return nil, false
	}
	if !p.IsBlockPeriodOver(nowSeconds) {
		return nil, false
	}
	return p.CreateCurrentBlockAndResetTransactionBuffer(nowSeconds), coLeader
}

// Wiggle is the fixed delay exposed for the minter loop.
func Wiggle() time.Duration { return wiggle }
