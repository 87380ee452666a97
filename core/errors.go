package core

import "errors"

// Sentinel errors returned by Chain and TransactionBuffer operations
// (spec §7). Callers use errors.Is to distinguish them.
var (
	// ErrUnknownParent is returned by Chain.AddBlock when the block's
	// parent_identifier names no block currently known to the chain.
	ErrUnknownParent = errors.New("core: unknown parent identifier")

	// ErrIdentifierCollision is returned by Chain.AddBlock when a
	// different block already occupies the incoming block's identifier.
	// Because identifiers are content hashes this can only happen if the
	// two blocks are byte-identical, in which case AddBlock is a no-op
	// rather than an error (spec §8 invariant 2); this sentinel is
	// reserved for the pathological case of a hash collision.
	ErrIdentifierCollision = errors.New("core: block identifier collision")

	// ErrInvalidTransaction is returned when a transaction fails
	// membership or CAI verification.
	ErrInvalidTransaction = errors.New("core: invalid transaction")

	// ErrVotingNotOpened names the voting-not-opened condition. No function
	// in this module returns it: OnTransactionReceive accepts a Vote whether
	// or not voting is open, and CalculateTally reports an election that was
	// never opened as the zero tally.
	ErrVotingNotOpened = errors.New("core: voting has not been opened")

	// ErrAlreadyVisited is returned by HeaviestBlockVisitor.VisitBlock if
	// it is invoked a second time by a misbehaving ChainWalker.
	ErrAlreadyVisited = errors.New("core: visitor already visited a block")
)
