package core

import (
	lru "github.com/hashicorp/golang-lru"
)

// lookupResult is what LookupCache caches per transaction identifier: the
// identifier of the block it was found in, and the chain generation that
// was current when the lookup ran.
type lookupResult struct {
	blockID    string
	generation uint64
}

// LookupCache memoizes FindTransaction results so a repeated RPC query for
// the same transaction identifier doesn't re-walk the whole chain. A cached
// entry is only trusted while the chain's generation counter matches what
// it was computed against; any AddBlock invalidates every entry at once
// because a new block can shorten or change which path is heaviest.
type LookupCache struct {
	chain *Chain
	cache *lru.Cache
}

// NewLookupCache builds a cache bounded to size entries, backed by
// hashicorp/golang-lru exactly as the teacher's block-lookup cache does.
func NewLookupCache(chain *Chain, size int) (*LookupCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LookupCache{chain: chain, cache: c}, nil
}

// FindTransaction returns the identifier of the block containing the
// transaction with the given id, walking the heaviest path on a cache miss
// or generation mismatch.
func (lc *LookupCache) FindTransaction(txID string) (string, bool, error) {
	currentGen := lc.chain.Generation()

	if cached, ok := lc.cache.Get(txID); ok {
		result := cached.(lookupResult)
		if result.generation == currentGen {
			return result.blockID, result.blockID != "", nil
		}
	}

	visitor := NewFindTransactionVisitor(txID)
	walker := NewLongestPathWalker()
	if err := walker.WalkChain(lc.chain, visitor); err != nil {
		return "", false, err
	}

	lc.cache.Add(txID, lookupResult{blockID: visitor.FoundID, generation: currentGen})
	return visitor.FoundID, visitor.Found(), nil
}
