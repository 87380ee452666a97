package core

// ChainWalker walks a Chain in a particular order, invoking a ChainVisitor
// for the blocks it decides to visit. A walker may invoke its visitor more
// than once; each ChainVisitor implementation documents whether it
// tolerates that (spec §4.2).
type ChainWalker interface {
	WalkChain(chain *Chain, visitor ChainVisitor) error
}

// HeaviestBlockWalker finds the deepest block currently known — the one
// reached by the longest path from genesis — and invokes the visitor
// exactly once with it. Depth ties are broken by first encounter in each
// node's child order (spec §4.2, §8 invariant 3).
type HeaviestBlockWalker struct{}

func NewHeaviestBlockWalker() HeaviestBlockWalker { return HeaviestBlockWalker{} }

func (HeaviestBlockWalker) WalkChain(chain *Chain, visitor ChainVisitor) error {
	snap := chain.snapshot()

	bestHeight, bestID := 0, snap.genesisID
	for _, childID := range snap.adjacency[snap.genesisID] {
		height, id := traverseDeepest(1, childID, snap)
		if height > bestHeight {
			bestHeight, bestID = height, id
		}
	}

	block := snap.blocks[bestID]
	return visitor.VisitBlock(bestHeight, block)
}

func traverseDeepest(level int, blockID string, snap snapshot) (int, string) {
	best := level
	bestID := blockID
	for _, childID := range snap.adjacency[blockID] {
		height, id := traverseDeepest(level+1, childID, snap)
		if height > best {
			best, bestID = height, id
		}
	}
	return best, bestID
}

// LongestPathWalker finds the deepest block exactly as HeaviestBlockWalker
// does, then visits every block on the path back to (but not including)
// genesis, deepest-first — the order SumCipherTextVisitor needs to see
// VoteClosed before the votes it gates and VoteOpened after them, since
// blocks are minted with monotonically increasing timestamps along any one
// path (spec §4.2, §8 invariant 4).
type LongestPathWalker struct{}

func NewLongestPathWalker() LongestPathWalker { return LongestPathWalker{} }

func (LongestPathWalker) WalkChain(chain *Chain, visitor ChainVisitor) error {
	snap := chain.snapshot()

	bestHeight, bestID := 0, snap.genesisID
	for _, childID := range snap.adjacency[snap.genesisID] {
		height, id := traverseDeepest(1, childID, snap)
		if height > bestHeight {
			bestHeight, bestID = height, id
		}
	}

	return traverseBottomUp(bestHeight, bestID, snap, visitor)
}

func traverseBottomUp(level int, blockID string, snap snapshot, visitor ChainVisitor) error {
	block := snap.blocks[blockID]
	if block.Content.ParentIdentifier == EmptyParentIdentifier {
		return nil
	}
	if err := visitor.VisitBlock(level, block); err != nil {
		return err
	}
	return traverseBottomUp(level-1, block.Content.ParentIdentifier, snap, visitor)
}
