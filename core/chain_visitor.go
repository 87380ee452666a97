package core

import "github.com/tolelom/tolvote/elgamal"

// ChainVisitor is invoked by a ChainWalker for each block the walk decides
// to visit. A walker may invoke a visitor more than once; each visitor
// implementation documents whether it tolerates that (spec §4.2).
type ChainVisitor interface {
	VisitBlock(height int, block *Block) error
}

// HeaviestBlockVisitor expects to be invoked exactly once, with the
// heaviest block currently known. A second invocation is a walker bug and
// returns ErrAlreadyVisited.
type HeaviestBlockVisitor struct {
	Height    int
	BlockID   string
	visited   bool
}

func NewHeaviestBlockVisitor() *HeaviestBlockVisitor {
	return &HeaviestBlockVisitor{}
}

func (v *HeaviestBlockVisitor) VisitBlock(height int, block *Block) error {
	if v.visited {
		return ErrAlreadyVisited
	}
	v.Height = height
	v.BlockID = block.Identifier
	v.visited = true
	return nil
}

// SumCipherTextVisitor accumulates the homomorphic sum of every Vote
// ciphertext it is shown. It is driven bottom-up (leaf to genesis) by
// LongestPathWalker, and within each block it processes transactions in
// reverse storage order, so that it always encounters VoteClosed before the
// votes that chronologically preceded it on the same branch: a Vote only
// counts once VoteClosed has already been observed in this walk, deduped by
// voter index. Whether the accumulated result is trustworthy at all is
// governed separately by IsVotingOpened, checked once the walk completes.
type SumCipherTextVisitor struct {
	Sum             elgamal.Ciphertext
	TotalVotes      int
	opened          bool
	closed          bool
	seenVoterIndex  map[int]bool
}

// NewSumCipherTextVisitor seeds the running sum with the homomorphic
// identity (encryption of zero) under pub.
func NewSumCipherTextVisitor(pub elgamal.PublicKey) *SumCipherTextVisitor {
	return &SumCipherTextVisitor{
		Sum:            elgamal.EncryptionOfZero(pub),
		seenVoterIndex: make(map[int]bool),
	}
}

// IsVotingOpened reports whether a VoteOpened transaction has been
// encountered so far in the walk.
func (v *SumCipherTextVisitor) IsVotingOpened() bool { return v.opened }

// IsVotingClosed reports whether a VoteClosed transaction has been
// encountered so far in the walk.
func (v *SumCipherTextVisitor) IsVotingClosed() bool { return v.closed }

func (v *SumCipherTextVisitor) VisitBlock(_ int, block *Block) error {
	txs := block.Transactions()
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		switch tx.Kind {
		case KindVoteOpened:
			v.opened = true
		case KindVoteClosed:
			v.closed = true
		case KindVote:
			if !v.closed {
				continue
			}
			if v.seenVoterIndex[tx.VoterIndex] {
				continue
			}
			v.seenVoterIndex[tx.VoterIndex] = true
			v.Sum = elgamal.Combine(v.Sum, tx.Ciphertext)
			v.TotalVotes++
		}
	}
	return nil
}

// FindTransactionVisitor locates a transaction by identifier along the
// walked path, recording the first block it appears in.
type FindTransactionVisitor struct {
	TargetID string
	FoundID  string // block identifier, empty until found
	found    bool
}

func NewFindTransactionVisitor(targetID string) *FindTransactionVisitor {
	return &FindTransactionVisitor{TargetID: targetID}
}

func (v *FindTransactionVisitor) Found() bool { return v.found }

func (v *FindTransactionVisitor) VisitBlock(_ int, block *Block) error {
	if v.found {
		return nil
	}
	for _, tx := range block.Transactions() {
		if tx.ID == v.TargetID {
			v.FoundID = block.Identifier
			v.found = true
			return nil
		}
	}
	return nil
}
