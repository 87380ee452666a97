package core

import "github.com/tolelom/tolvote/elgamal"

// VotingInformation reports whether the election window has opened and/or
// closed as observed along the heaviest path, independent of whether a
// caller has requested the tally itself (spec §3).
type VotingInformation struct {
	Opened bool
	Closed bool
}

// Tally is the result of summing every counted vote along the heaviest
// path: the still-encrypted homomorphic sum and how many distinct voters
// contributed to it. Decryption is the tallying authority's job, external to
// this node (spec §1).
type Tally struct {
	VotingInformation
	SumCipherText elgamal.Ciphertext
	TotalVotes    int
}

// CalculateTally walks chain's heaviest path with a SumCipherTextVisitor and
// returns the accumulated result. If voting was never opened on this
// branch, the result is the zero tally rather than an error (spec §7,
// VotingNotOpened).
func CalculateTally(chain *Chain, pub elgamal.PublicKey) (Tally, error) {
	visitor := NewSumCipherTextVisitor(pub)
	walker := NewLongestPathWalker()
	if err := walker.WalkChain(chain, visitor); err != nil {
		return Tally{}, err
	}

	info := VotingInformation{Opened: visitor.IsVotingOpened(), Closed: visitor.IsVotingClosed()}
	if !info.Opened {
		return Tally{VotingInformation: info, SumCipherText: elgamal.EncryptionOfZero(pub)}, nil
	}
	return Tally{
		VotingInformation: info,
		SumCipherText:     visitor.Sum,
		TotalVotes:        visitor.TotalVotes,
	}, nil
}
