package core

import (
	"encoding/json"

	"github.com/tolelom/tolvote/crypto"
	"github.com/tolelom/tolvote/elgamal"
)

// Kind identifies which of the three transaction variants a Transaction is
// (spec §3).
type Kind string

const (
	KindVote       Kind = "vote"
	KindVoteOpened Kind = "vote_opened"
	KindVoteClosed Kind = "vote_closed"
)

// VotingOptions is the fixed set of plaintexts a Vote ciphertext is allowed
// to encrypt: yes (1) or no (0), per spec §4.3.
var VotingOptions = []int64{1, 0}

// Transaction is the tagged union Vote / VoteOpened / VoteClosed. Only the
// Vote variant carries a payload; VoteOpened and VoteClosed therefore each
// hash to a fixed, well-known identifier on every node (spec §3). A
// ChainVisitor recognizes the start/end of the valid vote-counting window by
// the transaction's Kind.
type Transaction struct {
	ID              string                  `json:"id"`
	Kind            Kind                    `json:"kind"`
	VoterIndex      int                     `json:"voter_index,omitempty"`
	Ciphertext      elgamal.Ciphertext      `json:"ciphertext,omitempty"`
	MembershipProof elgamal.MembershipProof `json:"membership_proof,omitempty"`
	CAIProof        elgamal.CAIProof        `json:"cai_proof,omitempty"`
}

// hashBody is the payload actually hashed to derive ID. The sentinel kinds
// carry no vote fields, so both sentinels have identifiers fixed across the
// whole network regardless of when or by whom they were minted.
type hashBody struct {
	Kind            Kind                    `json:"kind"`
	VoterIndex      int                     `json:"voter_index,omitempty"`
	Ciphertext      elgamal.Ciphertext      `json:"ciphertext,omitempty"`
	MembershipProof elgamal.MembershipProof `json:"membership_proof,omitempty"`
	CAIProof        elgamal.CAIProof        `json:"cai_proof,omitempty"`
}

func computeTxID(kind Kind, voterIndex int, ct elgamal.Ciphertext, mp elgamal.MembershipProof, cp elgamal.CAIProof) string {
	body := hashBody{Kind: kind, VoterIndex: voterIndex, Ciphertext: ct, MembershipProof: mp, CAIProof: cp}
	data, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return crypto.Hash(data)
}

// NewVote constructs a Vote transaction and computes its identifier.
func NewVote(voterIndex int, ct elgamal.Ciphertext, membership elgamal.MembershipProof, cai elgamal.CAIProof) *Transaction {
	return &Transaction{
		ID:              computeTxID(KindVote, voterIndex, ct, membership, cai),
		Kind:            KindVote,
		VoterIndex:      voterIndex,
		Ciphertext:      ct,
		MembershipProof: membership,
		CAIProof:        cai,
	}
}

// NewVoteOpened returns the unique, well-known VoteOpened transaction.
func NewVoteOpened() *Transaction {
	return &Transaction{
		ID:   computeTxID(KindVoteOpened, 0, elgamal.Ciphertext{}, elgamal.MembershipProof{}, elgamal.CAIProof{}),
		Kind: KindVoteOpened,
	}
}

// NewVoteClosed returns the unique, well-known VoteClosed transaction.
func NewVoteClosed() *Transaction {
	return &Transaction{
		ID:   computeTxID(KindVoteClosed, 0, elgamal.Ciphertext{}, elgamal.MembershipProof{}, elgamal.CAIProof{}),
		Kind: KindVoteClosed,
	}
}

// Equal compares transactions by identifier only: two transactions with
// equal identifier are equal (spec §3), regardless of any other field.
func (tx *Transaction) Equal(other *Transaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}
	return tx.ID == other.ID
}

// Verify checks a Vote transaction's membership and CAI proofs against the
// election's public key and the voter's image set. Non-Vote transactions
// are always valid (spec §4.3 step 1). Returns false (caller drops the
// transaction and reports InvalidTransaction) when voter_index is out of
// range or either proof fails.
func (tx *Transaction) Verify(pub elgamal.PublicKey, imageSets []elgamal.ImageSet, mv elgamal.MembershipVerifier, cv elgamal.CAIVerifier) bool {
	if tx.Kind != KindVote {
		return true
	}
	if tx.VoterIndex < 0 || tx.VoterIndex >= len(imageSets) {
		return false
	}
	if !mv.VerifyMembership(pub, tx.Ciphertext, tx.MembershipProof, VotingOptions) {
		return false
	}
	return cv.VerifyCAI(pub, tx.Ciphertext, imageSets[tx.VoterIndex], tx.CAIProof, VotingOptions)
}
