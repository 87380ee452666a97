package core

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolvote/elgamal"
)

func TestSentinelTransactionsAreWellKnown(t *testing.T) {
	assert.Equal(t, NewVoteOpened().ID, NewVoteOpened().ID)
	assert.Equal(t, NewVoteClosed().ID, NewVoteClosed().ID)
	assert.NotEqual(t, NewVoteOpened().ID, NewVoteClosed().ID)
}

func TestVoteIdentifierDependsOnContent(t *testing.T) {
	pub := elgamal.PublicKey{H: big.NewInt(7)}
	ct1, err := elgamal.Encrypt(pub, 1)
	require.NoError(t, err)
	ct2, err := elgamal.Encrypt(pub, 1)
	require.NoError(t, err)

	v1 := NewVote(0, ct1, elgamal.MembershipProof{Tag: "t"}, elgamal.CAIProof{Tag: "t"})
	v2 := NewVote(0, ct2, elgamal.MembershipProof{Tag: "t"}, elgamal.CAIProof{Tag: "t"})
	assert.NotEqual(t, v1.ID, v2.ID, "different ciphertexts must hash to different identifiers")

	v3 := NewVote(0, ct1, elgamal.MembershipProof{Tag: "t"}, elgamal.CAIProof{Tag: "t"})
	assert.Equal(t, v1.ID, v3.ID, "identical content must hash identically")
}

func TestVerifyAcceptsNonVoteUnconditionally(t *testing.T) {
	tx := NewVoteOpened()
	ok := tx.Verify(elgamal.PublicKey{}, nil, elgamal.NewProofVerifier(), elgamal.NewProofVerifier())
	assert.True(t, ok)
}

func TestVerifyRejectsVoterIndexOutOfRange(t *testing.T) {
	tx := NewVote(5, elgamal.Ciphertext{}, elgamal.MembershipProof{}, elgamal.CAIProof{})
	imageSets := []elgamal.ImageSet{{Images: []string{"a"}}}
	ok := tx.Verify(elgamal.PublicKey{}, imageSets, elgamal.NewProofVerifier(), elgamal.NewProofVerifier())
	assert.False(t, ok)
}

func TestVerifyAcceptsValidProofs(t *testing.T) {
	pub := elgamal.PublicKey{H: big.NewInt(7)}
	ct, err := elgamal.Encrypt(pub, 1)
	require.NoError(t, err)
	imageSet := elgamal.ImageSet{Images: []string{"img-a"}}

	membership := elgamal.ProveMembership(pub, ct, VotingOptions)
	cai := elgamal.ProveCAI(pub, ct, imageSet, VotingOptions)
	tx := NewVote(0, ct, membership, cai)

	v := elgamal.NewProofVerifier()
	ok := tx.Verify(pub, []elgamal.ImageSet{imageSet}, v, v)
	assert.True(t, ok)
}
