package core

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolvote/elgamal"
	"github.com/tolelom/tolvote/genesis"
)

func testGenesisConfig(t *testing.T) *genesis.Config {
	t.Helper()
	cfg, err := genesis.New(genesis.Data{
		Version: "test",
		Clique:  genesis.CliqueConfig{BlockPeriod: 1, SignerLimit: 0},
		Sealer:  []string{"a:1", "b:1"},
	}, elgamal.PublicKey{H: big.NewInt(7)}, nil)
	require.NoError(t, err)
	return cfg
}

func TestChainAddBlockIdempotent(t *testing.T) {
	chain := NewChain(testGenesisConfig(t))
	block := NewBlock(chain.GenesisBlockIdentifier(), 10, nil)

	appended, err := chain.AddBlock(block)
	require.NoError(t, err)
	assert.True(t, appended)

	appended, err = chain.AddBlock(block)
	require.NoError(t, err)
	assert.False(t, appended, "re-adding a known block must be a no-op")
}

func TestChainAddBlockUnknownParent(t *testing.T) {
	chain := NewChain(testGenesisConfig(t))
	orphan := NewBlock("does-not-exist", 10, nil)

	appended, err := chain.AddBlock(orphan)
	assert.False(t, appended)
	assert.ErrorIs(t, err, ErrUnknownParent)
}

func TestChainAddBlockIdentifierCollision(t *testing.T) {
	chain := NewChain(testGenesisConfig(t))
	block := NewBlock(chain.GenesisBlockIdentifier(), 10, nil)
	_, err := chain.AddBlock(block)
	require.NoError(t, err)

	// Same identifier, different content: bypass NewBlock's hashing so the
	// stored identifier no longer matches its content.
	forged := &Block{Identifier: block.Identifier, Content: BlockContent{
		ParentIdentifier: chain.GenesisBlockIdentifier(),
		TimestampSeconds: 999,
	}}
	appended, err := chain.AddBlock(forged)
	assert.False(t, appended)
	assert.ErrorIs(t, err, ErrIdentifierCollision)
}

func TestHeaviestHeightPicksDeepestBranch(t *testing.T) {
	chain := NewChain(testGenesisConfig(t))
	g := chain.GenesisBlockIdentifier()

	short := NewBlock(g, 1, nil)
	_, err := chain.AddBlock(short)
	require.NoError(t, err)

	longA := NewBlock(g, 2, nil)
	_, err = chain.AddBlock(longA)
	require.NoError(t, err)
	longB := NewBlock(longA.Identifier, 3, nil)
	_, err = chain.AddBlock(longB)
	require.NoError(t, err)

	assert.Equal(t, 2, chain.HeaviestHeight())
}

func TestReplaceChainRequiresStrictlyTaller(t *testing.T) {
	cfg := testGenesisConfig(t)
	chain := NewChain(cfg)
	other := NewChain(cfg)

	_, err := chain.AddBlock(NewBlock(chain.GenesisBlockIdentifier(), 1, nil))
	require.NoError(t, err)
	_, err = other.AddBlock(NewBlock(other.GenesisBlockIdentifier(), 1, nil))
	require.NoError(t, err)

	assert.False(t, chain.ReplaceChain(other), "equal height must not replace")

	tall := NewBlock(other.GenesisBlockIdentifier(), 1, nil)
	_, err = other.AddBlock(tall)
	require.NoError(t, err)
	tall2 := NewBlock(tall.Identifier, 2, nil)
	_, err = other.AddBlock(tall2)
	require.NoError(t, err)

	assert.True(t, chain.ReplaceChain(other))
	assert.Equal(t, 2, chain.HeaviestHeight())
}

// S4 from the tally scenarios: a single block containing
// [VoteOpened, Vote(c1), VoteClosed] must tally exactly one vote.
func TestCalculateTallyScenarioS4(t *testing.T) {
	cfg := testGenesisConfig(t)
	chain := NewChain(cfg)
	pub := cfg.PublicKey

	ct, err := elgamal.Encrypt(pub, 1)
	require.NoError(t, err)

	block := NewBlock(chain.GenesisBlockIdentifier(), 1, []*Transaction{
		NewVoteOpened(),
		NewVote(0, ct, elgamal.MembershipProof{}, elgamal.CAIProof{}),
		NewVoteClosed(),
	})
	_, err = chain.AddBlock(block)
	require.NoError(t, err)

	tally, err := CalculateTally(chain, pub)
	require.NoError(t, err)
	assert.True(t, tally.Opened)
	assert.True(t, tally.Closed)
	assert.Equal(t, 1, tally.TotalVotes)
}

// S5: a vote cast in the leaf block (before voting has closed, walking
// bottom-up) must be skipped; only the vote in the parent block, cast after
// VoteClosed is encountered in reverse order, counts.
func TestCalculateTallyScenarioS5(t *testing.T) {
	cfg := testGenesisConfig(t)
	chain := NewChain(cfg)
	pub := cfg.PublicKey

	ct1, err := elgamal.Encrypt(pub, 0)
	require.NoError(t, err)
	ct2, err := elgamal.Encrypt(pub, 0)
	require.NoError(t, err)

	parent := NewBlock(chain.GenesisBlockIdentifier(), 1, []*Transaction{
		NewVoteOpened(),
		NewVote(1, ct2, elgamal.MembershipProof{}, elgamal.CAIProof{}),
		NewVoteClosed(),
	})
	_, err = chain.AddBlock(parent)
	require.NoError(t, err)

	leaf := NewBlock(parent.Identifier, 2, []*Transaction{
		NewVote(0, ct1, elgamal.MembershipProof{}, elgamal.CAIProof{}),
	})
	_, err = chain.AddBlock(leaf)
	require.NoError(t, err)

	tally, err := CalculateTally(chain, pub)
	require.NoError(t, err)
	assert.Equal(t, 1, tally.TotalVotes)
	assert.True(t, tally.SumCipherText.Equal(ct2))
}

func TestCalculateTallyVotingNeverOpened(t *testing.T) {
	cfg := testGenesisConfig(t)
	chain := NewChain(cfg)
	pub := cfg.PublicKey

	tally, err := CalculateTally(chain, pub)
	require.NoError(t, err)
	assert.False(t, tally.Opened)
	assert.Equal(t, 0, tally.TotalVotes)
	assert.True(t, tally.SumCipherText.Equal(elgamal.EncryptionOfZero(pub)))
}
