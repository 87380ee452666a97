package consensus

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolvote/core"
	"github.com/tolelom/tolvote/elgamal"
	"github.com/tolelom/tolvote/events"
	"github.com/tolelom/tolvote/genesis"
)

func testConfig(t *testing.T, signerCount, signerLimit int, blockPeriod uint64) *genesis.Config {
	t.Helper()
	sealer := make([]string, signerCount)
	for i := range sealer {
		sealer[i] = string(rune('a' + i))
	}
	cfg, err := genesis.New(genesis.Data{
		Version: "test",
		Clique:  genesis.CliqueConfig{BlockPeriod: blockPeriod, SignerLimit: signerLimit},
		Sealer:  sealer,
	}, elgamal.PublicKey{H: big.NewInt(7)}, nil)
	require.NoError(t, err)
	return cfg
}

func TestIsLeaderAtGenesisHeight(t *testing.T) {
	cfg := testConfig(t, 4, 0, 1)
	chain := core.NewChain(cfg)

	for i := 0; i < 4; i++ {
		p := New(cfg, chain, i, events.NewEmitter())
		assert.Equal(t, i == 0, p.IsLeader(), "signer %d at height 0", i)
	}
}

func TestIsCoLeaderWindowWraps(t *testing.T) {
	cfg := testConfig(t, 5, 2, 1)
	chain := core.NewChain(cfg)

	// Height 0: leader is signer 0, co-leader window is signers {1, 2}.
	for i := 0; i < 5; i++ {
		p := New(cfg, chain, i, events.NewEmitter())
		want := i == 1 || i == 2
		assert.Equal(t, want, p.IsCoLeader(), "signer %d", i)
	}

	// Height 3: leader is signer 3, co-leader window {4, 0} wraps past
	// signer_count.
	parent := chain.GenesisBlockIdentifier()
	for ts := int64(1); ts <= 3; ts++ {
		b := core.NewBlock(parent, ts, nil)
		_, err := chain.AddBlock(b)
		require.NoError(t, err)
		parent = b.Identifier
	}
	for i := 0; i < 5; i++ {
		p := New(cfg, chain, i, events.NewEmitter())
		want := i == 4 || i == 0
		assert.Equal(t, want, p.IsCoLeader(), "signer %d at height 3", i)
	}
}

func TestIsCoLeaderDisabledWhenSignerLimitZero(t *testing.T) {
	cfg := testConfig(t, 3, 0, 1)
	chain := core.NewChain(cfg)

	for i := 0; i < 3; i++ {
		p := New(cfg, chain, i, events.NewEmitter())
		assert.False(t, p.IsCoLeader(), "signer_limit=0 must never produce a co-leader")
	}
}

func TestIsBlockPeriodOver(t *testing.T) {
	cfg := testConfig(t, 2, 0, 10)
	chain := core.NewChain(cfg)
	p := New(cfg, chain, 0, events.NewEmitter())

	assert.False(t, p.IsBlockPeriodOver(5), "genesis timestamp is 0, period is 10")
	assert.True(t, p.IsBlockPeriodOver(10))
	assert.True(t, p.IsBlockPeriodOver(11))
}

func TestOnTransactionReceiveRejectsInvalidVote(t *testing.T) {
	cfg := testConfig(t, 1, 0, 1)
	chain := core.NewChain(cfg)
	p := New(cfg, chain, 0, events.NewEmitter())

	// VoterIndex out of range for an empty ImageSets list.
	tx := core.NewVote(0, elgamal.Ciphertext{}, elgamal.MembershipProof{}, elgamal.CAIProof{})
	err := p.OnTransactionReceive(tx)
	assert.ErrorIs(t, err, core.ErrInvalidTransaction)
}

func TestSignIsIdempotent(t *testing.T) {
	cfg := testConfig(t, 1, 0, 1)
	chain := core.NewChain(cfg)
	p := New(cfg, chain, 0, events.NewEmitter())

	candidate := core.NewBlock(chain.GenesisBlockIdentifier(), 0, nil)

	_, appended, err := p.Sign(candidate)
	require.NoError(t, err)
	assert.True(t, appended)

	_, appended, err = p.Sign(candidate)
	require.NoError(t, err)
	assert.False(t, appended, "signing an already-known block must not re-append or re-broadcast")
}
