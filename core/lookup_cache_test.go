package core

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolvote/elgamal"
	"github.com/tolelom/tolvote/genesis"
)

func TestLookupCacheFindsTransactionAndInvalidatesOnNewBlock(t *testing.T) {
	cfg, err := genesis.New(genesis.Data{
		Version: "test",
		Clique:  genesis.CliqueConfig{BlockPeriod: 1, SignerLimit: 0},
		Sealer:  []string{"a:1"},
	}, elgamal.PublicKey{H: big.NewInt(7)}, nil)
	require.NoError(t, err)

	chain := NewChain(cfg)
	tx := NewVoteOpened()
	block := NewBlock(chain.GenesisBlockIdentifier(), 1, []*Transaction{tx})
	_, err = chain.AddBlock(block)
	require.NoError(t, err)

	cache, err := NewLookupCache(chain, 8)
	require.NoError(t, err)

	blockID, found, err := cache.FindTransaction(tx.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, block.Identifier, blockID)

	_, found, err = cache.FindTransaction("unknown-id")
	require.NoError(t, err)
	assert.False(t, found)

	tx2 := NewVoteClosed()
	_, found, err = cache.FindTransaction(tx2.ID)
	require.NoError(t, err)
	assert.False(t, found)

	// A second block bumps the generation; a fresh lookup for a transaction
	// in the new block must not be served from a stale cached miss.
	block2 := NewBlock(block.Identifier, 2, []*Transaction{tx2})
	_, err = chain.AddBlock(block2)
	require.NoError(t, err)

	blockID2, found, err := cache.FindTransaction(tx2.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, block2.Identifier, blockID2)
}
