package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolvote/core"
	"github.com/tolelom/tolvote/elgamal"
	"github.com/tolelom/tolvote/genesis"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pub := elgamal.PublicKey{H: big.NewInt(7)}
	imageSet := elgamal.ImageSet{Images: []string{"img-a"}}
	ct, err := elgamal.Encrypt(pub, 1)
	require.NoError(t, err)
	membership := elgamal.ProveMembership(pub, ct, core.VotingOptions)
	cai := elgamal.ProveCAI(pub, ct, imageSet, core.VotingOptions)
	tx := core.NewVote(0, ct, membership, cai)

	cfg, err := genesis.New(genesis.Data{
		Version: "test",
		Clique:  genesis.CliqueConfig{BlockPeriod: 1, SignerLimit: 0},
		Sealer:  []string{"a:1"},
	}, pub, []elgamal.ImageSet{imageSet})
	require.NoError(t, err)

	chain := core.NewChain(cfg)
	block := core.NewBlock(chain.GenesisBlockIdentifier(), 1, []*core.Transaction{tx})
	_, err = chain.AddBlock(block)
	require.NoError(t, err)

	tally, err := core.CalculateTally(chain, cfg.PublicKey)
	require.NoError(t, err)

	cases := []Message{
		Ping(),
		Pong(),
		TransactionPayload(tx),
		TransactionAccept(tx.ID),
		BlockRequest(block.Identifier),
		BlockPayload(block),
		BlockAccept(),
		BlockDuplicated(),
		ChainRequest(),
		ChainResponse(chain.ToWire()),
		ChainAccept(),
		OpenVote(),
		OpenVoteAccept(),
		CloseVote(),
		CloseVoteAccept(),
		RequestTally(),
		RequestTallyPayload(tally),
		FindTransaction("some-id"),
		FindTransactionResponse(tx),
		None(),
	}

	for _, m := range cases {
		data, err := Encode(m)
		require.NoError(t, err)
		got := Decode(data)
		assert.Equal(t, m, got)
	}
}

func TestDecodeMalformedYieldsNone(t *testing.T) {
	assert.Equal(t, KindNone, Decode([]byte("not json")).Kind)
	assert.Equal(t, KindNone, Decode([]byte("")).Kind)
	assert.Equal(t, KindNone, Decode([]byte("{}")).Kind)
}
