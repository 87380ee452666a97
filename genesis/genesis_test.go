package genesis

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolvote/elgamal"
)

func TestHashIsDeterministicAcrossEquivalentConfigs(t *testing.T) {
	data := Data{
		Version: "v1",
		Clique:  CliqueConfig{BlockPeriod: 5, SignerLimit: 1},
		Sealer:  []string{"a:1", "b:1"},
	}
	pub := elgamal.PublicKey{H: big.NewInt(7)}

	c1, err := New(data, pub, nil)
	require.NoError(t, err)
	c2, err := New(data, pub, nil)
	require.NoError(t, err)

	assert.Equal(t, c1.Hash(), c2.Hash())
	assert.NotEmpty(t, c1.Hash())
}

func TestHashChangesWithSealerSet(t *testing.T) {
	pub := elgamal.PublicKey{H: big.NewInt(7)}
	base, err := New(Data{
		Version: "v1",
		Clique:  CliqueConfig{BlockPeriod: 5, SignerLimit: 1},
		Sealer:  []string{"a:1", "b:1"},
	}, pub, nil)
	require.NoError(t, err)

	changed, err := New(Data{
		Version: "v1",
		Clique:  CliqueConfig{BlockPeriod: 5, SignerLimit: 1},
		Sealer:  []string{"a:1", "c:1"},
	}, pub, nil)
	require.NoError(t, err)

	assert.NotEqual(t, base.Hash(), changed.Hash())
}

func TestIndexOf(t *testing.T) {
	pub := elgamal.PublicKey{H: big.NewInt(7)}
	cfg, err := New(Data{
		Version: "v1",
		Clique:  CliqueConfig{BlockPeriod: 5, SignerLimit: 1},
		Sealer:  []string{"a:1", "b:1", "c:1"},
	}, pub, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.IndexOf("b:1"))
	assert.Equal(t, -1, cfg.IndexOf("nope:1"))
	assert.Equal(t, 3, cfg.SignerCount())
}

func TestValidateRejectsEmptySealerSet(t *testing.T) {
	d := Data{Version: "v1", Clique: CliqueConfig{BlockPeriod: 1}}
	assert.Error(t, d.Validate())
}
