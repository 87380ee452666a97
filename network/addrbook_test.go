package network

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/tolvote/internal/testutil"
)

func TestAddrBookRememberAndForget(t *testing.T) {
	book := NewAddrBook(testutil.NewMemDB())

	require.NoError(t, book.Remember("10.0.0.1:9000"))
	require.NoError(t, book.Remember("10.0.0.2:9000"))

	known := book.Known()
	sort.Strings(known)
	assert.Equal(t, []string{"10.0.0.1:9000", "10.0.0.2:9000"}, known)

	require.NoError(t, book.Forget("10.0.0.1:9000"))
	assert.Equal(t, []string{"10.0.0.2:9000"}, book.Known())
}
