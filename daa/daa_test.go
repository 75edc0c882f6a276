package daa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeys(t *testing.T) {
	csv := "123456789,04DDD7D190CA38B9891DFEA3BD542A0E29CCF413B7020D8EF85F5821BFD3C03E5684409AB42C897FB7BE3DF4D6BFDA59F97217144306BC577B9FDF8BEB24158432,3FEA28D30FF2B3C16900B9DC77F0AF631C5CFB9103BC23D35BA10FF333A46C3E"

	keys, err := ParseKeys(csv)
	require.NoError(t, err)

	assert.Equal(t, []byte("123456789"), keys.GroupID)
	assert.Equal(t, "04DDD7D190CA38B9891DFEA3BD542A0E29CCF413B7020D8EF85F5821BFD3C03E5684409AB42C897FB7BE3DF4D6BFDA59F97217144306BC577B9FDF8BEB24158432", string(keys.ServerPublicKeyHex))
	assert.Equal(t, "3FEA28D30FF2B3C16900B9DC77F0AF631C5CFB9103BC23D35BA10FF333A46C3E", string(keys.ClientPrivateKeyHex))
}

func TestParseKeysGroupIDWithComma(t *testing.T) {
	// Splitting on only the first two commas means a comma inside the
	// group id is not rejected: the text up to the first comma becomes the
	// group id and every comma after the second stays in the last field.
	csv := "group,with,comma,deadbeef,cafebabe"

	keys, err := ParseKeys(csv)
	require.NoError(t, err)

	assert.Equal(t, []byte("group"), keys.GroupID)
	assert.Equal(t, "with", string(keys.ServerPublicKeyHex))
	assert.Equal(t, "comma,deadbeef,cafebabe", string(keys.ClientPrivateKeyHex))
}

func TestParseKeysMalformed(t *testing.T) {
	_, err := ParseKeys("only,two")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedKeyBundle))
}

func TestNew(t *testing.T) {
	keys := New("g", "pub", "priv")
	assert.Equal(t, []byte("g"), keys.GroupID)
	assert.Equal(t, []byte("pub"), keys.ServerPublicKeyHex)
	assert.Equal(t, []byte("priv"), keys.ClientPrivateKeyHex)
}
