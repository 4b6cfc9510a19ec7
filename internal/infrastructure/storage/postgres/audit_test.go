package postgres

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepo_CompressesLargePayloads(t *testing.T) {
	repo, err := NewAuditRepo(nil, 64)
	require.NoError(t, err)

	small := json.RawMessage(`{"number":"SAY-2024-001"}`)
	changes, compressed, algo := repo.encode(small)
	assert.Equal(t, CompressionNone, algo)
	assert.Nil(t, compressed)
	assert.Equal(t, small, changes)

	large := json.RawMessage(`{"items":"` + string(bytes.Repeat([]byte("a"), 500)) + `"}`)
	changes, compressed, algo = repo.encode(large)
	assert.Equal(t, CompressionZstd, algo)
	assert.Nil(t, changes)
	assert.Less(t, len(compressed), len(large))

	decoded, err := repo.decode(changes, compressed, algo)
	require.NoError(t, err)
	assert.JSONEq(t, string(large), string(decoded))
}
