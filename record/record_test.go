package record

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(key string) Record {
	return Record{
		Key:         key,
		Contract:    "ERC721",
		Address:     "0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaa1",
		TxHash:      "0xabcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890",
		BlockNumber: 12,
		Network:     "localhost",
		ChainID:     31337,
		RunID:       "run-1",
		DeployedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore(t *testing.T) {
	store := NewStore(t.TempDir())

	t.Run("path is per chain", func(t *testing.T) {
		assert.Equal(t, filepath.Join("chain-31337", FileName), relPath(t, store, 31337))
	})

	t.Run("save and lookup", func(t *testing.T) {
		want := testRecord("ERC721#ERC721")
		require.NoError(t, store.Save(want))

		got, err := store.Lookup(31337, "ERC721#ERC721")
		require.NoError(t, err)
		assert.Equal(t, want.Address, got.Address)
		assert.Equal(t, want.TxHash, got.TxHash)
		assert.Equal(t, want.BlockNumber, got.BlockNumber)
		assert.True(t, want.DeployedAt.Equal(got.DeployedAt))

		_, err = os.Stat(store.Path(31337))
		assert.NoError(t, err)
	})

	t.Run("save replaces key", func(t *testing.T) {
		r := testRecord("ERC721#ERC721")
		r.BlockNumber = 99
		require.NoError(t, store.Save(r))

		got, err := store.Lookup(31337, "ERC721#ERC721")
		require.NoError(t, err)
		assert.Equal(t, uint64(99), got.BlockNumber)
	})

	t.Run("list sorted by key", func(t *testing.T) {
		require.NoError(t, store.Save(testRecord("A#First")))

		records, err := store.List(31337)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "A#First", records[0].Key)
		assert.Equal(t, "ERC721#ERC721", records[1].Key)
	})

	t.Run("chains are isolated", func(t *testing.T) {
		_, err := store.Lookup(11155111, "ERC721#ERC721")
		assert.ErrorIs(t, err, ErrNotFound)

		records, err := store.List(11155111)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("key required", func(t *testing.T) {
		assert.Error(t, store.Save(Record{ChainID: 1}))
	})
}

func TestStoreCorruptFile(t *testing.T) {
	store := NewStore(t.TempDir())
	path := store.Path(1)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("deployments: [oops"), 0o644))

	_, err := store.Lookup(1, "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func relPath(t *testing.T, s *Store, chainID uint64) string {
	t.Helper()
	rel, err := filepath.Rel(s.dir, s.Path(chainID))
	require.NoError(t, err)
	return rel
}
