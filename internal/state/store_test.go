package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCache_DiscardLeavesParentUntouched(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Set([]byte("a"), []byte("1")))

	c := NewCache(store)
	require.NoError(t, c.Set([]byte("a"), []byte("2")))
	require.NoError(t, c.Set([]byte("b"), []byte("3")))

	got, err := c.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), got)

	// Dropping the cache without Write discards everything.
	got, err = store.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), got)
	got, err = store.Get([]byte("b"))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCache_WriteThroughNestedCaches(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Set([]byte("gone"), []byte("x")))

	block := NewCache(store)
	tx := NewCache(block)
	require.NoError(t, tx.Set([]byte("k"), []byte("v")))
	require.NoError(t, tx.Delete([]byte("gone")))

	got, err := tx.Get([]byte("gone"))
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, tx.Write())
	require.Empty(t, tx.Changes())

	got, err = block.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)
	got, err = store.Get([]byte("k"))
	require.NoError(t, err)
	require.Nil(t, got, "block cache not yet flushed")

	require.NoError(t, block.Write())
	got, err = store.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), got)
	got, err = store.Get([]byte("gone"))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestCache_ChangesSortedAndCopied(t *testing.T) {
	c := NewCache(NewMemStore())
	val := []byte("v")
	require.NoError(t, c.Set([]byte{0x20, 2}, val))
	require.NoError(t, c.Set([]byte{0x10}, []byte("a")))
	require.NoError(t, c.Delete([]byte{0x20, 1}))
	val[0] = 'X'

	changes := c.Changes()
	require.Len(t, changes, 3)
	require.Equal(t, []byte{0x10}, changes[0].Key)
	require.Equal(t, []byte{0x20, 1}, changes[1].Key)
	require.True(t, changes[1].Deleted)
	require.Equal(t, []byte("v"), changes[2].Value)
}

func TestStore_IteratePrefix(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Apply([]Change{
		{Key: []byte{0x20, 1}, Value: []byte("one")},
		{Key: []byte{0x20, 2}, Value: []byte("two")},
		{Key: []byte{0x21}, Value: []byte("other")},
		{Key: []byte{0x10}, Value: []byte("acct")},
	}))

	var seen []string
	err := s.Iterate([]byte{0x20}, func(_, value []byte) (bool, error) {
		seen = append(seen, string(value))
		return false, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two"}, seen)
}

func TestPrefixEnd(t *testing.T) {
	require.Equal(t, []byte{0x21}, PrefixEnd([]byte{0x20}))
	require.Equal(t, []byte{0x21}, PrefixEnd([]byte{0x20, 0xff}))
	require.Nil(t, PrefixEnd([]byte{0xff, 0xff}))
	require.Nil(t, PrefixEnd(nil))
}
