package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newStoresUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"locked":    NewLocked(),
		"eventloop": NewEventLoop(16),
		"sharded":   NewSharded(4),
	}
}

func TestStore_ReadAfterWrite(t *testing.T) {
	for name, s := range newStoresUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set("k", "v"))
			v, ok := s.Get("k")
			require.True(t, ok)
			require.Equal(t, "v", v)
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	for name, s := range newStoresUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set("k", "v1"))
			require.NoError(t, s.Set("k", "v2"))
			v, ok := s.Get("k")
			require.True(t, ok)
			require.Equal(t, "v2", v)
		})
	}
}

func TestStore_DeleteRemoves(t *testing.T) {
	for name, s := range newStoresUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set("k", "v"))
			require.True(t, s.Delete("k"))
			_, ok := s.Get("k")
			require.False(t, ok)
			require.False(t, s.Delete("k"), "second delete reports absent")
		})
	}
}

func TestStore_EmptyKeyRejected(t *testing.T) {
	for name, s := range newStoresUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, s.Set("", "v"), ErrEmptyKey)
		})
	}
}

func TestStore_SnapshotAndLen(t *testing.T) {
	for name, s := range newStoresUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set("a", "1"))
			require.NoError(t, s.Set("b", "2"))
			require.Equal(t, 2, s.Len())

			snap := s.Snapshot()
			require.Len(t, snap, 2)

			s.Clear()
			require.Equal(t, 0, s.Len())
		})
	}
}

func TestStore_ExistsTracksDelete(t *testing.T) {
	for name, s := range newStoresUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.False(t, s.Exists("k"))
			require.NoError(t, s.Set("k", "v"))
			require.True(t, s.Exists("k"))
			s.Delete("k")
			require.False(t, s.Exists("k"))
		})
	}
}
