package testing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/assign/types"
)

func TestMemStateManager_CreateAndGet(t *testing.T) {
	ctx := t.Context()
	m := NewMemStateManager()

	t.Run("create requires parent", func(t *testing.T) {
		err := m.CreateData(ctx, "/a/b", []byte("x"), types.Persistent)
		require.ErrorIs(t, err, types.ErrNoNode)
	})

	t.Run("create then get", func(t *testing.T) {
		require.NoError(t, m.MakePath(ctx, "/a"))
		require.NoError(t, m.CreateData(ctx, "/a/b", []byte("x"), types.Persistent))

		got, err := m.GetData(ctx, "/a/b")
		require.NoError(t, err)
		require.Equal(t, []byte("x"), got.Data)
		require.Equal(t, int64(0), got.Version)
	})

	t.Run("create twice", func(t *testing.T) {
		err := m.CreateData(ctx, "/a/b", nil, types.Persistent)
		require.ErrorIs(t, err, types.ErrAlreadyExists)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := m.GetData(ctx, "/missing")
		require.ErrorIs(t, err, types.ErrNoNode)
	})
}

func TestMemStateManager_MakePath(t *testing.T) {
	ctx := t.Context()
	m := NewMemStateManager()

	require.NoError(t, m.MakePath(ctx, "/collections/books"))

	ok, err := m.HasData(ctx, "/collections")
	require.NoError(t, err)
	require.True(t, ok)

	err = m.MakePath(ctx, "/collections/books")
	require.ErrorIs(t, err, types.ErrAlreadyExists)

	// Existing ancestors are not an error.
	require.NoError(t, m.MakePath(ctx, "/collections/films"))
}

func TestMemStateManager_SetDataVersionCheck(t *testing.T) {
	ctx := t.Context()
	m := NewMemStateManager()
	m.Put("/counter", []byte{0})

	require.NoError(t, m.SetData(ctx, "/counter", []byte{1}, 0))

	err := m.SetData(ctx, "/counter", []byte{2}, 0)
	require.ErrorIs(t, err, types.ErrBadVersion)

	require.NoError(t, m.SetData(ctx, "/counter", []byte{3}, types.AnyVersion))

	got, err := m.GetData(ctx, "/counter")
	require.NoError(t, err)
	require.Equal(t, []byte{3}, got.Data)
	require.Equal(t, int64(2), got.Version)

	err = m.SetData(ctx, "/nope", nil, types.AnyVersion)
	require.ErrorIs(t, err, types.ErrNoNode)
}

func TestMemStateManager_ListAndRemove(t *testing.T) {
	ctx := t.Context()
	m := NewMemStateManager()
	m.Put("/live_nodes/n2", nil)
	m.Put("/live_nodes/n1", nil)
	m.Put("/live_nodes/n1/child", nil)

	children, err := m.ListData(ctx, "/live_nodes")
	require.NoError(t, err)
	require.Equal(t, []string{"n1", "n2"}, children)

	root, err := m.ListData(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, []string{"live_nodes"}, root)

	err = m.RemoveData(ctx, "/live_nodes/n1", types.AnyVersion)
	require.Error(t, err)

	require.NoError(t, m.RemoveData(ctx, "/live_nodes/n2", 0))
	children, err = m.ListData(ctx, "/live_nodes")
	require.NoError(t, err)
	require.Equal(t, []string{"n1"}, children)

	_, err = m.ListData(ctx, "/missing")
	require.ErrorIs(t, err, types.ErrNoNode)
}

func TestMemStateManager_FaultInjection(t *testing.T) {
	ctx := t.Context()
	m := NewMemStateManager()
	m.Put("/x", nil)

	boom := errors.New("connection loss")
	m.FailNext(OpGetData, boom)

	_, err := m.GetData(ctx, "/x")
	require.ErrorIs(t, err, boom)

	// Only the next call fails.
	_, err = m.GetData(ctx, "/x")
	require.NoError(t, err)
}

func TestMemStateManager_BeforeSetData(t *testing.T) {
	ctx := t.Context()
	m := NewMemStateManager()
	m.Put("/x", []byte("a"))

	var once sync.Once
	m.BeforeSetData(func(path string) {
		once.Do(func() {
			m.Put(path, []byte("racer"))
		})
	})

	err := m.SetData(ctx, "/x", []byte("b"), 0)
	require.ErrorIs(t, err, types.ErrBadVersion)

	got, err := m.GetData(ctx, "/x")
	require.NoError(t, err)
	require.Equal(t, []byte("racer"), got.Data)
}

func TestMemStateManager_CancelledContext(t *testing.T) {
	m := NewMemStateManager()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := m.HasData(ctx, "/")
	require.ErrorIs(t, err, context.Canceled)
}

func TestMemStateManager_InvalidPath(t *testing.T) {
	m := NewMemStateManager()

	_, err := m.HasData(t.Context(), "relative")
	require.Error(t, err)

	_, err = m.HasData(t.Context(), "/trailing/")
	require.Error(t, err)
}
