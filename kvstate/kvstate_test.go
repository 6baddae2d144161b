package kvstate

import (
	"sync"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/assign/internal/counter"
	assigntest "github.com/arloliu/assign/testing"
	"github.com/arloliu/assign/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	_, nc := assigntest.StartEmbeddedNATS(t)
	kv := assigntest.CreateJetStreamKV(t, nc, "state")

	return New(kv, WithLogger(assigntest.NewTestLogger(t)))
}

func TestOpen(t *testing.T) {
	_, nc := assigntest.StartEmbeddedNATS(t)
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Storage = "memory"

	m1, err := Open(t.Context(), js, cfg)
	require.NoError(t, err)
	m2, err := Open(t.Context(), js, cfg)
	require.NoError(t, err)

	require.NoError(t, m1.MakePath(t.Context(), "/a"))
	ok, err := m2.HasData(t.Context(), "/a")
	require.NoError(t, err)
	require.True(t, ok)

	cfg.Storage = "tape"
	_, err = Open(t.Context(), js, cfg)
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestManager_CreateGetSet(t *testing.T) {
	ctx := t.Context()
	m := newTestManager(t)

	err := m.CreateData(ctx, "/collections/books", []byte("x"), types.Persistent)
	require.ErrorIs(t, err, types.ErrNoNode)

	require.NoError(t, m.MakePath(ctx, "/collections"))
	require.NoError(t, m.CreateData(ctx, "/collections/books", []byte("x"), types.Persistent))

	err = m.CreateData(ctx, "/collections/books", []byte("y"), types.Persistent)
	require.ErrorIs(t, err, types.ErrAlreadyExists)

	got, err := m.GetData(ctx, "/collections/books")
	require.NoError(t, err)
	require.Equal(t, []byte("x"), got.Data)

	require.NoError(t, m.SetData(ctx, "/collections/books", []byte("y"), got.Version))

	err = m.SetData(ctx, "/collections/books", []byte("z"), got.Version)
	require.ErrorIs(t, err, types.ErrBadVersion)

	require.NoError(t, m.SetData(ctx, "/collections/books", []byte("z"), types.AnyVersion))

	err = m.SetData(ctx, "/collections/films", []byte("z"), 1)
	require.ErrorIs(t, err, types.ErrNoNode)

	_, err = m.GetData(ctx, "/collections/films")
	require.ErrorIs(t, err, types.ErrNoNode)
}

func TestManager_EphemeralUnsupported(t *testing.T) {
	m := newTestManager(t)

	err := m.CreateData(t.Context(), "/x", nil, types.Ephemeral)
	require.ErrorIs(t, err, types.ErrUnsupported)
}

func TestManager_MakePath(t *testing.T) {
	ctx := t.Context()
	m := newTestManager(t)

	require.NoError(t, m.MakePath(ctx, "/node_roles/data/off"))
	err := m.MakePath(ctx, "/node_roles/data/off")
	require.ErrorIs(t, err, types.ErrAlreadyExists)

	ok, err := m.HasData(ctx, "/node_roles/data")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestManager_ListAndRemove(t *testing.T) {
	ctx := t.Context()
	m := newTestManager(t)

	require.NoError(t, m.MakePath(ctx, "/live_nodes"))
	for _, n := range []string{"host2:8983_solr", "host1:8983_solr"} {
		require.NoError(t, m.CreateData(ctx, "/live_nodes/"+n, nil, types.Persistent))
	}
	require.NoError(t, m.MakePath(ctx, "/live_nodes/host1:8983_solr/nested"))

	children, err := m.ListData(ctx, "/live_nodes")
	require.NoError(t, err)
	require.Equal(t, []string{"host1:8983_solr", "host2:8983_solr"}, children)

	root, err := m.ListData(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, []string{"live_nodes"}, root)

	err = m.RemoveData(ctx, "/live_nodes/host1:8983_solr", types.AnyVersion)
	require.Error(t, err)

	got, err := m.GetData(ctx, "/live_nodes/host2:8983_solr")
	require.NoError(t, err)
	err = m.RemoveData(ctx, "/live_nodes/host2:8983_solr", got.Version+100)
	require.ErrorIs(t, err, types.ErrBadVersion)
	require.NoError(t, m.RemoveData(ctx, "/live_nodes/host2:8983_solr", got.Version))

	children, err = m.ListData(ctx, "/live_nodes")
	require.NoError(t, err)
	require.Equal(t, []string{"host1:8983_solr"}, children)

	_, err = m.ListData(ctx, "/missing")
	require.ErrorIs(t, err, types.ErrNoNode)

	// A removed node can be created again.
	require.NoError(t, m.CreateData(ctx, "/live_nodes/host2:8983_solr", nil, types.Persistent))
}

func TestManager_CounterIntegration(t *testing.T) {
	ctx := t.Context()
	m := newTestManager(t)

	c, err := counter.New(m)
	require.NoError(t, err)

	const workers = 4
	const perWorker = 10

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[int]struct{})
		errs []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id, err := c.IncrementAndGet(ctx, ".sys.coll")
				mu.Lock()
				if err != nil {
					errs = append(errs, err)
				} else {
					seen[id] = struct{}{}
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Len(t, seen, workers*perWorker)
	for i := 1; i <= workers*perWorker; i++ {
		require.Contains(t, seen, i)
	}
}
