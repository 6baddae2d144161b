package counter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/assign/internal/naming"
	assigntest "github.com/arloliu/assign/testing"
	"github.com/arloliu/assign/types"
)

func TestEncodeDecode(t *testing.T) {
	require.Equal(t, []byte{0, 0, 0, 1}, Encode(1))
	require.Equal(t, []byte{0, 0, 1, 0}, Encode(256))

	v, err := Decode([]byte{0, 0, 1, 0})
	require.NoError(t, err)
	require.Equal(t, int32(256), v)

	_, err = Decode([]byte{1, 2})
	require.Error(t, err)
}

func TestNew_RequiresStateManager(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, types.ErrStateManagerRequired)
}

func TestIncrementAndGet_Sequential(t *testing.T) {
	ctx := t.Context()
	mgr := assigntest.NewMemStateManager()
	c, err := New(mgr)
	require.NoError(t, err)

	for want := 1; want <= 5; want++ {
		got, err := c.IncrementAndGet(ctx, "books")
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	// Counters are per collection.
	got, err := c.IncrementAndGet(ctx, "films")
	require.NoError(t, err)
	require.Equal(t, 1, got)

	data, err := mgr.GetData(ctx, naming.CounterPath("books"))
	require.NoError(t, err)
	require.Equal(t, Encode(5), data.Data)
}

func TestIncrementAndGet_ExistingCollectionPath(t *testing.T) {
	ctx := t.Context()
	mgr := assigntest.NewMemStateManager()
	require.NoError(t, mgr.MakePath(ctx, naming.CollectionPath("books")))

	c, err := New(mgr)
	require.NoError(t, err)

	got, err := c.IncrementAndGet(ctx, "books")
	require.NoError(t, err)
	require.Equal(t, 1, got)
}

// racingCreator reports the counter as missing so that creation collides
// with a node another process already created.
type racingCreator struct {
	*assigntest.MemStateManager
}

func (r racingCreator) HasData(context.Context, string) (bool, error) {
	return false, nil
}

func TestIncrementAndGet_CreateRaceTolerated(t *testing.T) {
	ctx := t.Context()
	mgr := assigntest.NewMemStateManager()
	mgr.Put(naming.CounterPath("books"), Encode(7))

	c, err := New(racingCreator{mgr})
	require.NoError(t, err)

	got, err := c.IncrementAndGet(ctx, "books")
	require.NoError(t, err)
	require.Equal(t, 8, got)
}

func TestIncrementAndGet_Concurrent(t *testing.T) {
	ctx := t.Context()
	mgr := assigntest.NewMemStateManager()
	c, err := New(mgr)
	require.NoError(t, err)

	const workers = 8
	const perWorker = 25

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[int]struct{})
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id, err := c.IncrementAndGet(ctx, "books")
				if !assertNoError(t, err) {
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
	for i := 1; i <= workers*perWorker; i++ {
		require.Contains(t, seen, i)
	}
}

func TestIncrementAndGet_RetriesOnBadVersion(t *testing.T) {
	ctx := t.Context()
	mgr := assigntest.NewMemStateManager()
	mgr.Put(naming.CounterPath("books"), Encode(0))

	conflicts := 0
	mgr.BeforeSetData(func(path string) {
		if conflicts < 3 {
			conflicts++
			data, _ := mgr.GetData(context.Background(), path)
			v, _ := Decode(data.Data)
			mgr.Put(path, Encode(v+1))
		}
	})

	c, err := New(mgr)
	require.NoError(t, err)

	got, err := c.IncrementAndGet(ctx, "books")
	require.NoError(t, err)
	require.Equal(t, 4, got)
	require.Equal(t, 3, conflicts)
}

func TestIncrementAndGet_FatalErrorsNotRetried(t *testing.T) {
	boom := errors.New("connection loss")

	tests := []struct {
		name string
		op   assigntest.Op
	}{
		{"has data", assigntest.OpHasData},
		{"make path", assigntest.OpMakePath},
		{"create data", assigntest.OpCreateData},
		{"get data", assigntest.OpGetData},
		{"set data", assigntest.OpSetData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := assigntest.NewMemStateManager()
			mgr.FailNext(tt.op, boom)

			c, err := New(mgr)
			require.NoError(t, err)

			_, err = c.IncrementAndGet(t.Context(), "books")
			require.ErrorIs(t, err, types.ErrServer)
			require.ErrorIs(t, err, boom)
		})
	}
}

func TestIncrementAndGet_CorruptValue(t *testing.T) {
	mgr := assigntest.NewMemStateManager()
	mgr.Put(naming.CounterPath("books"), []byte("x"))

	c, err := New(mgr)
	require.NoError(t, err)

	_, err = c.IncrementAndGet(t.Context(), "books")
	require.ErrorIs(t, err, types.ErrServer)
}

func TestIncrementAndGet_BoundedRetries(t *testing.T) {
	mgr := assigntest.NewMemStateManager()
	mgr.Put(naming.CounterPath("books"), Encode(0))
	mgr.BeforeSetData(func(path string) {
		mgr.Put(path, Encode(42))
	})

	c, err := New(mgr, WithMaxRetries(3), WithRetryBackoff(time.Millisecond))
	require.NoError(t, err)

	_, err = c.IncrementAndGet(t.Context(), "books")
	require.ErrorIs(t, err, types.ErrCounterRetriesExhausted)
}

func TestIncrementAndGet_CancelledDuringBackoff(t *testing.T) {
	mgr := assigntest.NewMemStateManager()
	mgr.Put(naming.CounterPath("books"), Encode(0))

	ctx, cancel := context.WithCancel(t.Context())
	mgr.BeforeSetData(func(path string) {
		mgr.Put(path, Encode(1))
		cancel()
	})

	c, err := New(mgr, WithRetryBackoff(time.Hour))
	require.NoError(t, err)

	_, err = c.IncrementAndGet(ctx, "books")
	require.ErrorIs(t, err, types.ErrServer)
	require.ErrorIs(t, err, context.Canceled)
}

func assertNoError(t *testing.T, err error) bool {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
		return false
	}

	return true
}
