package logging

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/assign/internal/counter"
	"github.com/arloliu/assign/internal/naming"
	assigntest "github.com/arloliu/assign/testing"
	"github.com/arloliu/assign/types"
)

// conflictOnce makes the first counter write lose to a concurrent writer.
func conflictOnce(mgr *assigntest.MemStateManager) {
	var fired atomic.Bool
	mgr.BeforeSetData(func(path string) {
		if fired.CompareAndSwap(false, true) {
			mgr.Put(path, counter.Encode(41))
		}
	})
}

func TestSlogLogger_CounterConflictLoggedAtDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	mgr := assigntest.NewMemStateManager()
	mgr.Put(naming.CounterPath("books"), counter.Encode(0))
	conflictOnce(mgr)

	c, err := counter.New(mgr, counter.WithLogger(NewSlogText(buf, slog.LevelDebug)))
	require.NoError(t, err)

	id, err := c.IncrementAndGet(t.Context(), "books")
	require.NoError(t, err)
	require.Equal(t, 42, id)

	output := buf.String()
	assert.Contains(t, output, "level=DEBUG")
	assert.Contains(t, output, `msg="counter version conflict, retrying"`)
	assert.Contains(t, output, "collection=books")
	assert.Contains(t, output, "attempt=1")
}

func TestSlogLogger_InfoLevelHidesRetries(t *testing.T) {
	buf := &bytes.Buffer{}
	mgr := assigntest.NewMemStateManager()
	mgr.Put(naming.CounterPath("books"), counter.Encode(0))
	conflictOnce(mgr)

	c, err := counter.New(mgr, counter.WithLogger(NewSlogText(buf, slog.LevelInfo)))
	require.NoError(t, err)

	_, err = c.IncrementAndGet(t.Context(), "books")
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestSlogLogger_CounterFailureLoggedAtError(t *testing.T) {
	buf := &bytes.Buffer{}
	mgr := assigntest.NewMemStateManager()
	mgr.Put(naming.CounterPath("books"), counter.Encode(0))
	mgr.FailNext(assigntest.OpGetData, errors.New("connection loss"))

	c, err := counter.New(mgr, counter.WithLogger(NewSlogText(buf, slog.LevelWarn)))
	require.NoError(t, err)

	_, err = c.IncrementAndGet(t.Context(), "books")
	require.ErrorIs(t, err, types.ErrServer)

	output := buf.String()
	assert.Contains(t, output, "level=ERROR")
	assert.Contains(t, output, "counter increment failed")
	assert.Contains(t, output, "connection loss")
}

func TestSlogLogger_RejectedPlacementFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSlog(slog.New(slog.NewTextHandler(buf, nil)))

	cause := fmt.Errorf("%w: node n9 is not live", types.ErrBadRequest)
	logger.Warn("rejecting replica request", "collection", "books", "shard", "shard1", "error", cause)

	output := buf.String()
	assert.Contains(t, output, "level=WARN")
	assert.Contains(t, output, "shard=shard1")
	assert.Contains(t, output, `error="bad request: node n9 is not live"`)
}

func TestSlogLogger_WithScopesEveryRecord(t *testing.T) {
	buf := &bytes.Buffer{}
	base := NewSlogText(buf, slog.LevelInfo)
	scoped := base.With("component", "assignctl")

	scoped.Info("replicas placed", "positions", 3)
	base.Info("assignment rejected", "result", "assignment")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "component=assignctl")
	assert.Contains(t, string(lines[0]), "positions=3")
	assert.NotContains(t, string(lines[1]), "component=")
}

func TestNewSlogDefault(t *testing.T) {
	require.NotNil(t, NewSlogDefault().logger)
}
