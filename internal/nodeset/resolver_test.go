package nodeset

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/assign/internal/noderoles"
	assigntest "github.com/arloliu/assign/testing"
	"github.com/arloliu/assign/types"
)

func TestResolve_Explicit(t *testing.T) {
	ctx := t.Context()
	live := []string{"n1", "n2", "n3"}

	t.Run("keeps live nodes in order without shuffle", func(t *testing.T) {
		r := NewResolver(assigntest.NewMemStateManager(), rand.New(rand.NewSource(1)))

		got, err := r.Resolve(ctx, live, types.ParseNodeSet("n3,n9,n1"), false)
		require.NoError(t, err)
		require.Equal(t, []string{"n3", "n1"}, got)
	})

	t.Run("shuffle keeps membership", func(t *testing.T) {
		r := NewResolver(assigntest.NewMemStateManager(), rand.New(rand.NewSource(1)))

		got, err := r.Resolve(ctx, live, types.ParseNodeSet("n3,n2,n1"), true)
		require.NoError(t, err)
		require.ElementsMatch(t, live, got)
	})

	t.Run("EMPTY sentinel", func(t *testing.T) {
		r := NewResolver(assigntest.NewMemStateManager(), nil)

		got, err := r.Resolve(ctx, live, types.ParseNodeSet(types.NodeSetEmpty), true)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Empty(t, got)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		r := NewResolver(assigntest.NewMemStateManager(), nil)

		got, err := r.Resolve(ctx, live, types.ParseNodeSet("n2,n2, n2"), false)
		require.NoError(t, err)
		require.Equal(t, []string{"n2"}, got)
	})

	t.Run("explicit list ignores roles", func(t *testing.T) {
		mgr := assigntest.NewMemStateManager()
		require.NoError(t, noderoles.SetNodeRole(ctx, mgr, "n1", noderoles.RoleData, noderoles.ModeOff))
		r := NewResolver(mgr, nil)

		got, err := r.Resolve(ctx, live, types.ExplicitNodeSet("n1"), false)
		require.NoError(t, err)
		require.Equal(t, []string{"n1"}, got)
	})
}

func TestResolve_LiveNodes(t *testing.T) {
	ctx := t.Context()
	live := []string{"n3", "n1", "n2", "n4"}

	t.Run("excludes data off nodes", func(t *testing.T) {
		mgr := assigntest.NewMemStateManager()
		require.NoError(t, noderoles.SetNodeRole(ctx, mgr, "n2", noderoles.RoleData, noderoles.ModeOff))
		r := NewResolver(mgr, rand.New(rand.NewSource(7)))

		got, err := r.Resolve(ctx, live, types.NodeSet{}, false)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"n1", "n3", "n4"}, got)
	})

	t.Run("same seed same order regardless of input order", func(t *testing.T) {
		mgr := assigntest.NewMemStateManager()
		a, err := NewResolver(mgr, rand.New(rand.NewSource(42))).Resolve(ctx, live, types.NodeSet{}, false)
		require.NoError(t, err)
		b, err := NewResolver(mgr, rand.New(rand.NewSource(42))).Resolve(ctx, []string{"n4", "n2", "n1", "n3"}, types.NodeSet{}, false)
		require.NoError(t, err)
		require.Equal(t, a, b)
	})

	t.Run("role failure is fatal", func(t *testing.T) {
		mgr := assigntest.NewMemStateManager()
		mgr.FailNext(assigntest.OpListData, errors.New("connection loss"))
		r := NewResolver(mgr, nil)

		_, err := r.Resolve(ctx, live, types.NodeSet{}, true)
		require.ErrorIs(t, err, types.ErrServer)
	})

	t.Run("no live nodes", func(t *testing.T) {
		r := NewResolver(assigntest.NewMemStateManager(), nil)

		got, err := r.Resolve(ctx, nil, types.NodeSet{}, true)
		require.NoError(t, err)
		require.Empty(t, got)
	})
}
