package kvstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", ""},
		{"/collections", "collections"},
		{"/collections/books/counter", "collections.books.counter"},
		{"/collections/.sys.coll", "collections.=2Esys=2Ecoll"},
		{"/live_nodes/host:8983_solr", "live_nodes.host=3A8983_solr"},
		{"/a/x=y", "a.x=3Dy"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Key(tt.path)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestKey_Invalid(t *testing.T) {
	for _, p := range []string{"", "relative", "/a//b", "/trailing/"} {
		_, err := Key(p)
		require.Error(t, err, p)
	}
}

func TestUnescape(t *testing.T) {
	for _, s := range []string{"plain", ".sys.coll", "host:8983_solr", "x=y", "ünïcode"} {
		got, err := Unescape(Escape(s))
		require.NoError(t, err)
		require.Equal(t, s, got)
	}

	_, err := Unescape("bad=4")
	require.Error(t, err)
	_, err = Unescape("bad=ZZ")
	require.Error(t, err)
}
