package blob

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osinstall/flatsource/internal/fetch"
)

func serveBlobs(t *testing.T, blobs map[digest.Digest][]byte) (*httptest.Server, map[string]int) {
	hits := make(map[string]int)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits[r.URL.Path]++

		hex, ok := strings.CutPrefix(r.URL.Path, "/blobs/sha256/")
		if ok {
			if data, found := blobs[digest.NewDigestFromEncoded(digest.SHA256, hex)]; found {
				w.Write(data)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server, hits
}

func newSession(t *testing.T) *fetch.Session {
	sess, err := fetch.NewSession(fetch.Config{})
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return sess
}

func TestStoreFetchMemoizes(t *testing.T) {
	data := []byte(`{"hello":"world"}`)
	dgst := digest.FromBytes(data)

	server, hits := serveBlobs(t, map[digest.Digest][]byte{dgst: data})
	store := NewStore(server.URL)
	sess := newSession(t)

	for i := 0; i < 3; i++ {
		got, err := store.Fetch(context.Background(), sess, dgst)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}

	assert.Equal(t, 1, hits["/blobs/sha256/"+dgst.Encoded()])
}

func TestStoreFetchMissing(t *testing.T) {
	server, _ := serveBlobs(t, nil)
	store := NewStore(server.URL)

	_, err := store.Fetch(context.Background(), newSession(t), digest.FromString("missing"))
	assert.Error(t, err)
}

func TestStoreWrite(t *testing.T) {
	data := []byte(`{"config":{}}`)
	dgst := digest.FromBytes(data)

	server, _ := serveBlobs(t, map[digest.Digest][]byte{dgst: data})
	store := NewStore(server.URL)
	dest := t.TempDir()

	n, err := store.Write(context.Background(), newSession(t), dgst, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	written, err := os.ReadFile(filepath.Join(dest, "blobs", "sha256", dgst.Encoded()))
	require.NoError(t, err)
	assert.Equal(t, data, written)
}

func TestStoreStream(t *testing.T) {
	// Larger than one copy chunk so several reads happen.
	data := bytes.Repeat([]byte{'x'}, 3*chunkSize+17)
	dgst := digest.FromBytes(data)

	server, _ := serveBlobs(t, map[digest.Digest][]byte{dgst: data})
	store := NewStore(server.URL)
	dest := t.TempDir()

	n, err := store.Stream(context.Background(), newSession(t), dgst, dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	written, err := os.ReadFile(filepath.Join(dest, "blobs", "sha256", dgst.Encoded()))
	require.NoError(t, err)
	assert.Equal(t, data, written)

	// Streaming bypasses the memo cache.
	assert.Empty(t, store.cached)
}

func TestStoreRejectsNonSHA256(t *testing.T) {
	store := NewStore("http://example.invalid")

	assert.Panics(t, func() {
		store.Fetch(context.Background(), newSession(t), digest.Digest("md5:abcdef"))
	})
}
