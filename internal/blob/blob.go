// Package blob implements the digest-addressed blob layer of an OCI image
// layout, read over a fetch.Session.
//
// Blobs live under <base>/blobs/sha256/<hex>. Small documents (manifests,
// configs) are fetched whole and memoized per Store instance; layer blobs
// are streamed to disk in fixed-size chunks without buffering the body.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/osinstall/flatsource/internal/fetch"
)

const chunkSize = 64 * 1024

// Store reads blobs from one layout by digest. The fetch cache is private
// to the instance and unsynchronized; access is single-threaded by
// construction.
type Store struct {
	baseURL string
	cached  map[digest.Digest][]byte
}

// NewStore creates a store over the layout rooted at baseURL.
func NewStore(baseURL string) *Store {
	return &Store{
		baseURL: baseURL,
		cached:  make(map[digest.Digest][]byte),
	}
}

// Fetch returns the blob's bytes, memoized per store instance. Intended
// for manifests and config documents, which are expected to be small.
func (s *Store) Fetch(ctx context.Context, sess *fetch.Session, dgst digest.Digest) ([]byte, error) {
	if data, ok := s.cached[dgst]; ok {
		return data, nil
	}

	resp, err := sess.Get(ctx, s.blobURL(dgst))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := fetch.CheckStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", dgst, err)
	}

	s.cached[dgst] = data
	return data, nil
}

// Write materializes a small blob into destDir's blob tree, going through
// the fetch cache, and returns its byte count.
func (s *Store) Write(ctx context.Context, sess *fetch.Session, dgst digest.Digest, destDir string) (int64, error) {
	data, err := s.Fetch(ctx, sess, dgst)
	if err != nil {
		return 0, err
	}

	path, err := s.destPath(dgst, destDir)
	if err != nil {
		return 0, err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("write blob %s: %w", dgst, err)
	}
	return int64(len(data)), nil
}

// Stream copies a blob into destDir's blob tree in fixed-size chunks and
// returns the number of bytes written. Intended for layer blobs, which may
// be large; the body is never held in memory.
func (s *Store) Stream(ctx context.Context, sess *fetch.Session, dgst digest.Digest, destDir string) (int64, error) {
	path, err := s.destPath(dgst, destDir)
	if err != nil {
		return 0, err
	}

	resp, err := sess.Get(ctx, s.blobURL(dgst))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := fetch.CheckStatus(resp); err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create blob file: %w", err)
	}

	written, err := io.CopyBuffer(f, resp.Body, make([]byte, chunkSize))
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("stream blob %s: %w", dgst, err)
	}
	return written, nil
}

func (s *Store) blobURL(dgst digest.Digest) string {
	return s.baseURL + "/" + blobPath(dgst)
}

func (s *Store) destPath(dgst digest.Digest, destDir string) (string, error) {
	dir := filepath.Join(destDir, ocispec.ImageBlobsDir, string(digest.SHA256))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	return filepath.Join(dir, encoded(dgst)), nil
}

func blobPath(dgst digest.Digest) string {
	return ocispec.ImageBlobsDir + "/" + string(digest.SHA256) + "/" + encoded(dgst)
}

// encoded returns the hex part of a sha256 digest. Any other algorithm
// reaching the blob layer is a programming error, not a recoverable
// condition.
func encoded(dgst digest.Digest) string {
	if dgst.Algorithm() != digest.SHA256 {
		panic(fmt.Sprintf("blob: digest %q is not sha256", dgst))
	}
	return dgst.Encoded()
}
