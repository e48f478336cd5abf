package flatsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/opencontainers/go-digest"
	specs "github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/osinstall/flatsource/internal/blob"
	"github.com/osinstall/flatsource/internal/fetch"
)

// StaticSource reads Flatpak images from an OCI image layout, either on
// the local filesystem or behind a remote HTTP tree.
//
// https://github.com/opencontainers/image-spec/blob/main/image-layout.md
type StaticSource struct {
	repo    RepoConfig
	url     string
	isLocal bool
	arch    string
	blobs   *blob.Store

	// Catalog, loaded once on first use. Single-threaded by
	// construction, so a plain flag is enough.
	images       []*staticImage
	imagesLoaded bool
}

// NewStaticSource creates a source over the layout at
// <repo.BaseURL>/<relative path> (default "Flatpaks").
func NewStaticSource(repo RepoConfig, opts ...Option) *StaticSource {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	url := strings.TrimSuffix(repo.BaseURL, "/") + "/" + options.RelativePath

	return &StaticSource{
		repo:    repo,
		url:     url,
		isLocal: repo.IsLocal(),
		arch:    options.Arch,
		blobs:   blob.NewStore(url),
	}
}

// CalculateSize sums the sizes of the images matching refs and their
// dependencies. Local layouts contribute no download size; they only cost
// install quota.
func (s *StaticSource) CalculateSize(ctx context.Context, refs []string) (int64, int64, error) {
	log.Debug("calculating size", "refs", refs)

	images, err := s.load(ctx)
	if err != nil {
		return 0, 0, err
	}

	expanded, err := expandRefs(refs, asSourceImages(images), s.arch)
	if err != nil {
		return 0, 0, err
	}

	var downloadSize, installedSize int64
	for _, image := range images {
		if !slices.Contains(expanded, image.Ref()) {
			continue
		}

		log.Debug("image size",
			"ref", image.Ref(),
			"download", image.DownloadSize(),
			"installed", image.InstalledSize(),
			"local", s.isLocal)

		if !s.isLocal {
			downloadSize += image.DownloadSize()
		}
		installedSize += image.InstalledSize()
	}

	log.Debug("total size", "download", downloadSize, "installed", installedSize)
	return downloadSize, installedSize, nil
}

// Download stages the images matching refs and their dependencies into
// downloadDir as a self-contained sideload layout. Local layouts are not
// copied; the caller reads directly from the origin.
func (s *StaticSource) Download(ctx context.Context, refs []string, downloadDir string, progress ProgressReporter) (string, error) {
	if s.isLocal {
		return "oci:" + strings.TrimPrefix(s.url, "file://"), nil
	}

	images, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	expanded, err := expandRefs(refs, asSourceImages(images), s.arch)
	if err != nil {
		return "", err
	}

	index := ocispec.Index{
		Versioned: specs.Versioned{SchemaVersion: 2},
	}

	sess, err := fetch.NewSession(s.repo)
	if err != nil {
		return "", err
	}
	defer sess.Close()

	for _, image := range images {
		if !slices.Contains(expanded, image.Ref()) {
			continue
		}

		log.Debug("downloading image", "ref", image.Ref(), "bytes", image.DownloadSize())
		if progress != nil {
			progress.ReportProgress(fmt.Sprintf("Downloading %s", image.Ref()))
		}

		manifestLen, err := s.blobs.Write(ctx, sess, image.digest, downloadDir)
		if err != nil {
			return "", err
		}
		if _, err := s.blobs.Write(ctx, sess, image.manifest.Config.Digest, downloadDir); err != nil {
			return "", err
		}

		index.Manifests = append(index.Manifests, ocispec.Descriptor{
			MediaType: ocispec.MediaTypeImageManifest,
			Digest:    image.digest,
			Size:      manifestLen,
		})

		for _, layer := range image.manifest.Layers {
			if _, err := s.blobs.Stream(ctx, sess, layer.Digest, downloadDir); err != nil {
				return "", err
			}
		}
	}

	collectionDir := filepath.Join(downloadDir, "Flatpaks")
	if err := os.MkdirAll(collectionDir, 0755); err != nil {
		return "", fmt.Errorf("create collection dir: %w", err)
	}

	if err := writeJSON(filepath.Join(collectionDir, ocispec.ImageIndexFile), index); err != nil {
		return "", err
	}
	layout := ocispec.ImageLayout{Version: ocispec.ImageLayoutVersion}
	if err := writeJSON(filepath.Join(collectionDir, ocispec.ImageLayoutFile), layout); err != nil {
		return "", err
	}

	return "oci:" + collectionDir, nil
}

// Images returns the catalog of the layout, in index order.
func (s *StaticSource) Images(ctx context.Context) ([]SourceImage, error) {
	images, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return asSourceImages(images), nil
}

func (s *StaticSource) load(ctx context.Context) ([]*staticImage, error) {
	if s.imagesLoaded {
		return s.images, nil
	}

	sess, err := fetch.NewSession(s.repo)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	indexURL := s.url + "/" + ocispec.ImageIndexFile
	resp, err := sess.Get(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w at %s", ErrNoSource, indexURL)
	}
	if err := fetch.CheckStatus(resp); err != nil {
		return nil, err
	}

	var index ocispec.Index
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, fmt.Errorf("parse %s: %w", indexURL, err)
	}

	var images []*staticImage
	for _, desc := range index.Manifests {
		if desc.MediaType != ocispec.MediaTypeImageManifest {
			continue
		}

		var manifest ocispec.Manifest
		if err := s.fetchJSON(ctx, sess, desc.Digest, &manifest); err != nil {
			return nil, err
		}

		var config ocispec.Image
		if err := s.fetchJSON(ctx, sess, manifest.Config.Digest, &config); err != nil {
			return nil, err
		}

		images = append(images, newStaticImage(desc.Digest, manifest, config))
	}

	s.images = images
	s.imagesLoaded = true
	return images, nil
}

func (s *StaticSource) fetchJSON(ctx context.Context, sess *fetch.Session, dgst digest.Digest, v any) error {
	data, err := s.blobs.Fetch(ctx, sess, dgst)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse blob %s: %w", dgst, err)
	}
	return nil
}

func asSourceImages[T SourceImage](images []T) []SourceImage {
	result := make([]SourceImage, len(images))
	for i, image := range images {
		result[i] = image
	}
	return result
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
