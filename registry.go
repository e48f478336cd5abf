package flatsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/osinstall/flatsource/internal/fetch"
)

// RegistrySource reads Flatpak images indexed by a remote JSON endpoint
// and stored in a container registry.
//
// https://github.com/flatpak/flatpak-oci-specs/blob/main/registry-index.md
type RegistrySource struct {
	url  string
	arch string

	images       []*registryImage
	imagesLoaded bool
}

// NewRegistrySource creates a source over a registry index URL. The URL
// may carry an "oci+" transport prefix and a fragment naming the tag to
// query (default "latest").
func NewRegistrySource(url string, opts ...Option) *RegistrySource {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &RegistrySource{
		url:  url,
		arch: options.Arch,
	}
}

// CalculateSize returns (0, maxSingleDownload + sumInstalled).
//
// Registry images are not staged in a temporary download area; the
// install step fetches them one at a time into the target system, so the
// download slot of the result is always zero and the target system needs
// room for the largest single download on top of the installed total.
// That space is also what upgrades after installation will need.
func (s *RegistrySource) CalculateSize(ctx context.Context, refs []string) (int64, int64, error) {
	log.Debug("calculating size", "refs", refs)

	images, err := s.load(ctx)
	if err != nil {
		return 0, 0, err
	}

	expanded, err := expandRefs(refs, asSourceImages(images), s.arch)
	if err != nil {
		return 0, 0, err
	}

	var maxDownloadSize, installedSize int64
	for _, image := range images {
		if !slices.Contains(expanded, image.Ref()) {
			continue
		}

		log.Debug("image size",
			"ref", image.Ref(),
			"download", image.DownloadSize(),
			"installed", image.InstalledSize())

		maxDownloadSize = max(maxDownloadSize, image.DownloadSize())
		installedSize += image.InstalledSize()
	}

	log.Debug("total size", "max download", maxDownloadSize, "installed", installedSize)
	return 0, installedSize + maxDownloadSize, nil
}

// Download is a no-op: images are fetched per-ref at install time
// directly from the registry, so no sideload location is needed.
func (s *RegistrySource) Download(ctx context.Context, refs []string, downloadDir string, progress ProgressReporter) (string, error) {
	return "", nil
}

// Images returns the catalog reported by the registry index for the
// current architecture and tag.
func (s *RegistrySource) Images(ctx context.Context) ([]SourceImage, error) {
	images, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return asSourceImages(images), nil
}

// registryIndex mirrors the registry index search response.
type registryIndex struct {
	Results []struct {
		Images []struct {
			Architecture string            `json:"Architecture"`
			Labels       map[string]string `json:"Labels"`
		} `json:"Images"`
	} `json:"Results"`
}

func (s *RegistrySource) load(ctx context.Context) ([]*registryImage, error) {
	if s.imagesLoaded {
		return s.images, nil
	}

	arch := containerArch(s.arch)

	queryURL, err := s.queryURL(arch)
	if err != nil {
		return nil, err
	}

	sess, err := fetch.NewSession(fetch.Config{})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	resp, err := sess.Get(ctx, queryURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := fetch.CheckStatus(resp); err != nil {
		return nil, err
	}

	var index registryIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, fmt.Errorf("parse registry index: %w", err)
	}

	var images []*registryImage
	for _, repository := range index.Results {
		for _, image := range repository.Images {
			if image.Architecture != arch {
				continue
			}
			images = append(images, newRegistryImage(image.Labels))
		}
	}

	s.images = images
	s.imagesLoaded = true
	return images, nil
}

// queryURL builds the index search URL: the base stripped of its
// transport prefix and fragment, filtered by the presence of the Flatpak
// ref label, the container architecture name, and the fragment-derived
// tag.
func (s *RegistrySource) queryURL(arch string) (string, error) {
	base := strings.TrimPrefix(s.url, "oci+")

	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse registry url %q: %w", s.url, err)
	}

	tag := parsed.Fragment
	if tag == "" {
		tag = "latest"
	}
	parsed.Fragment = ""
	parsed.RawQuery = ""

	return fmt.Sprintf("%s/index/static?label:org.flatpak.ref:exists=1&architecture=%s&tag=%s",
		parsed.String(), arch, tag), nil
}
