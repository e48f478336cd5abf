package flatsource

import (
	"strconv"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Labels carried by Flatpak container images.
const (
	labelRef           = "org.flatpak.ref"
	labelDownloadSize  = "org.flatpak.download-size"
	labelInstalledSize = "org.flatpak.installed-size"
	labelMetadata      = "org.flatpak.metadata"
)

// SourceImage is one image known to a Source. Constructed once when the
// source's catalog is loaded and never mutated.
type SourceImage interface {
	// Ref returns the Flatpak reference for the image, or "" if the
	// image is not a Flatpak.
	Ref() string

	// Labels returns the image's config labels.
	Labels() map[string]string

	// DownloadSize returns the download size in bytes.
	DownloadSize() int64

	// InstalledSize returns the installed size in bytes.
	InstalledSize() int64
}

// labelImage derives everything from the label mapping.
type labelImage struct {
	labels map[string]string
}

func (i labelImage) Labels() map[string]string { return i.labels }

func (i labelImage) Ref() string { return i.labels[labelRef] }

func (i labelImage) DownloadSize() int64 { return labelSize(i.labels, labelDownloadSize) }

func (i labelImage) InstalledSize() int64 { return labelSize(i.labels, labelInstalledSize) }

// labelSize parses a size label, treating missing or malformed values as
// zero so one bad image cannot fail a whole size calculation.
func labelSize(labels map[string]string, key string) int64 {
	n, err := strconv.ParseInt(labels[key], 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// staticImage is an image of a StaticSource: label-derived metadata plus
// the parsed manifest and config documents.
type staticImage struct {
	labelImage
	digest   digest.Digest
	manifest ocispec.Manifest
}

func newStaticImage(dgst digest.Digest, manifest ocispec.Manifest, config ocispec.Image) *staticImage {
	return &staticImage{
		labelImage: labelImage{labels: config.Config.Labels},
		digest:     dgst,
		manifest:   manifest,
	}
}

// DownloadSize sums the manifest layer sizes. This is more accurate than
// the org.flatpak.download-size label, because further processing of the
// image might have recompressed the layers with different settings.
func (i *staticImage) DownloadSize() int64 {
	var total int64
	for _, layer := range i.manifest.Layers {
		total += layer.Size
	}
	return total
}

// registryImage is an image of a RegistrySource. Registry images are not
// inspected locally, so only the label mapping is available.
type registryImage struct {
	labelImage
}

func newRegistryImage(labels map[string]string) *registryImage {
	return &registryImage{labelImage{labels: labels}}
}
