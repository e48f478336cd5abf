package flatsource

import (
	"context"

	"github.com/osinstall/flatsource/internal/fetch"
)

// RepoConfig describes how to reach one repository.
// Re-exported from internal/fetch for convenience.
type RepoConfig = fetch.Config

// Source is a place Flatpak images can be sized and downloaded from.
type Source interface {
	// CalculateSize returns the total download and installed size, in
	// bytes, of the images matching refs and their dependencies. How the
	// two slots are accounted differs per source kind; see the concrete
	// types.
	CalculateSize(ctx context.Context, refs []string) (download, installed int64, err error)

	// Download materializes the images matching refs and their
	// dependencies into downloadDir. If they are already local, or can
	// be installed directly from the remote, nothing is copied.
	//
	// Whether or not anything was downloaded, the returned sideload
	// location (including the transport, e.g. "oci:<path>") tells an
	// installer where to read from; "" means none is needed.
	Download(ctx context.Context, refs []string, downloadDir string, progress ProgressReporter) (sideload string, err error)

	// Images returns the source's full catalog, filtered to the current
	// architecture. Loaded lazily on first use and memoized for the
	// lifetime of the source.
	Images(ctx context.Context) ([]SourceImage, error)
}

// ProgressReporter receives human-readable progress messages from
// long-running operations.
type ProgressReporter interface {
	ReportProgress(message string)
}
