package flatsource

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
)

// Manager holds the state of a Flatpak preinstallation: the configured
// source, the requested refs and the download location, plus the results
// of the calculate and download steps.
//
// A source that turns out not to exist (ErrNoSource) marks the manager
// skipped instead of failing; later steps become no-ops. Any other error
// is surfaced to the caller unmodified.
type Manager struct {
	source           Source
	refs             []string
	downloadLocation string

	skipInstallation bool
	downloadSize     int64
	installSize      int64
	sideloadLocation string
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// SetSource sets the source Flatpak content is sized and downloaded from.
func (m *Manager) SetSource(source Source) {
	m.source = source
}

// SetRefs sets the Flatpak refs to be installed. Each ref should be in
// the form [<collection>:](app|runtime)/<id>/[<arch>]/<branch>. Setting
// refs clears a previous skip decision.
func (m *Manager) SetRefs(refs []string) {
	m.skipInstallation = false
	m.refs = refs
}

// SetDownloadLocation sets the directory used for temporary downloads.
func (m *Manager) SetDownloadLocation(path string) {
	m.downloadLocation = path
}

// DownloadLocation returns the temporary download directory.
func (m *Manager) DownloadLocation() string {
	return m.downloadLocation
}

// CalculateSize computes and records the space the requested refs need.
// The result is available from DownloadSize and InstallSize.
func (m *Manager) CalculateSize(ctx context.Context) error {
	if m.skipInstallation || len(m.refs) == 0 || m.source == nil {
		return nil
	}

	downloadSize, installSize, err := m.source.CalculateSize(ctx, m.refs)
	if err != nil {
		if errors.Is(err, ErrNoSource) {
			m.skip(err)
			return nil
		}
		return err
	}

	m.downloadSize = downloadSize
	m.installSize = installSize
	return nil
}

// DownloadSize returns the space needed to temporarily download the
// content before installation.
func (m *Manager) DownloadSize() int64 { return m.downloadSize }

// InstallSize returns the space used on the target system after
// installation.
func (m *Manager) InstallSize() int64 { return m.installSize }

// Download stages the requested refs into the download location and
// records the resulting sideload location, if any.
func (m *Manager) Download(ctx context.Context, progress ProgressReporter) error {
	if m.skipInstallation || len(m.refs) == 0 || m.source == nil {
		return nil
	}

	sideload, err := m.source.Download(ctx, m.refs, m.downloadLocation, progress)
	if err != nil {
		if errors.Is(err, ErrNoSource) {
			m.skip(err)
			return nil
		}
		return err
	}

	m.sideloadLocation = sideload
	return nil
}

// SideloadLocation returns the location recorded by Download, or "" when
// the install step should fetch directly from the source's remote.
func (m *Manager) SideloadLocation() string { return m.sideloadLocation }

// Skipped reports whether installation was skipped because the source
// does not exist.
func (m *Manager) Skipped() bool { return m.skipInstallation }

func (m *Manager) skip(err error) {
	log.Error("source not available, skipping installation",
		"refs", strings.Join(m.refs, ", "), "err", err)
	m.skipInstallation = true
}
