package flatsource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource scripts the behavior of a Source for manager tests.
type fakeSource struct {
	downloadSize  int64
	installedSize int64
	sideload      string
	err           error

	sizeCalls     int
	downloadCalls int
	lastDir       string
}

func (f *fakeSource) CalculateSize(ctx context.Context, refs []string) (int64, int64, error) {
	f.sizeCalls++
	return f.downloadSize, f.installedSize, f.err
}

func (f *fakeSource) Download(ctx context.Context, refs []string, downloadDir string, progress ProgressReporter) (string, error) {
	f.downloadCalls++
	f.lastDir = downloadDir
	return f.sideload, f.err
}

func (f *fakeSource) Images(ctx context.Context) ([]SourceImage, error) {
	return nil, f.err
}

func TestManagerCalculateAndDownload(t *testing.T) {
	src := &fakeSource{downloadSize: 900, installedSize: 7000, sideload: "oci:/tmp/dl/Flatpaks"}

	m := NewManager()
	m.SetSource(src)
	m.SetRefs([]string{"app/org.example.Foo//stable"})
	m.SetDownloadLocation("/tmp/dl")

	require.NoError(t, m.CalculateSize(context.Background()))
	assert.Equal(t, int64(900), m.DownloadSize())
	assert.Equal(t, int64(7000), m.InstallSize())

	require.NoError(t, m.Download(context.Background(), nil))
	assert.Equal(t, "oci:/tmp/dl/Flatpaks", m.SideloadLocation())
	assert.Equal(t, "/tmp/dl", src.lastDir)
	assert.False(t, m.Skipped())
}

func TestManagerSkipsMissingSource(t *testing.T) {
	src := &fakeSource{err: ErrNoSource}

	m := NewManager()
	m.SetSource(src)
	m.SetRefs([]string{"app/org.example.Foo//stable"})

	require.NoError(t, m.CalculateSize(context.Background()))
	assert.True(t, m.Skipped())
	assert.Zero(t, m.DownloadSize())

	// Later steps are no-ops once skipped.
	require.NoError(t, m.Download(context.Background(), nil))
	assert.Zero(t, src.downloadCalls)
}

func TestManagerSetRefsClearsSkip(t *testing.T) {
	src := &fakeSource{err: ErrNoSource}

	m := NewManager()
	m.SetSource(src)
	m.SetRefs([]string{"app/org.example.Foo//stable"})
	require.NoError(t, m.CalculateSize(context.Background()))
	require.True(t, m.Skipped())

	m.SetRefs([]string{"app/org.example.Bar//stable"})
	assert.False(t, m.Skipped())
}

func TestManagerPropagatesOtherErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("connection reset")}

	m := NewManager()
	m.SetSource(src)
	m.SetRefs([]string{"app/org.example.Foo//stable"})

	err := m.CalculateSize(context.Background())
	require.Error(t, err)
	assert.False(t, m.Skipped())
}

func TestManagerNoRefsNoCalls(t *testing.T) {
	src := &fakeSource{}

	m := NewManager()
	m.SetSource(src)

	require.NoError(t, m.CalculateSize(context.Background()))
	require.NoError(t, m.Download(context.Background(), nil))
	assert.Zero(t, src.sizeCalls)
	assert.Zero(t, src.downloadCalls)
}
