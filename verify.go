package flatsource

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-containerregistry/pkg/v1/layout"
	"github.com/google/go-containerregistry/pkg/v1/validate"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// VerifyLayout checks a self-contained local OCI layout: every manifest
// listed in its index must resolve, and every blob must match its digest.
// Useful before trusting a directory as a local static source.
func VerifyLayout(path string) error {
	if _, err := os.Stat(filepath.Join(path, ocispec.ImageIndexFile)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w at %s", ErrNoSource, path)
		}
		return err
	}

	index, err := layout.ImageIndexFromPath(path)
	if err != nil {
		return fmt.Errorf("open layout %s: %w", path, err)
	}

	if err := validate.Index(index); err != nil {
		return fmt.Errorf("validate layout %s: %w", path, err)
	}
	return nil
}
