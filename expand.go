package flatsource

import (
	"slices"

	"gopkg.in/ini.v1"
)

// expandRefs canonicalizes refs and adds the runtime dependency of every
// included image, read from its embedded metadata keyfile.
//
// Expansion is deliberately single-level: runtime refs discovered here do
// not contribute their own runtime dependencies. Size accounting depends
// on exactly this set, so the behavior is pinned by tests.
func expandRefs(refs []string, images []SourceImage, arch string) ([]string, error) {
	result := make([]string, 0, len(refs))
	for _, ref := range refs {
		// The collection ID is not used for matching.
		_, canonical, err := canonicalizeRef(ref, arch)
		if err != nil {
			return nil, err
		}
		result = append(result, canonical)
	}

	// Only directly-requested images contribute a runtime dependency;
	// a runtime's own runtime declaration is never followed, regardless
	// of catalog order.
	requested := slices.Clone(result)
	for _, image := range images {
		if !slices.Contains(requested, image.Ref()) {
			continue
		}

		runtime := imageRuntime(image)
		if runtime == "" {
			continue
		}

		runtimeRef := "runtime/" + runtime
		if !slices.Contains(result, runtimeRef) {
			result = append(result, runtimeRef)
		}
	}

	return result, nil
}

// imageRuntime extracts the Runtime declaration from an image's embedded
// metadata. Absent, unparsable or incomplete metadata means no runtime
// dependency; it never fails the expansion.
func imageRuntime(image SourceImage) string {
	metadata, ok := image.Labels()[labelMetadata]
	if !ok {
		return ""
	}

	keyfile, err := ini.Load([]byte(metadata))
	if err != nil {
		return ""
	}

	section, err := keyfile.GetSection("Application")
	if err != nil {
		return ""
	}

	return section.Key("Runtime").String()
}
