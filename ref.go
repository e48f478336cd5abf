package flatsource

import (
	"fmt"
	"strings"
)

// CanonicalizeRef splits off an optional collection ID and fills in the
// current architecture if unspecified.
//
// Turns "org.fedoraproject.Stable:app/org.example.Foo//stable" into
// ("org.fedoraproject.Stable", "app/org.example.Foo/x86_64/stable").
// The collection is "" when the reference carries none.
func CanonicalizeRef(ref string) (collection, canonical string, err error) {
	return canonicalizeRef(ref, buildArch())
}

func canonicalizeRef(ref, arch string) (string, string, error) {
	var collection string
	if before, after, found := strings.Cut(ref, ":"); found {
		collection = before
		ref = after
	}

	parts := strings.Split(ref, "/")
	if len(parts) != 4 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	if parts[2] == "" {
		parts[2] = arch
	}

	return collection, strings.Join(parts, "/"), nil
}
