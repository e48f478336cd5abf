package flatsource

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeRef(t *testing.T) {
	tests := []struct {
		name           string
		ref            string
		wantCollection string
		wantCanonical  string
		wantErr        bool
	}{
		{
			name:          "full ref unchanged",
			ref:           "app/org.example.Foo/x86_64/stable",
			wantCanonical: "app/org.example.Foo/x86_64/stable",
		},
		{
			name:          "missing arch filled",
			ref:           "app/org.example.Foo//stable",
			wantCanonical: "app/org.example.Foo/x86_64/stable",
		},
		{
			name:           "collection split off",
			ref:            "org.fedoraproject.Stable:app/org.example.Foo//stable",
			wantCollection: "org.fedoraproject.Stable",
			wantCanonical:  "app/org.example.Foo/x86_64/stable",
		},
		{
			name:          "runtime ref",
			ref:           "runtime/org.example.Platform/x86_64/1.0",
			wantCanonical: "runtime/org.example.Platform/x86_64/1.0",
		},
		{
			name:    "too few segments",
			ref:     "app/org.example.Foo/stable",
			wantErr: true,
		},
		{
			name:    "too many segments",
			ref:     "app/org.example.Foo/x86_64/stable/extra",
			wantErr: true,
		},
		{
			name:    "empty ref",
			ref:     "",
			wantErr: true,
		},
		{
			name:    "collection with bad path",
			ref:     "org.fedoraproject.Stable:org.example.Foo",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collection, canonical, err := canonicalizeRef(tt.ref, "x86_64")
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCollection, collection)
			assert.Equal(t, tt.wantCanonical, canonical)
		})
	}
}

func TestCanonicalizeRefIdempotent(t *testing.T) {
	refs := []string{
		"app/org.example.Foo//stable",
		"runtime/org.example.Platform//1.0",
		"c:app/org.example.Bar/aarch64/beta",
	}

	for _, ref := range refs {
		_, first, err := canonicalizeRef(ref, "x86_64")
		require.NoError(t, err)

		_, second, err := canonicalizeRef(first, "x86_64")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestCanonicalizeRefOnlyArchChanges(t *testing.T) {
	_, canonical, err := canonicalizeRef("app/org.example.Foo//stable", "aarch64")
	require.NoError(t, err)

	parts := strings.Split(canonical, "/")
	require.Len(t, parts, 4)
	assert.Equal(t, "app", parts[0])
	assert.Equal(t, "org.example.Foo", parts[1])
	assert.Equal(t, "aarch64", parts[2])
	assert.Equal(t, "stable", parts[3])
}

func TestCanonicalizeRefDefaultArch(t *testing.T) {
	_, canonical, err := CanonicalizeRef("app/org.example.Foo//stable")
	require.NoError(t, err)

	parts := strings.Split(canonical, "/")
	require.Len(t, parts, 4)
	assert.NotEmpty(t, parts[2])
}
