// Package flatsource resolves symbolic Flatpak references into concrete
// container-image artifacts and computes the storage footprint they will
// need, before anything is installed.
//
// A Source is bound to one origin: either a static OCI image layout
// (local directory or remote HTTP tree) or a registry queried through its
// index endpoint. A caller first asks for a size estimate, then asks for
// a download into a staging location; registry sources defer retrieval to
// the install step and return no sideload location.
//
//	src := flatsource.NewStaticSource(flatsource.RepoConfig{BaseURL: "https://example.com/repo"})
//
//	download, installed, _ := src.CalculateSize(ctx, []string{"app/org.example.Foo//stable"})
//
//	sideload, _ := src.Download(ctx, refs, "/var/tmp/flatpaks", progress)
//	// sideload is "oci:<path>", or "" if nothing needs staging
//
// A Manager sequences the two steps for an installer, caching sizes and
// tolerating a missing source:
//
//	m := flatsource.NewManager()
//	m.SetSource(src)
//	m.SetRefs(refs)
//	m.SetDownloadLocation("/var/tmp/flatpaks")
//	m.CalculateSize(ctx)
//	m.Download(ctx, progress)
package flatsource
