package flatsource

// Options configures a source.
type Options struct {
	Arch         string
	RelativePath string
}

// Option is a functional option for configuring a source.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Arch:         buildArch(),
		RelativePath: "Flatpaks",
	}
}

// WithArch overrides the Flatpak build architecture used for reference
// canonicalization and catalog filtering.
func WithArch(arch string) Option {
	return func(o *Options) {
		if arch != "" {
			o.Arch = arch
		}
	}
}

// WithRelativePath sets the path of the OCI layout relative to the
// repository root (default "Flatpaks").
func WithRelativePath(path string) Option {
	return func(o *Options) {
		if path != "" {
			o.RelativePath = path
		}
	}
}
