package flatsource

import "runtime"

// containerArchMap translates Flatpak build architecture names to the
// naming convention used by container registries.
var containerArchMap = map[string]string{
	"x86_64":  "amd64",
	"aarch64": "arm64",
}

// buildArch returns the current Flatpak build architecture name.
func buildArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i386"
	default:
		return runtime.GOARCH
	}
}

// containerArch translates a build architecture to the name used by
// docker/podman registries, passing unknown names through unchanged.
func containerArch(arch string) string {
	if mapped, ok := containerArchMap[arch]; ok {
		return mapped
	}
	return arch
}
