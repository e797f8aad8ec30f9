// Package version exposes build information injected at link time.
package version

// Set via -ldflags "-X github.com/rshade/co2focus/pkg/version.version=...".
//
//nolint:gochecknoglobals // Populated by the linker.
var (
	version = "dev"
	commit  = "none"
)

// GetVersion returns the semantic version of the binary.
func GetVersion() string {
	return version
}

// GetCommit returns the VCS revision the binary was built from.
func GetCommit() string {
	return commit
}
