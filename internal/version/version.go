// Package version carries build metadata stamped in with -ldflags "-X".
package version

// Overwritten at link time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the metadata for --version output and startup logs.
func String() string {
	return Version + " (" + Commit + ", built " + Date + ")"
}
