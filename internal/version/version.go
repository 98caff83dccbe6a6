// Package version exposes build identity, injected at link time.
package version

import "fmt"

// Set via -ldflags "-X github.com/jasonkneen/claudelet/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = ""
)

// Get returns the version string, with the commit appended when known.
func Get() string {
	if Commit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
