// Package gridplan provides the version information for gridplan.
package gridplan

// Version is the current version of gridplan.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
