package version

// Version is the triplog release.
const Version = "0.4.0"

// BuildVersion returns the version string for display
func BuildVersion() string {
	return "triplog version " + Version
}

// APIVersion returns just the version number for API responses
func APIVersion() string {
	return Version
}
