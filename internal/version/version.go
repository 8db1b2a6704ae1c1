// Package version holds the build version of atlas-analytics. Release
// builds set it with:
//
//	go build -ldflags "-X github.com/RossFW/atlas-conquest/internal/version.Version=v1.2.3" ./cmd/atlas-analytics
package version

// Version defaults to "dev" for local builds.
var Version = "dev"

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}
