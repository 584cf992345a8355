package version

// Version info injected via ldflags at build time
var (
	// Version is set via -ldflags "-X datatrans/version.Version=x.x.x"
	Version = "0.1.0-dev"

	// CommitHash is set via -ldflags "-X datatrans/version.CommitHash=xxx"
	CommitHash = "unknown"

	// BuildTime is set via -ldflags "-X datatrans/version.BuildTime=xxx"
	BuildTime = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with the short commit hash when known.
func GetFullVersion() string {
	if CommitHash == "unknown" || CommitHash == "" {
		return Version
	}
	short := CommitHash
	if len(short) > 7 {
		short = short[:7]
	}
	return Version + " (" + short + ")"
}

// GetBuildInfo returns build metadata
func GetBuildInfo() string {
	return "datatrans " + Version + "\nCommit: " + CommitHash + "\nBuild Time: " + BuildTime
}
