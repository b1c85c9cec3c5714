// Package version reports build metadata stamped in with -ldflags
package version

// BuildInfo is the build metadata of the running binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// set with -ldflags "-X grantwise/internal/core/version.version=v1.2.0 ..."
var (
	service = "grantwise-api"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the stamped build metadata
func Info() BuildInfo {
	return BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
}

// UserAgent is sent on outbound catalog and oracle calls
func UserAgent() string { return service + "/" + version }
