// Package contracts holds the wire types confgate shares with its clients.
package contracts

import (
	"runtime"
	"time"
)

// APIVersion is the version of the HTTP API
const APIVersion = "v1"

var (
	// BuildTime is set during build using ldflags
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)

// VersionInfo is the body of GET /api/version
type VersionInfo struct {
	Name         string  `json:"name"`
	Version      string  `json:"version"`
	APIVersion   string  `json:"api_version"`
	BuildTime    string  `json:"build_time"`
	GitCommit    string  `json:"git_commit"`
	GoVersion    string  `json:"go_version"`
	OS           string  `json:"os"`
	Architecture string  `json:"architecture"`
	StartTime    string  `json:"start_time"`
	Uptime       float64 `json:"uptime"`
}

// GetVersionInfo describes the running binary. Uptime is measured from
// startTime.
func GetVersionInfo(name, version string, startTime time.Time) VersionInfo {
	return VersionInfo{
		Name:         name,
		Version:      version,
		APIVersion:   APIVersion,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		StartTime:    startTime.Format(time.RFC3339),
		Uptime:       time.Since(startTime).Seconds(),
	}
}
