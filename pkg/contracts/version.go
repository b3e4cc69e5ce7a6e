package contracts

import (
	"fmt"
	"runtime"
)

const (
	Version = "0.4.0"

	// DataFormatVersion names the artifact table layout. Bump it whenever an
	// artifact gains, loses or renames a column.
	DataFormatVersion = "v1"
)

// Set with -ldflags "-X lobstat/pkg/contracts.GitCommit=...".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version    string `json:"version"`
	BuildTime  string `json:"build_time"`
	GitCommit  string `json:"git_commit"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	DataFormat string `json:"data_format"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:    Version,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		DataFormat: DataFormatVersion,
	}
}

// String renders the info on one line for -version output.
func (v VersionInfo) String() string {
	return fmt.Sprintf("lobstat v%s (commit %s, built %s, %s %s, artifacts %s)",
		v.Version, v.GitCommit, v.BuildTime, v.GoVersion, v.Platform, v.DataFormat)
}

// GetVersionString returns the short "lobstat vX.Y.Z" form recorded in
// artifact metadata.
func GetVersionString() string {
	return "lobstat v" + Version
}

func GetFullVersionString() string {
	return GetVersionInfo().String()
}
