package params

import (
	"fmt"
	"runtime"
	"sync"
)

// release version of the counter server and tool
const (
	VersionMajor = 0
	VersionMinor = 1
	VersionPatch = 0
	VersionMeta  = "unstable"
)

var (
	buildLock sync.RWMutex
	gitCommit string
	gitDate   string
)

// VersionInfo version details reported by the commands and the api
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit,omitempty"`
	GitDate   string `json:"gitDate,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// SetBuildInfo record git commit and date stamped in by the linker
func SetBuildInfo(commit, date string) {
	buildLock.Lock()
	defer buildLock.Unlock()
	gitCommit, gitDate = commit, date
}

// Version semantic version with metadata, eg. 0.1.0-unstable
func Version() string {
	v := fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	if VersionMeta != "" {
		v += "-" + VersionMeta
	}
	return v
}

// BuildVersion version with short commit, unstable builds also carry the commit date
func BuildVersion() string {
	buildLock.RLock()
	defer buildLock.RUnlock()
	return buildVersion(gitCommit, gitDate)
}

func buildVersion(commit, date string) string {
	vsn := Version()
	if len(commit) >= 8 {
		vsn += "-" + commit[:8]
	}
	if VersionMeta != "stable" && date != "" {
		vsn += "-" + date
	}
	return vsn
}

// GetVersionInfo get version info
func GetVersionInfo() *VersionInfo {
	buildLock.RLock()
	defer buildLock.RUnlock()
	return &VersionInfo{
		Version:   buildVersion(gitCommit, gitDate),
		GitCommit: gitCommit,
		GitDate:   gitDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
