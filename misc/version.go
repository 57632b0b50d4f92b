// Package misc keeps program identity helpers used by logging, reporting
// and the command line surface.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "wbc"

// set by the linker for release builds, otherwise derived from build info
var (
	version = ""
	gitHash = ""
)

var readBuildInfo = sync.OnceFunc(func() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if version == "" && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && gitHash == "" {
			gitHash = s.Value
		}
	}
})

// GetAppName returns the short program name used for logger naming and
// temporary file prefixes.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	readBuildInfo()
	if version == "" {
		return "devel"
	}
	return version
}

// GetGitHash returns VCS revision the program was built from.
func GetGitHash() string {
	readBuildInfo()
	if gitHash == "" {
		return "unknown"
	}
	return gitHash
}
