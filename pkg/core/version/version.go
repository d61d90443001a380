// ============================================================================
// idoutils - IDO data-out utilities
// ============================================================================
//
// Package:     version
// Description: Build and component version information
// Author:      msto63
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Set at build time via -ldflags "-X github.com/msto63/idoutils/pkg/core/version.GitCommit=..."
var (
	Version   = "0.1.0"
	GitCommit = "development"
	BuildDate = "unknown"
)

// Component versions
const (
	Dbuf    = "1.0.0"
	Filex   = "1.0.0"
	Stringx = "1.0.0"
	Record  = "1.0.0"
	Spool   = "1.0.0"
	Archive = "1.0.0"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "dbuf":
		return Dbuf
	case "filex":
		return Filex
	case "stringx":
		return Stringx
	case "record":
		return Record
	case "spool":
		return Spool
	case "archive":
		return Archive
	default:
		return Version
	}
}

// Info describes the running binary
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
	Platform  string
}

// Get returns the build information of the running binary
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a one-line summary
func (i Info) String() string {
	return fmt.Sprintf("idoutils v%s (%s, built %s, %s %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}
