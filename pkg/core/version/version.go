// ============================================================================
// formplan - Declarative form validation
// ============================================================================
//
// Package:     version
// Description: Central version information for the binary and the service
// Author:      msto63
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Build information, overridable with -ldflags "-X ..."
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// API is the version of the formplan.v1 gRPC surface
const API = "v1"

// Info describes the running build
type Info struct {
	Version   string `json:"version"`
	API       string `json:"api"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information
func Get() Info {
	return Info{
		Version:   Version,
		API:       API,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders a one-line summary
func (i Info) String() string {
	return fmt.Sprintf("formplan %s (api %s, commit %s, built %s, %s %s)",
		i.Version, i.API, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}
