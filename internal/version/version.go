// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build of the piimerge binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Set at build time via -ldflags; unset values are filled from the VCS
// stamp the Go toolchain embeds in the binary.
var (
	Version   = "0.0.0-development"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var resolveOnce sync.Once

func resolve() {
	resolveOnce.Do(func() {
		if info, ok := debug.ReadBuildInfo(); ok {
			applyBuildInfo(info)
		}
	})
}

// applyBuildInfo fills the fields -ldflags left at their defaults.
func applyBuildInfo(info *debug.BuildInfo) {
	if Version == "0.0.0-development" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if GitCommit == "unknown" {
				GitCommit = s.Value
				if len(GitCommit) > 12 {
					GitCommit = GitCommit[:12]
				}
			}
		case "vcs.time":
			if BuildDate == "unknown" {
				BuildDate = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && GitCommit != "unknown" {
		GitCommit += "-dirty"
	}
}

func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Info returns the one-line version banner
func Info() string {
	resolve()
	return fmt.Sprintf("piimerge %s (commit: %s, built: %s, go: %s, platform: %s)",
		Version, GitCommit, BuildDate, runtime.Version(), platform())
}

// Short returns just the version number
func Short() string {
	resolve()
	return Version
}

// Full returns the build details served by the health endpoint
func Full() map[string]string {
	resolve()
	return map[string]string{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
		"goVersion": runtime.Version(),
		"platform":  platform(),
	}
}
