package entities

import (
	"runtime"
	"slices"
)

// Platform tags used by manifests and .gitmodules "os" keys.
const (
	PlatformAll     = "all"
	PlatformWindows = "win"
	PlatformUnix    = "unix"
	PlatformLinux   = "linux"
	PlatformMac     = "mac"
)

// PlatformMatcher decides whether a dependency applies to the running host.
type PlatformMatcher struct {
	Host  string   // Host family: "win", "linux" or "mac"; anything else is treated as plain unix
	Extra []string // Platform tags always granted (mobile and cross-compiled targets)
}

// NewPlatformMatcher creates a matcher for the given host family. An empty host
// means the family of the running process.
func NewPlatformMatcher(host string, extra []string) PlatformMatcher {
	if host == "" {
		host = HostFamily(runtime.GOOS)
	}
	return PlatformMatcher{Host: host, Extra: slices.Clone(extra)}
}

// HostFamily maps a GOOS value onto the platform family used by manifests.
func HostFamily(goos string) string {
	switch goos {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformMac
	case "linux":
		return PlatformLinux
	default:
		return PlatformUnix
	}
}

// Matches reports whether a dependency with the given platform tags should be
// initialized on this host.
func (m PlatformMatcher) Matches(tags []string) bool {
	if len(tags) == 0 || slices.Contains(tags, PlatformAll) {
		return true
	}

	switch m.Host {
	case PlatformWindows:
		if slices.Contains(tags, PlatformWindows) {
			return true
		}
	case PlatformLinux:
		if slices.Contains(tags, PlatformUnix) || slices.Contains(tags, PlatformLinux) {
			return true
		}
	case PlatformMac:
		if slices.Contains(tags, PlatformUnix) || slices.Contains(tags, PlatformMac) {
			return true
		}
	default:
		if slices.Contains(tags, PlatformUnix) {
			return true
		}
	}

	for _, extra := range m.Extra {
		if slices.Contains(tags, extra) {
			return true
		}
	}
	return false
}
