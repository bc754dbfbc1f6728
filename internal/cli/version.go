package cli

import (
	"runtime/debug"
	"strings"
)

const devVersion = "dev"

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// resolvedVersion picks the version reported by --version: an injected
// release version wins, then the module version stamped by the Go
// toolchain, then the VCS revision, then plain "dev".
func resolvedVersion(injected string) string {
	if v := strings.TrimSpace(injected); v != "" && v != devVersion {
		return v
	}

	if info, ok := readBuildInfo(); ok && info != nil {
		if v := moduleVersion(info); v != "" {
			return v
		}
		if rev := vcsVersion(info.Settings); rev != "" {
			return rev
		}
	}

	if v := strings.TrimSpace(injected); v != "" {
		return v
	}
	return devVersion
}

func moduleVersion(info *debug.BuildInfo) string {
	v := strings.TrimSpace(info.Main.Version)
	if v == "" || v == "(devel)" {
		return ""
	}
	return v
}

// vcsVersion derives a short revision tag, marking locally modified
// builds.
func vcsVersion(settings []debug.BuildSetting) string {
	revision := ""
	dirty := false
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			revision = strings.TrimSpace(setting.Value)
		case "vcs.modified":
			dirty = strings.EqualFold(strings.TrimSpace(setting.Value), "true")
		}
	}
	if revision == "" {
		return ""
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}
