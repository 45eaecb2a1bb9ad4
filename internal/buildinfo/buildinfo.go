package buildinfo

import "runtime/debug"

// version and commit are set with -ldflags "-X".
var (
	version = "dev"
	commit  = ""
)

var readBuildInfo = debug.ReadBuildInfo

// SetVersion overrides the reported grabber version. Empty values are ignored.
func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// Version returns the release version, falling back to the module version.
func Version() string {
	if version != "dev" {
		return version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// Commit returns the short VCS revision the binary was built from, if known.
func Commit() string {
	rev := commit
	if rev == "" {
		if info, ok := readBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					rev = setting.Value
					break
				}
			}
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return rev
}
