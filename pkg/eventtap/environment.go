package eventtap

import (
	"runtime"

	"github.com/offlinefirst/grabber/pkg/permissions"
)

// Environment summarises event tap backend support.
type Environment struct {
	Provider   string
	Available  bool
	Permission string
	Message    string
	Guidance   string
}

const (
	providerQuartz      = "quartz_event_tap"
	providerUnsupported = "unsupported"
)

// DetectEnvironment reports whether a Quartz event tap can be installed.
func DetectEnvironment(lookup permissions.LookupEnvFunc) Environment {
	accessibility := permissions.ProbeAccessibility(lookup)
	env := Environment{
		Provider:   providerUnsupported,
		Permission: accessibility.StatusString(),
		Message:    accessibility.Message,
		Guidance:   accessibility.Guidance,
	}

	if runtime.GOOS != "darwin" {
		env.Permission = "not_applicable"
		env.Message = "event taps require macOS; pointer events will not be grabbed"
		return env
	}

	env.Provider = providerQuartz
	env.Available = accessibility.Status != permissions.StatusDenied
	if !env.Available {
		if env.Message == "" {
			env.Message = "accessibility permission missing"
		}
		if env.Guidance == "" {
			env.Guidance = "grant Accessibility access in System Settings > Privacy & Security"
		}
	}
	return env
}
