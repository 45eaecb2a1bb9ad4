// Package permissions reports the macOS privacy grants the grabber depends on.
package permissions

import (
	"os"
	"strings"
)

// Status enumerates coarse permission results for macOS privacy prompts.
type Status string

const (
	// StatusUnknown indicates no explicit signal about permission state.
	StatusUnknown Status = "unknown"
	// StatusGranted signals that permission was previously granted.
	StatusGranted Status = "granted"
	// StatusDenied indicates the user has explicitly denied access.
	StatusDenied Status = "denied"
	// StatusPromptRequired means the platform will prompt at runtime.
	StatusPromptRequired Status = "prompt"
	// StatusUnavailable reports that the capability is not supported.
	StatusUnavailable Status = "unavailable"
)

// AccessibilityEnv overrides the Accessibility probe, mainly for tests and CI.
const AccessibilityEnv = "GRABBER_ACCESSIBILITY"

// ProbeResult represents the coarse state for a permission surface.
type ProbeResult struct {
	Status   Status
	Message  string
	Guidance string
}

// LookupEnvFunc exposes environment probing for testability.
type LookupEnvFunc func(string) (string, bool)

// lookupEnv is declared for swapping in tests.
var lookupEnv = os.LookupEnv

// accessibilityTrusted asks the platform whether the process is trusted.
// ok is false where the question has no meaning.
var accessibilityTrusted = platformAccessibilityTrusted

// AccessibilityTrusted asks the platform, without prompting, whether the
// process is trusted for accessibility. known is false off macOS.
func AccessibilityTrusted() (trusted, known bool) {
	return accessibilityTrusted()
}

// ProbeAccessibility reports Accessibility trust, which macOS requires before
// a process may install an event tap at the HID level.
func ProbeAccessibility(lookup LookupEnvFunc) ProbeResult {
	if lookup == nil {
		lookup = lookupEnv
	}
	if value, ok := lookup(AccessibilityEnv); ok {
		return interpretPermissionFlag("accessibility", value)
	}

	trusted, ok := accessibilityTrusted()
	switch {
	case !ok:
		return ProbeResult{Status: StatusUnavailable, Message: "accessibility trust does not apply on this platform"}
	case trusted:
		return ProbeResult{Status: StatusGranted, Message: "process is trusted for accessibility"}
	default:
		return ProbeResult{
			Status:   StatusPromptRequired,
			Message:  "accessibility trust required for the HID event tap",
			Guidance: "enable the grabber under System Settings > Privacy & Security > Accessibility",
		}
	}
}

func interpretPermissionFlag(name, value string) ProbeResult {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "granted", "allow", "allowed", "yes", "true":
		return ProbeResult{Status: StatusGranted, Message: name + " permission pre-authorised via env override"}
	case "denied", "no", "false", "blocked":
		return ProbeResult{Status: StatusDenied, Message: name + " permission denied via env override", Guidance: "use 'tccutil reset Accessibility' or unset " + AccessibilityEnv + " to re-test"}
	case "prompt", "ask":
		return ProbeResult{Status: StatusPromptRequired, Message: name + " permission will prompt at runtime"}
	case "unavailable", "unsupported":
		return ProbeResult{Status: StatusUnavailable, Message: name + " permission unavailable on this platform"}
	default:
		return ProbeResult{Status: StatusUnknown, Message: name + " permission state unknown"}
	}
}

// StatusString returns the status for reports.
func (p ProbeResult) StatusString() string {
	if p.Status == "" {
		return string(StatusUnknown)
	}
	return string(p.Status)
}
