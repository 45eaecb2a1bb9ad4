package eventtap

import (
	"errors"
	"fmt"

	"github.com/offlinefirst/grabber/pkg/permissions"
)

var (
	// ErrRegistration reports that the platform refused the tap, usually
	// because the process lacks Accessibility trust or another client holds
	// an exclusive grab.
	ErrRegistration = errors.New("event tap registration failed")

	// ErrAttachment reports that a tap was created but could not be attached
	// to the dispatch loop.
	ErrAttachment = errors.New("event tap attachment failed")

	// ErrUnsupported is returned by platforms without an event tap facility.
	ErrUnsupported = errors.New("event taps are not supported on this platform")

	// ErrAccessibilityPermission indicates the host must grant Accessibility trust.
	ErrAccessibilityPermission = errors.New("macOS accessibility permission required for event taps")
)

// accessibilityTrusted is swapped in tests.
var accessibilityTrusted = permissions.AccessibilityTrusted

// refusedTapError describes a tap the platform declined to create. Trust is
// only consulted after the refusal: root processes may tap without it.
func refusedTapError(cause string) error {
	if trusted, known := accessibilityTrusted(); known && !trusted {
		return fmt.Errorf("%w: %s", ErrAccessibilityPermission, cause)
	}
	return errors.New(cause)
}
