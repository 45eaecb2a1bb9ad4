package eventtap

var RefusedTapError = refusedTapError

// SetAccessibilityTrusted replaces the trust check and returns a restore func.
func SetAccessibilityTrusted(fn func() (bool, bool)) func() {
	orig := accessibilityTrusted
	accessibilityTrusted = fn
	return func() { accessibilityTrusted = orig }
}
