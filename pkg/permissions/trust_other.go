//go:build !darwin

package permissions

func platformAccessibilityTrusted() (bool, bool) {
	return false, false
}
