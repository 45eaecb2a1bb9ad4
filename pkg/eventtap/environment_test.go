package eventtap_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/offlinefirst/grabber/pkg/eventtap"
	"github.com/offlinefirst/grabber/pkg/permissions"
)

func lookupOf(values map[string]string) permissions.LookupEnvFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestDetectEnvironmentSetsFields(t *testing.T) {
	env := eventtap.DetectEnvironment(lookupOf(nil))
	assert.NotEmpty(t, env.Provider)
	assert.NotEmpty(t, env.Permission)
	assert.NotEmpty(t, env.Message)
}

func TestDetectEnvironmentHonoursDeniedAccessibility(t *testing.T) {
	env := eventtap.DetectEnvironment(lookupOf(map[string]string{permissions.AccessibilityEnv: "denied"}))
	assert.False(t, env.Available)
	if runtime.GOOS == "darwin" {
		assert.Equal(t, "quartz_event_tap", env.Provider)
		assert.Equal(t, "denied", env.Permission)
		assert.NotEmpty(t, env.Guidance)
	} else {
		assert.Equal(t, "unsupported", env.Provider)
		assert.Equal(t, "not_applicable", env.Permission)
	}
}
