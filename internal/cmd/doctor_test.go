package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinefirst/grabber/pkg/config"
	"github.com/offlinefirst/grabber/pkg/eventtap"
)

func stubDoctor(t *testing.T, env eventtap.Environment, info *host.InfoStat, infoErr error) {
	t.Helper()
	origEnv, origHost := detectTapEnvironment, hostInfo
	detectTapEnvironment = func() eventtap.Environment { return env }
	hostInfo = func() (*host.InfoStat, error) { return info, infoErr }
	t.Cleanup(func() {
		detectTapEnvironment = origEnv
		hostInfo = origHost
	})
}

func TestDoctorReportsEnvironmentAndHost(t *testing.T) {
	stubDoctor(t, eventtap.Environment{
		Provider:   "quartz_event_tap",
		Permission: "denied",
		Message:    "accessibility permission missing",
		Guidance:   "grant Accessibility access",
	}, &host.InfoStat{
		OS:              "darwin",
		Platform:        "darwin",
		PlatformVersion: "14.5",
		KernelVersion:   "23.5.0",
		KernelArch:      "arm64",
	}, nil)

	rc := NewRootCommand()
	rc.appCtx = newTestApp(config.Default())
	var stdout bytes.Buffer
	rc.SetOutput(&stdout, &bytes.Buffer{})

	require.NoError(t, rc.Execute([]string{"doctor"}))
	out := stdout.String()
	assert.Contains(t, out, "provider:   quartz_event_tap")
	assert.Contains(t, out, "permission: denied")
	assert.Contains(t, out, "guidance:   grant Accessibility access")
	assert.Contains(t, out, "platform:   darwin 14.5")
	assert.Contains(t, out, "kernel:     23.5.0 arm64")
	assert.Contains(t, out, "source:     <defaults>")
}

func TestDoctorToleratesHostInfoFailure(t *testing.T) {
	stubDoctor(t, eventtap.Environment{Provider: "unsupported", Permission: "not_applicable"}, nil, errors.New("no sysctl"))

	rc := NewRootCommand()
	rc.appCtx = newTestApp(config.Default())
	var stdout bytes.Buffer
	rc.SetOutput(&stdout, &bytes.Buffer{})

	require.NoError(t, rc.Execute([]string{"doctor"}))
	assert.Contains(t, stdout.String(), "unavailable: no sysctl")
	assert.Contains(t, stdout.String(), "provider:   unsupported")
}
