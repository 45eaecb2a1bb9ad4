package cmd

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/offlinefirst/grabber/pkg/eventtap"
	"github.com/offlinefirst/grabber/pkg/permissions"
)

// hostInfo is swapped in tests.
var hostInfo = host.Info

// detectTapEnvironment is swapped in tests.
var detectTapEnvironment = func() eventtap.Environment {
	return eventtap.DetectEnvironment(nil)
}

func (rc *RootCommand) newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report event tap support, permissions and host details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rc.ensureAppContext()
			if err != nil {
				return err
			}

			env := detectTapEnvironment()
			out := rc.stdout
			fmt.Fprintln(out, "Event tap")
			fmt.Fprintf(out, "  provider:   %s\n", env.Provider)
			fmt.Fprintf(out, "  available:  %t\n", env.Available)
			fmt.Fprintf(out, "  permission: %s\n", env.Permission)
			if env.Message != "" {
				fmt.Fprintf(out, "  message:    %s\n", env.Message)
			}
			if env.Guidance != "" {
				fmt.Fprintf(out, "  guidance:   %s\n", env.Guidance)
			}
			fmt.Fprintf(out, "  override:   set %s=granted|denied to skip the probe\n", permissions.AccessibilityEnv)

			fmt.Fprintln(out, "Host")
			info, err := hostInfo()
			if err != nil {
				app.Logger.Warn("host info unavailable", zap.Error(err))
				fmt.Fprintf(out, "  unavailable: %v\n", err)
			} else {
				fmt.Fprintf(out, "  os:         %s\n", info.OS)
				fmt.Fprintf(out, "  platform:   %s %s\n", info.Platform, info.PlatformVersion)
				fmt.Fprintf(out, "  kernel:     %s %s\n", info.KernelVersion, info.KernelArch)
			}

			fmt.Fprintln(out, "Config")
			fmt.Fprintf(out, "  source:     %s\n", app.Config.Source)
			fmt.Fprintf(out, "  tap:        %t\n", app.Config.Tap.Enabled)
			fmt.Fprintf(out, "  locked:     %v\n", app.Config.Modifiers.Locked)

			app.Logger.Info("doctor report",
				zap.String("provider", env.Provider),
				zap.Bool("available", env.Available),
				zap.String("permission", env.Permission),
			)
			return nil
		},
	}
}
