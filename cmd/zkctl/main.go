// Command zkctl is a thin CLI wrapper around the zkteco package's
// command surface: one subcommand per read operation, JSON on stdout.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/attendcore/zkteco"
)

var cfg zkteco.DeviceConfig

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "zkctl",
		Short: "Read data from a ZKTeco time-and-attendance device",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bindConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("ip", "", "device IP address (required)")
	flags.Int("port", 4370, "device port")
	flags.String("comm-key", "", "communication key, if the device requires one")
	flags.Int("timeout", 10000, "command timeout in milliseconds")

	root.AddCommand(newTestCmd(), newInfoCmd(), newUsersCmd(), newLogsCmd(), newSyncCmd())
	return root
}

// bindConfig binds the persistent flags through viper (so ZKCTL_*
// environment variables also work) and populates the package-level cfg.
func bindConfig(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix("zkctl")
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}

	cfg = zkteco.DeviceConfig{
		IP:      v.GetString("ip"),
		Port:    v.GetInt("port"),
		CommKey: v.GetString("comm-key"),
		Timeout: v.GetInt("timeout"),
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test connectivity to the device",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := zkteco.TestDeviceConnection(cfg)
			if err != nil {
				logrus.WithError(err).Warn("connection test failed")
			}
			return printJSON(result)
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Fetch device identity and record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := zkteco.GetDeviceInfo(cfg)
			if err != nil {
				return err
			}
			return printJSON(info)
		},
	}
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List enrolled users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := zkteco.GetDeviceUsers(cfg)
			if err != nil {
				return err
			}
			return printJSON(users)
		},
	}
}

func newLogsCmd() *cobra.Command {
	var mode, start, end string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Fetch attendance logs, optionally bounded by date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := zkteco.GetAttendanceLogs(cfg, mode, start, end)
			if err != nil {
				return err
			}
			return printJSON(logs)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "range", `"range" to apply start/end, "all" to ignore them`)
	cmd.Flags().StringVar(&start, "start", "", "start date, YYYY-MM-DD or full ISO-8601")
	cmd.Flags().StringVar(&end, "end", "", "end date, YYYY-MM-DD or full ISO-8601")
	return cmd
}

func newSyncCmd() *cobra.Command {
	var mode, start, end string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch users and attendance logs together",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := zkteco.SyncDeviceAll(cfg, zkteco.SyncOptions{Mode: mode, StartDate: start, EndDate: end})
			if err != nil && result.Users == nil {
				return err
			}
			if err != nil {
				logrus.WithError(err).Warn("partial sync")
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "all", `"all" to fetch every log, "range" to apply start/end`)
	cmd.Flags().StringVar(&start, "start", "", "attendance log start date")
	cmd.Flags().StringVar(&end, "end", "", "attendance log end date")
	return cmd
}
