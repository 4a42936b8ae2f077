package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seatrove/seadb/pkg/models"
	"github.com/seatrove/seadb/pkg/utils"
)

var (
	monitoringRetentionDays int32
	monitoringInterval      int32
	monitoringWorkspaceID   string
)

var monitoringCmd = &cobra.Command{
	Use:   "monitoring",
	Short: "Manage server monitoring",
}

var monitoringEnableCmd = &cobra.Command{
	Use:   "enable <server>",
	Short: "Enable metric collection for a server instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, group, err := clientAndGroup()
		if err != nil {
			return err
		}

		props := models.MonitoringSettingsProperties{
			RetentionDays:         monitoringRetentionDays,
			MetricsIntervalSecond: monitoringInterval,
			WorkspaceID:           monitoringWorkspaceID,
		}
		poller, err := c.Monitoring().BeginEnableMonitoring(cmd.Context(), group, args[0], props, nil)
		if err != nil {
			return err
		}
		if noWait {
			fmt.Printf("Monitoring enable accepted for %s (status: %s)\n", args[0], poller.Status())
			return nil
		}
		if _, err := waitWithSpinner(cmd.Context(), poller, "enabling monitoring for "+args[0]); err != nil {
			return err
		}
		fmt.Printf("Monitoring enabled for %s\n", args[0])
		return nil
	},
}

var monitoringShowCmd = &cobra.Command{
	Use:   "show <server>",
	Short: "Show monitoring settings of a server instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, group, err := clientAndGroup()
		if err != nil {
			return err
		}
		settings, err := c.Monitoring().GetSettings(cmd.Context(), group, args[0])
		if err != nil {
			return err
		}
		props := utils.SafeDeref(settings.Properties)
		fmt.Printf("enabled: %t\nretention days: %d\ninterval seconds: %d\nworkspace: %s\n",
			props.Enabled, props.RetentionDays, props.MetricsIntervalSecond, props.WorkspaceID)
		return nil
	},
}

func init() {
	monitoringEnableCmd.Flags().Int32Var(&monitoringRetentionDays, "retention-days", 7, "Metric retention in days")
	monitoringEnableCmd.Flags().Int32Var(&monitoringInterval, "interval-seconds", 60, "Metric collection interval")
	monitoringEnableCmd.Flags().StringVar(&monitoringWorkspaceID, "workspace-id", "", "Workspace to route metrics to")

	monitoringCmd.AddCommand(monitoringEnableCmd)
	monitoringCmd.AddCommand(monitoringShowCmd)
}
