package command

import (
	"fmt"
	"io"
	"strings"
	"time"
	"webremote/cmd/relay-cli/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// healthCmd groups the vehicle health commands
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Read or update the vehicle health status",
}

var healthGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current health status",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := httpClient().GetHealth()
		if err != nil {
			return err
		}
		printHealth(cmd.OutOrStdout(), status)
		return nil
	},
}

var healthSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Report a new health status",
	RunE: func(cmd *cobra.Command, args []string) error {
		connected, _ := cmd.Flags().GetBool("connected")
		latency, _ := cmd.Flags().GetInt64("latency")
		upTime, _ := cmd.Flags().GetDuration("up-time")
		status, _ := cmd.Flags().GetString("status")

		status = strings.ToUpper(status)
		switch status {
		case "RUNNING", "STOPPED", "ERROR":
		default:
			return fmt.Errorf("--status must be one of RUNNING, STOPPED, ERROR")
		}

		err := httpClient().SetHealth(dto.HealthStatus{
			Connected:       connected,
			Latency:         latency,
			UpTime:          upTime.Milliseconds(),
			ContainerStatus: status,
			LastMessageTime: time.Now().UnixMilli(),
		})
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "✅ health updated")
		return nil
	},
}

var healthHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded health snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		history, err := httpClient().GetHealthHistory(limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range history.Snapshots {
			fmt.Fprintf(out, "%s  connected=%-5t latency=%dms status=%s\n",
				s.RecordedAt, s.Connected, s.Latency, colorStatus(s.ContainerStatus))
		}
		fmt.Fprintf(out, "%d snapshot(s)\n", history.Count)
		return nil
	},
}

func printHealth(out io.Writer, s *dto.HealthStatus) {
	connected := color.RedString("no")
	if s.Connected {
		connected = color.GreenString("yes")
	}
	fmt.Fprintf(out, "Connected:        %s\n", connected)
	fmt.Fprintf(out, "Latency:          %d ms\n", s.Latency)
	fmt.Fprintf(out, "Up time:          %s\n", time.Duration(s.UpTime)*time.Millisecond)
	fmt.Fprintf(out, "Container status: %s\n", colorStatus(s.ContainerStatus))
	if s.LastMessageTime > 0 {
		fmt.Fprintf(out, "Last message:     %s\n", time.UnixMilli(s.LastMessageTime).Format(time.RFC3339))
	}
}

func colorStatus(status string) string {
	switch status {
	case "RUNNING":
		return color.GreenString(status)
	case "STOPPED":
		return color.YellowString(status)
	case "ERROR":
		return color.RedString(status)
	default:
		return color.HiBlackString(status)
	}
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.AddCommand(healthGetCmd, healthSetCmd, healthHistoryCmd)

	healthSetCmd.Flags().Bool("connected", true, "vehicle link is up")
	healthSetCmd.Flags().Int64("latency", 0, "round-trip latency in ms")
	healthSetCmd.Flags().Duration("up-time", 0, "vehicle up time, e.g. 5m")
	healthSetCmd.Flags().String("status", "RUNNING", "container status: RUNNING, STOPPED or ERROR")

	healthHistoryCmd.Flags().Int("limit", 0, "number of snapshots (server default when 0)")
}
