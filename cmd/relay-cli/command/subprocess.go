package command

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// subprocessCmd groups the subprocess launcher commands
var subprocessCmd = &cobra.Command{
	Use:   "subprocess",
	Short: "Control the server-side subprocess launcher",
}

var subprocessStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the configured subprocess on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		started, err := httpClient().StartSubprocess()
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✅ %s (pid %d)\n", started.Message, started.PID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(subprocessCmd)
	subprocessCmd.AddCommand(subprocessStartCmd)
}
