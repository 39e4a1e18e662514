package command

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// pushCmd sends a binary blob to every connected session via POST /data
var pushCmd = &cobra.Command{
	Use:   "push FILE|-",
	Short: "Broadcast a file (or stdin) to every connected session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var body io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()
			body = f
		}

		if err := httpClient().PushData(body); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "✅ payload broadcast")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
