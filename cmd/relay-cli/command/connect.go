package command

import (
	"os"
	"os/signal"
	"syscall"
	"webremote/cmd/relay-cli/command/client"

	"github.com/spf13/cobra"
)

// connectCmd joins the relay as an interactive session
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Join the relay and print received frames",
	Long: `Open a WebSocket session on /ws, declare a role, and print every frame
relayed to it. Each line typed on stdin is sent as a signaling message, so it
must be a JSON object, for example {"type":"offer","sdp":"..."}.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return client.Connect(ctx, serverURL, role, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().String("role", "browser", `role to declare ("" to stay roleless)`)
}
