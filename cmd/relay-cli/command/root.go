package command

// root.go defines the root command for relay-cli and its global flags.

import (
	"fmt"
	"os"
	"webremote/cmd/relay-cli/command/client"

	"github.com/spf13/cobra"
)

var serverURL string // Global flag for relay server URL

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "relay-cli",
	Short: "relay-cli - operator tool for the webremote relay",
	Long: `relay-cli talks to a running webremote relay server. It can:
- join the relay as a browser or pi and watch the frames it receives
- push a binary blob to every connected session
- read and update the vehicle health status
- start the configured subprocess on the server

Use "relay-cli command --help" to see the flags of each command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "relay server URL")
}

func httpClient() *client.HTTPClient {
	return client.NewHTTPClient(serverURL)
}
