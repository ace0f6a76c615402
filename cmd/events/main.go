// Command events is a small driver around the kashvi-events dispatcher.
//
//	events event:list
//	events fire user.registered '{"id":1}' --first
//	events queue:flush mail --item 1='"welcome"' --item 2='"reminder"'
//	events serve
//
// Every command boots the application with a global listener that logs
// each fired event and an "echo" listener bound in the container as
// "listeners.echo".
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "events",
	Short:         "kashvi-events dispatcher CLI",
	Long:          "Fire events, flush deferred queues and inspect listeners of the kashvi-events dispatcher.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(eventListCmd)
	rootCmd.AddCommand(fireCmd)
	rootCmd.AddCommand(queueFlushCmd)
	rootCmd.AddCommand(serveCmd)
}
