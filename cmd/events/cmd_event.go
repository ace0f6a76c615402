package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	fireFirstFlag  bool
	fireListenFlag []string
	fireAsyncFlag  bool
)

// events event:list — print every event with its listener count.
var eventListCmd = &cobra.Command{
	Use:   "event:list",
	Short: "List events that have listeners",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		d := a.Events()
		names := d.Events()
		if len(names) == 0 {
			fmt.Println("No events registered.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "EVENT\tLISTENERS")
		fmt.Fprintln(w, "-----\t---------")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%d\n", name, len(d.Listeners(name)))
		}
		return w.Flush()
	},
}

// events fire <event> [payload...]
var fireCmd = &cobra.Command{
	Use:   "fire <event> [payload...]",
	Short: "Fire an event and print the listener responses",
	Long: "Fire an event. Each payload argument is decoded as JSON when possible, " +
		"otherwise passed as a string.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		d := a.Events()
		name, payload := args[0], parseValues(args[1:])
		if err := listenAll(d, name, fireListenFlag); err != nil {
			return err
		}

		switch {
		case fireAsyncFlag:
			return d.Async(name, payload...)
		case fireFirstFlag:
			first, err := d.First(name, payload...)
			if err != nil {
				return err
			}
			return printJSON(first)
		default:
			responses, err := d.Fire(name, payload...)
			if err != nil {
				return err
			}
			return printJSON(responses)
		}
	},
}

func init() {
	fireCmd.Flags().BoolVar(&fireFirstFlag, "first", false, "Stop at the first non-null response")
	fireCmd.Flags().BoolVar(&fireAsyncFlag, "async", false, "Fire on the worker pool and wait for shutdown")
	fireCmd.Flags().StringSliceVarP(&fireListenFlag, "listen", "l", []string{"listeners.echo"},
		"Container identifiers to register on the event before firing")
}
