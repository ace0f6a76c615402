package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kashvi-events/pkg/logger"
)

var (
	queueItemsFlag []string
	queueKeepFlag  bool
)

// events queue:flush <queue> --item key=payload
var queueFlushCmd = &cobra.Command{
	Use:   "queue:flush <queue>",
	Short: "Queue items and flush them through a logging flusher",
	Long: "Queue each --item key=payload (payload decoded as JSON when possible), " +
		"then flush the queue. With the redis driver, items queued by earlier runs are flushed too.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		d := a.Events()
		name := args[0]

		for _, item := range queueItemsFlag {
			key, raw, ok := strings.Cut(item, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid --item %q, want key=payload", item)
			}
			if err := d.Queue(name, key, parseValue(raw)); err != nil {
				return err
			}
		}

		flushed := 0
		if err := d.Flusher(name, func(args ...any) {
			flushed++
			logger.Info("queue item flushed", "queue", name, "key", args[0], "payload", args[1:])
		}); err != nil {
			return err
		}
		if err := d.Flush(name); err != nil {
			return err
		}
		fmt.Printf("Flushed %d item(s) from %q.\n", flushed, name)

		if !queueKeepFlag {
			return d.ForgetQueue(name)
		}
		return nil
	},
}

func init() {
	queueFlushCmd.Flags().StringArrayVarP(&queueItemsFlag, "item", "i", nil, "Item to queue as key=payload (repeatable)")
	queueFlushCmd.Flags().BoolVar(&queueKeepFlag, "keep", false, "Keep the items queued after flushing")
}
