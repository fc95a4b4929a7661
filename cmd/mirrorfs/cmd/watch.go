package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aweris/mirrorfs"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Follow a directory",
	Long:  "Mirror a directory and stream add/update/delete events until interrupted.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cache, err := mirrorfs.Open(args[0], openOptions()...)
	if err != nil {
		return err
	}
	defer cache.Stop()

	for _, kind := range []mirrorfs.EventKind{
		mirrorfs.EventAdded,
		mirrorfs.EventUpdated,
		mirrorfs.EventDeleted,
	} {
		cache.Notify(kind, func(event mirrorfs.Event) {
			fmt.Printf("%s\t%s\n", event.Kind, event.Name)
		})
	}
	cache.Notify(mirrorfs.EventError, func(event mirrorfs.Event) {
		fmt.Fprintf(os.Stderr, "error\t%s\t%v\n", event.Name, event.Err)
	})

	if err := cache.Start(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Watching %s (%d entries). Ctrl-C to stop.\n", cache.Dir(), cache.Len())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-cmd.Context().Done():
	}

	return nil
}
