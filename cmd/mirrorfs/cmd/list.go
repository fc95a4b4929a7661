package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aweris/mirrorfs"
)

var listCmd = &cobra.Command{
	Use:   "list <dir>",
	Short: "List mirrored entries",
	Long:  "Mirror a directory once and print the tracked entry names.",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cache, err := mirrorfs.Open(args[0], openOptions()...)
	if err != nil {
		return err
	}
	defer cache.Stop()

	if err := cache.Start(cmd.Context()); err != nil {
		return err
	}

	names := cache.Filenames()
	for _, name := range names {
		fmt.Println(name)
	}

	if len(names) == 0 {
		fmt.Println("(no entries)")
	}

	return nil
}
