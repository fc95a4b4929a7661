package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aweris/mirrorfs"
)

var getCmd = &cobra.Command{
	Use:   "get <dir> <name>",
	Short: "Print one mirrored entry",
	Long:  "Mirror a directory once and print the content of a single entry.",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	dir, name := args[0], args[1]

	cache, err := mirrorfs.Open(dir, openOptions()...)
	if err != nil {
		return err
	}
	defer cache.Stop()

	if err := cache.Start(cmd.Context()); err != nil {
		return err
	}

	content, ok := cache.Get(name)
	if !ok {
		return fmt.Errorf("%s: not tracked", name)
	}
	if content == nil {
		return fmt.Errorf("%s: no readable content", name)
	}

	if value, ok := content.JSON(); ok {
		fmt.Printf("%v\n", value)
		return nil
	}

	os.Stdout.Write(content.Bytes())
	return nil
}
