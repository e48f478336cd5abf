package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sizeCmd = &cobra.Command{
	Use:   "size <url> <ref>...",
	Short: "Calculate download and installed size",
	Long:  "Calculate the download and installed size of the given refs and their dependencies.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSize,
}

func init() {
	rootCmd.AddCommand(sizeCmd)
}

func runSize(cmd *cobra.Command, args []string) error {
	src := newSource(args[0])

	download, installed, err := src.CalculateSize(cmd.Context(), args[1:])
	if err != nil {
		return fmt.Errorf("calculate size: %w", err)
	}

	fmt.Printf("download:\t%d\n", download)
	fmt.Printf("installed:\t%d\n", installed)
	return nil
}
