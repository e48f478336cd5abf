package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var stageCmd = &cobra.Command{
	Use:   "stage <url> <ref>...",
	Short: "Stage refs into a local sideload layout",
	Long:  "Download the given refs and their dependencies into a directory an installer can sideload from.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runStage,
}

var stageDest string

func init() {
	stageCmd.Flags().StringVarP(&stageDest, "dest", "d", ".", "destination directory")
	rootCmd.AddCommand(stageCmd)
}

// stderrProgress reports progress lines to stderr.
type stderrProgress struct{}

func (stderrProgress) ReportProgress(message string) {
	fmt.Fprintln(os.Stderr, message)
}

func runStage(cmd *cobra.Command, args []string) error {
	src := newSource(args[0])

	sideload, err := src.Download(cmd.Context(), args[1:], stageDest, stderrProgress{})
	if err != nil {
		return fmt.Errorf("stage: %w", err)
	}

	if sideload == "" {
		fmt.Println("nothing staged; install directly from the source")
		return nil
	}

	fmt.Println(sideload)
	return nil
}
