package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <url>",
	Short: "List images in a source",
	Long:  "List all Flatpak images a source knows about, with their declared sizes.",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	src := newSource(args[0])

	images, err := src.Images(cmd.Context())
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	count := 0
	for _, image := range images {
		ref := image.Ref()
		if ref == "" {
			continue
		}
		fmt.Printf("%s\t%d\t%d\n", ref, image.DownloadSize(), image.InstalledSize())
		count++
	}

	if count == 0 {
		fmt.Println("(no images)")
	}

	return nil
}
