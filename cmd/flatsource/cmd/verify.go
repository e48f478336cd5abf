package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osinstall/flatsource"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify a local OCI layout",
	Long:  "Check that every manifest and blob in a local OCI image layout is present and matches its digest.",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	if err := flatsource.VerifyLayout(args[0]); err != nil {
		return err
	}

	fmt.Println("OK")
	return nil
}
