package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranvictor/kredits/util/openassets"
)

var deriveCmd = &cobra.Command{
	Use:   "derive <address>...",
	Short: "Show the Open Assets address of bitcoin addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, address := range args {
			assetAddress, err := openassets.DeriveAssetAddress(address)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", address, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", address, assetAddress)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d addresses could not be derived", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deriveCmd)
}
