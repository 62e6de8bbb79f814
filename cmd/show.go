package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/kredits/router"
)

var showCmd = &cobra.Command{
	Use:   "show <nickname>",
	Short: "Show how much of the asset a nickname holds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := Config.RequireAsset(); err != nil {
			return err
		}
		return runLocal(router.ShowCommand{Nickname: args[0]})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the top holders of the asset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := Config.RequireAsset(); err != nil {
			return err
		}
		return runLocal(router.ListCommand{})
	},
}

func init() {
	rootCmd.AddCommand(showCmd, listCmd)
}
