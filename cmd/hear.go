package cmd

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cmdutil "github.com/tranvictor/kredits/cmd/util"
	"github.com/tranvictor/kredits/router"
	"github.com/tranvictor/kredits/ui"
)

var hearCmd = &cobra.Command{
	Use:   "hear [message]",
	Short: "Handle chat messages from the arguments or stdin",
	Long: `Hear treats its arguments as one chat message, or every line of stdin as a
message when no argument is given, and prints the bot's replies.

When ADMINS is empty everyone is treated as an admin.`,
	Example: `  kredits hear kredits show bumi
  echo "bumi++" | kredits hear --user galfert --room '#kredits'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		app, err := newApp(ctx, cmdutil.Authorizer(Config, true))
		if err != nil {
			return err
		}
		defer app.Close()

		u := ui.NewTerminalOutput()
		user := currentUser()

		if len(args) > 0 {
			return app.Router.Handle(ctx, router.Message{User: user, Room: Room, Text: strings.Join(args, " ")}, u)
		}

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if err := app.Router.Handle(ctx, router.Message{User: user, Room: Room, Text: text}, u); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			Logger.Warn("reading stdin", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	AddCommonFlagsToChatCmds(hearCmd)
	rootCmd.AddCommand(hearCmd)
}
