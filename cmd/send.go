package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tranvictor/kredits/router"
	"github.com/tranvictor/kredits/ui"
	"github.com/tranvictor/kredits/util/broadcaster"
)

var sendCmd = &cobra.Command{
	Use:   "send [quantity] <nickname>",
	Short: "Send the asset to a nickname from the address book",
	Long: `Send asks the asset server to transfer quantity units (DEFAULT_QUANTITY when
omitted) from ASSET_FROM_ADDRESS to the address of nickname. MAX_QUANTITY,
when set, caps the quantity.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := Config.RequireTransfer(); err != nil {
			return err
		}
		c := router.SendCommand{Nickname: args[len(args)-1]}
		if len(args) == 2 {
			qty, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || qty <= 0 {
				return fmt.Errorf("quantity must be a positive integer, got %q", args[0])
			}
			c.Quantity = qty
		}

		ctx, cancel := signalContext()
		defer cancel()

		app, err := newApp(ctx, router.AllowAll{})
		if err != nil {
			return err
		}
		defer app.Close()

		u := ui.NewTerminalUI()
		if !AssumeYes {
			to, found, err := app.Book.LookupAddress(ctx, c.Nickname)
			if err != nil {
				return err
			}
			if found {
				qty := c.Quantity
				if qty == 0 {
					qty = Config.DefaultQuantity
				}
				u.Section("Transfer")
				u.KeyValue(transferRows(app.Sender, c.Nickname, to, qty, u))
				if !u.Confirm("Send it?", false) {
					u.Warn("Cancelled.")
					return nil
				}
			}
		}

		msg := router.Message{User: currentUser(), Text: router.Text(Config.Keyword, c)}
		return app.Router.Execute(ctx, msg, c, u)
	},
}

func transferRows(sender *broadcaster.Broadcaster, nick, to string, qty int64, u ui.UI) [][2]string {
	rows := [][2]string{
		{"Asset", Config.AssetID},
		{"From", Config.AssetFromAddress},
		{"To", fmt.Sprintf("%s (%s)", to, nick)},
		{"Quantity", u.Style(ui.StyledText{Text: strconv.FormatInt(qty, 10), Severity: ui.SeverityCritical})},
	}
	if capped := sender.MaxQuantity(); capped > 0 {
		limit := strconv.FormatInt(capped, 10)
		if qty > capped {
			limit = u.Style(ui.StyledText{Text: limit + " (exceeded)", Severity: ui.SeverityError})
		}
		rows = append(rows, [2]string{"Limit", limit})
	}
	return rows
}

func init() {
	AddCommonFlagsToTransferCmds(sendCmd)
	rootCmd.AddCommand(sendCmd)
}
