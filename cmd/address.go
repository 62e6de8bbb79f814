package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cmdutil "github.com/tranvictor/kredits/cmd/util"
	"github.com/tranvictor/kredits/common"
	"github.com/tranvictor/kredits/router"
	"github.com/tranvictor/kredits/ui"
)

var addressCmd = &cobra.Command{
	Use:     "address",
	Aliases: []string{"addr"},
	Short:   "Manage the nickname to asset address book",
	Long:    ``,
}

var addressAddCmd = &cobra.Command{
	Use:   "add <nickname> <address>",
	Short: "Add or overwrite a nickname",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := router.AddressAddCommand{}
		if len(args) > 0 {
			c.Nickname = args[0]
		}
		if len(args) > 1 {
			c.Address = args[1]
		}
		return runLocal(c)
	},
}

var addressRemoveCmd = &cobra.Command{
	Use:     "remove <nickname>",
	Aliases: []string{"rm"},
	Short:   "Remove a nickname",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := router.AddressRemoveCommand{}
		if len(args) > 0 {
			c.Nickname = args[0]
		}
		return runLocal(c)
	},
}

var addressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every entry, sorted by nickname",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLocalApp(func(ctx context.Context, app *cmdutil.App) error {
			entries, err := app.Book.Entries(ctx)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				// the book renders its own hint for an empty list
				return executeLocal(ctx, app, router.AddressListCommand{})
			}
			entryTable(ui.NewTerminalUI(), entries)
			return nil
		})
	},
}

var addressFindCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Find at max 10 entries matching a nickname or address prefix",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withLocalApp(func(ctx context.Context, app *cmdutil.App) error {
			return findEntries(ctx, app, ui.NewTerminalUI(), query)
		})
	},
}

func findEntries(ctx context.Context, app *cmdutil.App, u ui.UI, query string) error {
	entries, err := app.Book.Find(ctx, query)
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		u.Warn("%s", ve.Message)
		return nil
	case err != nil:
		return fmt.Errorf("searching the address book: %w", err)
	}
	if len(entries) == 0 {
		u.Info("Nobody in the addressbook matches %q.", query)
		return nil
	}
	entryTable(u, entries)
	return nil
}

func entryTable(u ui.UI, entries []common.AddressBookEntry) {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{u.Style(ui.StyledText{Text: e.Nickname, Severity: ui.SeveritySuccess}), e.Address}
	}
	u.Table([]string{"nickname", "address"}, rows)
}

func init() {
	addressCmd.AddCommand(addressAddCmd, addressRemoveCmd, addressListCmd, addressFindCmd)
	rootCmd.AddCommand(addressCmd)
}
