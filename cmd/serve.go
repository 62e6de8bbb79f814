package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	cmdutil "github.com/tranvictor/kredits/cmd/util"
	"github.com/tranvictor/kredits/server"
)

var ListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat webhook",
	Long: `Serve accepts chat messages on POST /hear as {"user", "room", "text"} and
answers {"lines": [...]}. It also serves GET /healthz and GET /metrics.

Set WEBHOOK_TOKEN to require the same value in the X-Kredits-Token header.
Only users in ADMINS can manage the address book or send.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("listen") {
			Config.ListenAddr = ListenAddr
		}
		if len(Config.Admins) == 0 {
			Logger.Warn("ADMINS is empty, nobody can manage the address book or send")
		}
		if Config.WebhookToken == "" {
			Logger.Warn("WEBHOOK_TOKEN is empty, anyone who can reach the webhook can talk to the bot")
		}

		ctx, cancel := signalContext()
		defer cancel()

		app, err := newApp(ctx, cmdutil.Authorizer(Config, false))
		if err != nil {
			return err
		}

		srv := server.New(
			server.Options{Addr: Config.ListenAddr, Token: Config.WebhookToken},
			app.Router,
			app.Metrics,
			Logger.Named("server"),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Run(gctx)
		})
		err = g.Wait()

		// the server has drained, nothing touches the store anymore
		if cerr := app.Close(); cerr != nil {
			Logger.Warn("closing", zap.Error(cerr))
		}
		return err
	},
}

func init() {
	serveCmd.Flags().StringVarP(&ListenAddr, "listen", "l", ":8080", "address the webhook listens on, overrides LISTEN_ADDR")
	rootCmd.AddCommand(serveCmd)
}
