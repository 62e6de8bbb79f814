package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cmdutil "github.com/tranvictor/kredits/cmd/util"
	"github.com/tranvictor/kredits/router"
	"github.com/tranvictor/kredits/ui"
)

// signalContext is cancelled on the first SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func currentUser() string {
	if User != "" {
		return User
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

// withLocalApp builds the app as the operator, who is always an admin on
// their own machine, and closes it once fn returns.
func withLocalApp(fn func(ctx context.Context, app *cmdutil.App) error) error {
	ctx, cancel := signalContext()
	defer cancel()

	app, err := newApp(ctx, router.AllowAll{})
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

// runLocal executes a single command through the router.
func runLocal(c router.Command) error {
	return withLocalApp(func(ctx context.Context, app *cmdutil.App) error {
		return executeLocal(ctx, app, c)
	})
}

func executeLocal(ctx context.Context, app *cmdutil.App, c router.Command) error {
	msg := router.Message{
		User: currentUser(),
		Room: Room,
		Text: router.Text(Config.Keyword, c),
	}
	return app.Router.Execute(ctx, msg, c, ui.NewTerminalUI())
}
