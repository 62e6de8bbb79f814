package util

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"go.uber.org/zap"

	"github.com/tranvictor/kredits/common"
	"github.com/tranvictor/kredits/config"
	"github.com/tranvictor/kredits/metrics"
	"github.com/tranvictor/kredits/router"
	"github.com/tranvictor/kredits/util/addrbook"
	"github.com/tranvictor/kredits/util/broadcaster"
	"github.com/tranvictor/kredits/util/explorers"
	"github.com/tranvictor/kredits/util/openassets"
	"github.com/tranvictor/kredits/util/store"
)

// App owns every long lived piece a command needs: the store behind the
// address book, the explorer and asset server clients and the router on top
// of them. Build it once per process and Close it on the way out.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	Store    store.Store
	Book     *addrbook.Book
	Deriver  *openassets.Deriver
	Explorer *explorers.CoinprismExplorer
	// nil unless SERVER_URL, ASSET_ID and ASSET_FROM_ADDRESS are set
	Sender *broadcaster.Broadcaster
	Router *router.Router
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, auth router.Authorizer) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	s, err := store.Open(ctx, cfg.StoreOptions(), logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	app.Store = s
	app.Book = addrbook.New(s, cfg.Keyword)

	app.Deriver, err = openassets.NewDeriver(ctx, logger.Named("deriver"))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating address deriver: %w", err)
	}

	network := cfg.CurrentNetwork()
	app.Explorer = explorers.NewExplorerForNetwork(
		network,
		app.httpClient("explorer"),
		logger.Named("explorer"),
	)
	app.Explorer.Deriver = app.Deriver
	app.Explorer.Resolver = app.Book
	app.Explorer.TotalScope = common.TotalScope(cfg.ListTotalScope)
	app.Explorer.SetRateLimit(cfg.ExplorerRateLimit, int(math.Ceil(cfg.ExplorerRateLimit)))

	if err := cfg.RequireTransfer(); err == nil {
		app.Sender = broadcaster.New(
			cfg.ServerURL,
			cfg.ServerUsername,
			cfg.ServerPassword,
			cfg.MaxQuantity,
			app.httpClient("asset_server"),
			logger.Named("broadcaster"),
		)
	} else {
		logger.Debug("transfers disabled", zap.Error(err))
	}

	var sender router.Sender
	if app.Sender != nil {
		sender = app.Sender
	}
	app.Router = router.New(
		router.Settings{
			Keyword:         cfg.Keyword,
			AssetID:         cfg.AssetID,
			FromAddress:     cfg.AssetFromAddress,
			DefaultQuantity: cfg.DefaultQuantity,
			PlusPlusRooms:   cfg.PlusPlusRooms,
			Network:         network,
		},
		app.Book,
		app.Explorer,
		sender,
		auth,
		logger.Named("router"),
	)
	app.Router.SetRateLimit(cfg.RateLimitPerMinute)
	app.Router.SetMetrics(app.Metrics)
	return app, nil
}

func (a *App) httpClient(service string) *http.Client {
	return &http.Client{
		Timeout:   a.Config.HTTPTimeout,
		Transport: a.Metrics.RoundTripper(service, http.DefaultTransport),
	}
}

// Authorizer returns the configured admin list. With no admins configured
// and allowAllWhenUnset, everyone is an admin, which suits a local shell.
func Authorizer(cfg *config.Config, allowAllWhenUnset bool) router.Authorizer {
	if len(cfg.Admins) == 0 && allowAllWhenUnset {
		return router.AllowAll{}
	}
	return router.NewAdminList(cfg.Admins)
}

func (a *App) Close() error {
	var errs []error
	if a.Deriver != nil {
		errs = append(errs, a.Deriver.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
