// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cmdutil "github.com/tranvictor/kredits/cmd/util"
	"github.com/tranvictor/kredits/config"
	"github.com/tranvictor/kredits/logger"
	"github.com/tranvictor/kredits/networks"
	"github.com/tranvictor/kredits/router"
)

var (
	// populated by PersistentPreRunE before any subcommand runs
	Config *config.Config
	Logger *zap.Logger

	ConfigPath   string
	Network      string
	Keyword      string
	StoreBackend string
	StorePath    string
	LogLevel     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kredits",
	Short: "Hand out Open Assets rewards from chat",
	Long: fmt.Sprintf(`Kredits is a chat bot and command line tool to reward contributors with an
Open Assets token.

It listens for commands such as

	kredits address add bumi akB4NBW9UuCmHuepksob6yfZs6naHtRCPNy
	kredits show bumi
	kredits list
	kredits send 5 to bumi
	bumi++

keeps a book of nicknames and their asset addresses, asks a Coinprism compatible
explorer for balances and owners, and asks an Open Assets server to send the
asset.

Commands can be heard from stdin ("kredits hear"), from a webhook ("kredits
serve") or run directly ("kredits show bumi").

Configuration comes from an optional YAML file (--config), then environment
variables, then flags. Every variable is also read with the %s prefix:

	BOT_KEYWORD, ASSET_ID, ASSET_FROM_ADDRESS, DEFAULT_QUANTITY, MAX_QUANTITY,
	SERVER_URL, SERVER_USERNAME, SERVER_PASSWORD, PLUSPLUS_ROOMS, ADMINS,
	NETWORK, STORE_BACKEND, STORE_PATH, REDIS_ADDR, REDIS_PASSWORD, REDIS_DB,
	LIST_TOTAL_SCOPE, RATE_LIMIT_PER_MINUTE, EXPLORER_RATE_LIMIT, HTTP_TIMEOUT,
	LISTEN_ADDR, WEBHOOK_TOKEN, LOG_LEVEL, LOG_FILE

The explorer API of each network can be replaced by setting:
	1. For mainnet: %s
	2. For testnet: %s`,
		config.EnvPrefix,
		networks.Mainnet.GetExplorerAPIVariableName(),
		networks.Testnet.GetExplorerAPIVariableName(),
	),
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// loadConfig layers flags that were set explicitly over the file and env.
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("network") {
		cfg.Network = Network
	}
	if flags.Changed("keyword") {
		cfg.Keyword = Keyword
	}
	if flags.Changed("store") {
		cfg.Store.Backend = StoreBackend
	}
	if flags.Changed("store-path") {
		cfg.Store.Path = StorePath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	Config = cfg
	Logger = l
	return nil
}

// newApp wires the components for commands that talk to the address book or
// the outside world.
func newApp(ctx context.Context, auth router.Authorizer) (*cmdutil.App, error) {
	return cmdutil.NewApp(ctx, Config, Logger, auth)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&ConfigPath, "config", "c", "", "YAML config file. Environment variables override it.")
	rootCmd.PersistentFlags().StringVarP(&Network, "network", "k", "mainnet", fmt.Sprintf("explorer network. Valid values: %v.", networks.GetSupportedNetworkNames()))
	rootCmd.PersistentFlags().StringVar(&Keyword, "keyword", config.DefaultKeyword, "command keyword, usually the asset name in lowercase")
	rootCmd.PersistentFlags().StringVar(&StoreBackend, "store", "file", "address book storage: file, memory, redis or badger")
	rootCmd.PersistentFlags().StringVar(&StorePath, "store-path", "", "JSON file for the file store, data directory for badger")
	rootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "info", "debug, info, warn or error")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if Logger != nil {
		_ = Logger.Sync()
	}
}
