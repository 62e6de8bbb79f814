package explorers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tranvictor/kredits/common"
	"github.com/tranvictor/kredits/networks"
)

const DefaultTimeout = 30 * time.Second

// AssetExplorer answers the read-only questions the bot asks about an
// asset. A holder-less address is reported through the bool, not an error.
type AssetExplorer interface {
	GetBalance(ctx context.Context, address, assetID string) (common.AssetBalance, bool, error)
	ListOwners(ctx context.Context, assetID string) (common.OwnerListing, error)
}

// NewExplorerForNetwork builds the explorer client for network n. A nil
// client gets one with DefaultTimeout.
func NewExplorerForNetwork(n networks.Network, client *http.Client, logger *zap.Logger) *CoinprismExplorer {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return NewCoinprismExplorer(n.GetExplorerAPIURL(), client, logger)
}
