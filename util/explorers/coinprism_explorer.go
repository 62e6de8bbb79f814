package explorers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tranvictor/kredits/common"
	"github.com/tranvictor/kredits/util/addrbook"
	"github.com/tranvictor/kredits/util/openassets"
)

const (
	serviceName = "explorer"

	DefaultOwnersPageSize = 10
	// coinprism allowed a handful of calls per second per client
	DefaultRequestsPerSecond = 5
)

// Deriver turns a settlement address into an asset address.
type Deriver interface {
	Derive(settlementAddress string) (string, error)
}

type DeriveFunc func(string) (string, error)

func (f DeriveFunc) Derive(settlementAddress string) (string, error) {
	return f(settlementAddress)
}

// CoinprismExplorer talks to a Coinprism compatible v1 API.
type CoinprismExplorer struct {
	Domain string

	// owner listing annotation
	Deriver    Deriver
	Resolver   addrbook.AddressResolver
	TotalScope common.TotalScope
	PageSize   int

	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewCoinprismExplorer(domain string, client *http.Client, logger *zap.Logger) *CoinprismExplorer {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoinprismExplorer{
		Domain:     strings.TrimRight(domain, "/"),
		Deriver:    DeriveFunc(openassets.DeriveAssetAddress),
		Resolver:   addrbook.Map{},
		TotalScope: common.TotalAllOwners,
		PageSize:   DefaultOwnersPageSize,
		client:     client,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultRequestsPerSecond),
		logger:     logger,
	}
}

// SetRateLimit replaces the outbound limiter. rps <= 0 disables limiting.
func (ce *CoinprismExplorer) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		ce.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	if burst <= 0 {
		burst = 1
	}
	ce.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

func (ce *CoinprismExplorer) AddressAPIURL(address string) string {
	return fmt.Sprintf("%s/addresses/%s", ce.Domain, url.PathEscape(address))
}

func (ce *CoinprismExplorer) OwnersAPIURL(assetID string) string {
	return fmt.Sprintf("%s/assets/%s/owners", ce.Domain, url.PathEscape(assetID))
}

// quantity accepts both "5" and 5, the explorer has used both.
type quantity int64

func (q *quantity) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		*q = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("quantity %s is not an integer: %w", string(data), err)
	}
	*q = quantity(n)
	return nil
}

type addressResponse struct {
	Assets []struct {
		ID                 string   `json:"id"`
		Balance            quantity `json:"balance"`
		UnconfirmedBalance quantity `json:"unconfirmed_balance"`
	} `json:"assets"`
}

type ownersResponse struct {
	Owners []struct {
		Address       string   `json:"address"`
		AssetQuantity quantity `json:"asset_quantity"`
	} `json:"owners"`
}

// getJSON fetches url and decodes a 200 response into out. Everything that
// goes wrong on the way is a TransportError.
func (ce *CoinprismExplorer) getJSON(ctx context.Context, op, url string, out any) error {
	if err := ce.limiter.Wait(ctx); err != nil {
		return &common.TransportError{Service: serviceName, Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &common.TransportError{Service: serviceName, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := ce.client.Do(req)
	if err != nil {
		return &common.TransportError{Service: serviceName, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &common.TransportError{Service: serviceName, Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &common.TransportError{
			Service: serviceName,
			Op:      op,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("GET %s: %s", url, truncate(body)),
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &common.TransportError{
			Service: serviceName,
			Op:      op,
			Err:     fmt.Errorf("couldn't unmarshal %s: %w", truncate(body), err),
		}
	}
	return nil
}

// GetBalance returns the confirmed and unconfirmed holdings of assetID at
// address. found is false when the address holds none of it.
func (ce *CoinprismExplorer) GetBalance(ctx context.Context, address, assetID string) (common.AssetBalance, bool, error) {
	resp := addressResponse{}
	if err := ce.getJSON(ctx, "balance", ce.AddressAPIURL(address), &resp); err != nil {
		return common.AssetBalance{}, false, err
	}
	for _, a := range resp.Assets {
		if a.ID == assetID {
			return common.AssetBalance{
				AssetID:     assetID,
				Balance:     int64(a.Balance),
				Unconfirmed: int64(a.UnconfirmedBalance),
			}, true, nil
		}
	}
	return common.AssetBalance{AssetID: assetID}, false, nil
}

// ListOwners returns the holders of assetID in the order the explorer
// gives them. Only the first PageSize owners are annotated and returned;
// OwnerCount and, depending on TotalScope, Total cover all of them.
func (ce *CoinprismExplorer) ListOwners(ctx context.Context, assetID string) (common.OwnerListing, error) {
	resp := ownersResponse{}
	if err := ce.getJSON(ctx, "owners", ce.OwnersAPIURL(assetID), &resp); err != nil {
		return common.OwnerListing{}, err
	}

	pageSize := ce.PageSize
	if pageSize <= 0 {
		pageSize = DefaultOwnersPageSize
	}
	scope := ce.TotalScope
	if scope == "" {
		scope = common.TotalAllOwners
	}

	listing := common.OwnerListing{
		AssetID:    assetID,
		OwnerCount: len(resp.Owners),
		TotalScope: scope,
	}
	for i, o := range resp.Owners {
		displayed := i < pageSize
		if displayed || scope == common.TotalAllOwners {
			listing.Total += int64(o.AssetQuantity)
		}
		if !displayed {
			continue
		}

		record := common.AssetOwnerRecord{
			SettlementAddress: o.Address,
			AssetQuantity:     int64(o.AssetQuantity),
		}
		assetAddress, err := ce.Deriver.Derive(o.Address)
		if err != nil {
			ce.logger.Warn("couldn't derive asset address of owner",
				zap.String("address", o.Address), zap.Error(err))
			assetAddress = o.Address
		}
		record.AssetAddress = assetAddress
		record.Name = ce.Resolver.Resolve(ctx, assetAddress)
		listing.Owners = append(listing.Owners, record)
	}
	return listing, nil
}

func truncate(body []byte) string {
	const maxLen = 200
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
