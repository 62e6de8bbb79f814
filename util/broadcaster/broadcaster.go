package broadcaster

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tranvictor/kredits/common"
)

const serviceName = "asset server"

// Broadcaster hands transfer requests to an Open Assets server exposing
// send_asset. One attempt per request, no retry.
type Broadcaster struct {
	serverURL   string
	username    string
	password    string
	maxQuantity int64

	client *http.Client
	logger *zap.Logger
}

// New returns a Broadcaster. maxQuantity <= 0 means no cap.
func New(serverURL, username, password string, maxQuantity int64, client *http.Client, logger *zap.Logger) *Broadcaster {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		serverURL:   strings.TrimRight(serverURL, "/"),
		username:    username,
		password:    password,
		maxQuantity: maxQuantity,
		client:      client,
		logger:      logger,
	}
}

func (b *Broadcaster) MaxQuantity() int64 {
	return b.maxQuantity
}

// CheckQuantity applies the local policy without touching the network.
func (b *Broadcaster) CheckQuantity(quantity int64) error {
	if quantity <= 0 {
		return common.NewValidationError("quantity must be positive, got %d", quantity)
	}
	if b.maxQuantity > 0 && quantity > b.maxQuantity {
		return &common.QuantityExceededError{Quantity: quantity, Max: b.maxQuantity}
	}
	return nil
}

func (b *Broadcaster) sendURL(req common.TransferRequest) string {
	q := url.Values{}
	q.Set("from", req.From)
	q.Set("to", req.To)
	q.Set("asset_id", req.AssetID)
	q.Set("amount", strconv.FormatInt(req.Quantity, 10))
	return fmt.Sprintf("%s/send_asset?%s", b.serverURL, q.Encode())
}

// Send validates req and posts it to the asset server. A missing req.ID is
// filled with a fresh UUID.
func (b *Broadcaster) Send(ctx context.Context, req common.TransferRequest) (common.TransactionReceipt, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	logger := b.logger.With(zap.String("request_id", req.ID))

	if err := b.CheckQuantity(req.Quantity); err != nil {
		logger.Info("transfer rejected", zap.Int64("quantity", req.Quantity), zap.Error(err))
		return common.TransactionReceipt{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.sendURL(req), nil)
	if err != nil {
		return common.TransactionReceipt{}, &common.TransportError{Service: serviceName, Op: "send_asset", Err: err}
	}
	httpReq.SetBasicAuth(b.username, b.password)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	logger.Info("dispatching transfer",
		zap.String("to", req.To),
		zap.String("asset_id", req.AssetID),
		zap.Int64("quantity", req.Quantity))

	resp, err := b.client.Do(httpReq)
	if err != nil {
		logger.Warn("asset server unreachable", zap.Error(err))
		return common.TransactionReceipt{}, &common.TransportError{Service: serviceName, Op: "send_asset", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.TransactionReceipt{}, &common.TransportError{
			Service: serviceName, Op: "send_asset", Status: resp.StatusCode, Err: err,
		}
	}

	hash, err := parseResponse(resp.StatusCode, body)
	if err != nil {
		logger.Warn("transfer failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return common.TransactionReceipt{}, err
	}
	logger.Info("transfer accepted", zap.String("hash", hash))
	return common.TransactionReceipt{RequestID: req.ID, Hash: hash}, nil
}
