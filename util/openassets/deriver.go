package openassets

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"
)

// Deriver memoizes DeriveAssetAddress per settlement address.
type Deriver struct {
	cache  *bigcache.BigCache
	logger *zap.Logger
}

func NewDeriver(ctx context.Context, logger *zap.Logger) (*Deriver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := bigcache.DefaultConfig(24 * time.Hour)
	cfg.Shards = 16
	cfg.MaxEntriesInWindow = 10000
	cfg.HardMaxCacheSize = 8 // MB
	cfg.Verbose = false

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Deriver{cache: cache, logger: logger}, nil
}

func (d *Deriver) Derive(settlementAddress string) (string, error) {
	if cached, err := d.cache.Get(settlementAddress); err == nil {
		return string(cached), nil
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		return DeriveAssetAddress(settlementAddress)
	}

	derived, err := DeriveAssetAddress(settlementAddress)
	if err != nil {
		return "", err
	}
	if err := d.cache.Set(settlementAddress, []byte(derived)); err != nil {
		d.logger.Debug("couldn't cache derived address",
			zap.String("address", settlementAddress), zap.Error(err))
	}
	return derived, nil
}

func (d *Deriver) Close() error {
	return d.cache.Close()
}
