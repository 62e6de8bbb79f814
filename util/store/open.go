package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Options struct {
	Backend string
	// Path is the JSON file for the file backend and the data dir for badger.
	Path  string
	Redis RedisConfig
}

// Open builds the backend named by opts.Backend. Empty means file.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Path, logger), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.Redis)
	case BackendBadger:
		return NewBadgerStore(opts.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
