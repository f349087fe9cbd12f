package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"codejudge/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const compilerCatalogKey = "judge:compilers"

// CompilerCatalog is a TTL-bounded read-through cache for the remote judge's
// compiler list. Any Redis failure is treated as a miss so the caller can fall
// back to a live catalog fetch.
type CompilerCatalog struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCompilerCatalog(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CompilerCatalog {
	return &CompilerCatalog{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CompilerCatalog) Get(ctx context.Context) ([]model.Compiler, bool) {
	raw, err := c.rdb.Get(ctx, compilerCatalogKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("compiler cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var compilers []model.Compiler
	if err := json.Unmarshal(raw, &compilers); err != nil {
		c.logger.Warn("compiler cache entry corrupt, discarding", zap.Error(err))
		return nil, false
	}
	return compilers, true
}

func (c *CompilerCatalog) Put(ctx context.Context, compilers []model.Compiler) {
	raw, err := json.Marshal(compilers)
	if err != nil {
		c.logger.Warn("compiler cache encode failed", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, compilerCatalogKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("compiler cache write failed", zap.Error(err))
	}
}
