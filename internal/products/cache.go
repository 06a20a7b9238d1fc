package product

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	"github.com/angelmondragon/printshop-backend/pkg/logger"
)

// SnapshotStore is the subset of the redis client used by the quote cache.
type SnapshotStore interface {
	MGet(ctx context.Context, keys ...string) ([]any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	SnapshotKey(productID string) string
	GenerationKey(productID string) string
}

// UnknownGeneration marks a lookup whose generation could not be read. Put
// ignores snapshots carrying it.
const UnknownGeneration int64 = -1

// SnapshotCache keeps published configurations in redis so storefront
// quotes skip the relational load. Failures are logged and treated as misses.
// A nil cache is valid and never hits.
//
// Every product has a generation counter that Invalidate bumps. Snapshots are
// stored with the generation observed before the configuration was loaded
// and are only served while it is still current, so a fill that raced an
// edit is never read.
type SnapshotCache struct {
	store SnapshotStore
	ttl   time.Duration
	logg  *logger.Logger
}

type snapshotEnvelope struct {
	Generation int64                       `json:"generation"`
	Config     productconfig.ProductConfig `json:"config"`
}

// NewSnapshotCache returns nil when store is nil, disabling caching.
func NewSnapshotCache(store SnapshotStore, ttl time.Duration, logg *logger.Logger) *SnapshotCache {
	if store == nil {
		return nil
	}
	return &SnapshotCache{store: store, ttl: ttl, logg: logg}
}

// Get returns the cached snapshot for productID and the product's current
// generation. On a miss the generation is what a following Put must carry;
// read it before loading the configuration.
func (c *SnapshotCache) Get(ctx context.Context, productID uuid.UUID) (productconfig.ProductConfig, int64, bool) {
	if c == nil {
		return productconfig.ProductConfig{}, UnknownGeneration, false
	}
	id := productID.String()
	values, err := c.store.MGet(ctx, c.store.SnapshotKey(id), c.store.GenerationKey(id))
	if err != nil || len(values) != 2 {
		if err == nil {
			err = fmt.Errorf("expected 2 values, got %d", len(values))
		}
		c.warn(ctx, "config snapshot read failed", err)
		return productconfig.ProductConfig{}, UnknownGeneration, false
	}

	generation, err := parseGeneration(values[1])
	if err != nil {
		c.warn(ctx, "config generation decode failed", err)
		return productconfig.ProductConfig{}, UnknownGeneration, false
	}
	raw, ok := values[0].(string)
	if !ok {
		return productconfig.ProductConfig{}, generation, false
	}

	var snap snapshotEnvelope
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		c.warn(ctx, "config snapshot decode failed", err)
		return productconfig.ProductConfig{}, generation, false
	}
	if snap.Generation != generation {
		return productconfig.ProductConfig{}, generation, false
	}
	return snap.Config, generation, true
}

// Put stores cfg tagged with generation, the value Get reported before cfg
// was loaded.
func (c *SnapshotCache) Put(ctx context.Context, cfg productconfig.ProductConfig, generation int64) {
	if c == nil || generation == UnknownGeneration {
		return
	}
	payload, err := json.Marshal(snapshotEnvelope{Generation: generation, Config: cfg})
	if err != nil {
		c.warn(ctx, "config snapshot encode failed", err)
		return
	}
	if err := c.store.Set(ctx, c.store.SnapshotKey(cfg.ProductID.String()), string(payload), c.ttl); err != nil {
		c.warn(ctx, "config snapshot write failed", err)
	}
}

// Invalidate retires the snapshots of the given products. Call it after the
// edit has committed.
func (c *SnapshotCache) Invalidate(ctx context.Context, productIDs ...uuid.UUID) {
	if c == nil || len(productIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if _, err := c.store.Incr(ctx, c.store.GenerationKey(id.String())); err != nil {
			c.warn(ctx, "config generation bump failed", err)
		}
		keys = append(keys, c.store.SnapshotKey(id.String()))
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		c.warn(ctx, "config snapshot invalidation failed", err)
	}
}

func parseGeneration(value any) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected generation type %T", value)
	}
}

func (c *SnapshotCache) warn(ctx context.Context, msg string, err error) {
	if c.logg == nil {
		return
	}
	c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), msg)
}
