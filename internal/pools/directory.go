package pools

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suitent/sui-deepbook-swap/internal/apperror"
	"github.com/suitent/sui-deepbook-swap/internal/deepbook"
)

// Pool is a normalized trading pool record. The pool name fixes base/quote
// ordering; the assignment is never symmetric.
type Pool struct {
	PoolID        string `json:"poolId"`
	PoolName      string `json:"poolName"`
	BaseCoin      string `json:"baseCoin"`
	QuoteCoin     string `json:"quoteCoin"`
	BaseDecimals  int    `json:"baseDecimals"`
	QuoteDecimals int    `json:"quoteDecimals"`
	LotSize       string `json:"lotSize"`
	TickSize      string `json:"tickSize"`
}

// Direction says which role the input token plays for a resolved pool.
type Direction struct {
	Pool        Pool
	BaseToQuote bool // true when tokenIn is the pool's base asset
}

// Venue is the pool-listing capability the directory depends on.
type Venue interface {
	GetPools(ctx context.Context) ([]deepbook.PoolRecord, error)
}

const (
	defaultTTL           = 5 * time.Minute
	defaultBaseDecimals  = 9
	defaultQuoteDecimals = 6
	defaultLotSize       = "1000000"
	defaultTickSize      = "1000"
)

// snapshot is the immutable cache state, replaced wholesale on refresh so
// readers never observe a partially-updated cache.
type snapshot struct {
	pools     []Pool
	byName    map[string]Pool
	byPair    map[[2]string]Direction
	fetchedAt time.Time
}

// Directory fetches and time-caches the venue's pool listing.
type Directory struct {
	venue  Venue
	ttl    time.Duration
	now    func() time.Time
	logger *logrus.Logger
	cache  atomic.Pointer[snapshot]
}

// DirectoryConfig holds construction options; zero values get defaults.
type DirectoryConfig struct {
	Venue  Venue
	TTL    time.Duration
	Now    func() time.Time
	Logger *logrus.Logger
}

// NewDirectory creates a directory with an empty cache.
func NewDirectory(cfg DirectoryConfig) *Directory {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Directory{venue: cfg.Venue, ttl: cfg.TTL, now: cfg.Now, logger: cfg.Logger}
}

// FetchPools returns the current pool list, refreshing from the venue when
// the cache is older than the TTL. On a refresh failure the last good list
// is served stale; only a never-populated cache propagates the error.
func (d *Directory) FetchPools(ctx context.Context) ([]Pool, error) {
	snap, err := d.ensureFresh(ctx)
	if err != nil {
		return nil, err
	}
	return snap.pools, nil
}

// GetPoolByPair resolves a (base, quote) symbol pair by constructed pool name
// {base}_{quote}. The lookup is not bidirectional: reversing the arguments
// names a different pool.
func (d *Directory) GetPoolByPair(ctx context.Context, base, quote string) (Pool, error) {
	snap, err := d.ensureFresh(ctx)
	if err != nil {
		return Pool{}, err
	}
	name := base + "_" + quote
	pool, ok := snap.byName[name]
	if !ok {
		return Pool{}, apperror.Newf(apperror.CodePoolNotFound, "pool not found for pair %s/%s", base, quote)
	}
	return pool, nil
}

// ResolvePair resolves (tokenIn, tokenOut) to a pool and swap direction using
// the pair table built from the listing's own base/quote fields.
func (d *Directory) ResolvePair(ctx context.Context, tokenIn, tokenOut string) (Direction, error) {
	snap, err := d.ensureFresh(ctx)
	if err != nil {
		return Direction{}, err
	}
	dir, ok := snap.byPair[[2]string{tokenIn, tokenOut}]
	if !ok {
		return Direction{}, apperror.Newf(apperror.CodePoolNotFound, "no pool trades %s -> %s", tokenIn, tokenOut)
	}
	return dir, nil
}

func (d *Directory) ensureFresh(ctx context.Context) (*snapshot, error) {
	if snap := d.cache.Load(); snap != nil && d.now().Sub(snap.fetchedAt) < d.ttl {
		return snap, nil
	}

	records, err := d.venue.GetPools(ctx)
	if err != nil {
		if snap := d.cache.Load(); snap != nil {
			d.logger.WithError(err).Warn("pool refresh failed, serving stale cache")
			return snap, nil
		}
		return nil, apperror.Wrap(err, apperror.CodeNetworkError, "failed to fetch pools from indexer")
	}

	snap := buildSnapshot(records, d.now())
	d.cache.Store(snap)
	d.logger.WithField("pools", len(snap.pools)).Debug("pool cache refreshed")
	return snap, nil
}

func buildSnapshot(records []deepbook.PoolRecord, at time.Time) *snapshot {
	snap := &snapshot{
		byName:    make(map[string]Pool, len(records)),
		byPair:    make(map[[2]string]Direction, 2*len(records)),
		fetchedAt: at,
	}
	for _, rec := range records {
		pool := normalize(rec)
		snap.pools = append(snap.pools, pool)
		snap.byName[pool.PoolName] = pool
		snap.byPair[[2]string{pool.BaseCoin, pool.QuoteCoin}] = Direction{Pool: pool, BaseToQuote: true}
		snap.byPair[[2]string{pool.QuoteCoin, pool.BaseCoin}] = Direction{Pool: pool, BaseToQuote: false}
	}
	return snap
}

func normalize(rec deepbook.PoolRecord) Pool {
	pool := Pool{
		PoolID:        rec.PoolID,
		PoolName:      rec.PoolName,
		BaseCoin:      rec.BaseAssetSymbol,
		QuoteCoin:     rec.QuoteAssetSymbol,
		BaseDecimals:  rec.BaseAssetDecimals,
		QuoteDecimals: rec.QuoteAssetDecimals,
		LotSize:       rec.LotSize.String(),
		TickSize:      rec.TickSize.String(),
	}
	if pool.BaseDecimals == 0 {
		pool.BaseDecimals = defaultBaseDecimals
	}
	if pool.QuoteDecimals == 0 {
		pool.QuoteDecimals = defaultQuoteDecimals
	}
	if pool.LotSize == "" {
		pool.LotSize = defaultLotSize
	}
	if pool.TickSize == "" {
		pool.TickSize = defaultTickSize
	}
	return pool
}
