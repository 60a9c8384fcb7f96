// Package feed stores price records under their bounded pair and serves
// them through the provider contracts.
package feed

import (
	"context"
	"math"
	"sync"

	binarycodec "github.com/LeJamon/goPriceFeed/internal/codec/binary-codec"
	"github.com/LeJamon/goPriceFeed/internal/config"
	"github.com/LeJamon/goPriceFeed/internal/core/currency"
	"github.com/LeJamon/goPriceFeed/internal/core/errors"
	"github.com/LeJamon/goPriceFeed/internal/core/price"
	"github.com/LeJamon/goPriceFeed/internal/core/provider"
	"github.com/LeJamon/goPriceFeed/internal/logging"
	"github.com/LeJamon/goPriceFeed/internal/storage/database"
	lru "github.com/hashicorp/golang-lru/v2"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// MaxSymbolBytes is the largest symbol, in bytes, accepted as a key.
const MaxSymbolBytes = 16

// SymbolBound is the symbol ceiling of stored pairs.
type SymbolBound struct{}

func (SymbolBound) MaxBytes() uint32 { return MaxSymbolBytes }

// BlockNumber is the ledger index a price was published at.
type BlockNumber = uint32

const maxBlockNumber BlockNumber = math.MaxUint32

type (
	Record = price.Record[BlockNumber]
	Key    = currency.BoundedPair[SymbolBound, string, string]
)

var (
	_ provider.PriceProvider[BlockNumber]              = (*Keeper)(nil)
	_ provider.BoundedSource[SymbolBound, BlockNumber] = (*Keeper)(nil)
)

// Keeper stores every published record and keeps the latest record of
// recently used pairs in memory.
type Keeper struct {
	db     database.DB
	logger *zap.Logger

	// mu orders cache fills against writes so a lookup never caches a
	// record older than one written concurrently.
	mu     sync.RWMutex
	latest *lru.Cache[Key, Record]

	keyed  *provider.KeyedProvider[SymbolBound, BlockNumber]
	static *provider.StaticPriceProvider[BlockNumber]
}

// NewKeeper creates a keeper over db. A zero cache size disables the
// latest-price cache. A configured bound pair is validated against
// SymbolBound here.
func NewKeeper(db database.DB, cfg config.FeedConfig, logger *zap.Logger) (*Keeper, error) {
	initMetrics()

	k := &Keeper{
		db:     db,
		logger: logging.OrNop(logger).Named("feed"),
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[Key, Record](cfg.CacheSize)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to create price cache")
		}
		k.latest = cache
	}
	k.keyed = provider.NewKeyedProvider[SymbolBound, BlockNumber](k)

	if cfg.BoundPair != "" {
		fixed, err := currency.ParseFixedPair[SymbolBound](cfg.BoundPair)
		if err != nil {
			return nil, pkgerrors.Wrap(dispatchError(err), "invalid bound_pair")
		}
		k.static = provider.NewStaticPriceProvider[BlockNumber](k, fixed)
		k.logger.Info("serving bound pair", zap.Stringer("pair", fixed))
	}
	return k, nil
}

// Static returns the provider of the configured bound pair.
func (k *Keeper) Static() (*provider.StaticPriceProvider[BlockNumber], error) {
	if k.static == nil {
		return nil, ErrNoBoundPair
	}
	return k.static, nil
}

// PairPrice returns the latest record of pair, or nil if none was ever
// published. Pairs that do not fit SymbolBound fail with
// ErrInvalidArgument.
func (k *Keeper) PairPrice(ctx context.Context, pair currency.Pair[string, string]) (*Record, error) {
	rec, err := k.keyed.PairPrice(ctx, pair)
	err = dispatchError(err)
	observeLookup("pair_price", rec, err)
	return rec, err
}

// LatestPrice returns the record of key with the highest block number.
func (k *Keeper) LatestPrice(ctx context.Context, key Key) (*Record, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.latest != nil {
		if rec, ok := k.latest.Get(key); ok {
			cacheHits.Inc()
			return &rec, nil
		}
		cacheMisses.Inc()
	}

	rec, err := k.priceUpTo(ctx, key, maxBlockNumber)
	if err != nil || rec == nil {
		return rec, err
	}
	if k.latest != nil {
		k.latest.Add(key, *rec)
	}
	return rec, nil
}

// PriceAt returns the newest record of pair published at or before
// block at, or nil if there is none.
func (k *Keeper) PriceAt(ctx context.Context, pair currency.Pair[string, string], at BlockNumber) (*Record, error) {
	key, err := currency.ToBounded[SymbolBound](pair)
	if err != nil {
		err = dispatchError(err)
		observeLookup("price_at", nil, err)
		return nil, err
	}
	rec, err := k.priceUpTo(ctx, key, at)
	observeLookup("price_at", rec, err)
	return rec, err
}

func (k *Keeper) priceUpTo(ctx context.Context, key Key, at BlockNumber) (*Record, error) {
	recs, err := k.scanUpTo(ctx, key, at, 1)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

// History returns up to limit records of pair at or before block at,
// newest first.
func (k *Keeper) History(ctx context.Context, pair currency.Pair[string, string], at BlockNumber, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, errors.WithContext(ErrInvalidArgument, "limit must be positive")
	}
	key, err := currency.ToBounded[SymbolBound](pair)
	if err != nil {
		return nil, dispatchError(err)
	}
	return k.scanUpTo(ctx, key, at, limit)
}

func (k *Keeper) scanUpTo(ctx context.Context, key Key, at BlockNumber, limit int) ([]Record, error) {
	start, end, err := rangeUpTo(key, at)
	if err != nil {
		return nil, err
	}
	it, err := k.db.ReverseIterator(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to scan prices of %s", key)
	}
	defer it.Close()

	var recs []Record
	for len(recs) < limit && it.Next() {
		var rec Record
		if err := binarycodec.Decode(it.Value(), &rec); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to decode price of %s", key)
		}
		recs = append(recs, rec)
	}
	if err := it.Error(); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to scan prices of %s", key)
	}
	return recs, nil
}

// SetPrice stores a record for pair at blockNumber, replacing any record
// already stored at that block.
func (k *Keeper) SetPrice(
	ctx context.Context,
	pair currency.Pair[string, string],
	amount uint64,
	decimals uint8,
	blockNumber BlockNumber,
) (Record, error) {
	key, err := currency.ToBounded[SymbolBound](pair)
	if err != nil {
		return Record{}, dispatchError(err)
	}

	rec := price.NewRecord(amount, decimals, blockNumber)
	value, err := binarycodec.Encode(rec)
	if err != nil {
		return Record{}, pkgerrors.Wrap(err, "failed to encode price")
	}
	dbKey, err := recordKey(key, blockNumber)
	if err != nil {
		return Record{}, pkgerrors.Wrap(err, "failed to encode price key")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.db.Write(ctx, dbKey, value); err != nil {
		return Record{}, pkgerrors.Wrapf(err, "failed to store price of %s", key)
	}
	if k.latest != nil {
		if cur, ok := k.latest.Peek(key); ok && cur.BlockNumber() <= blockNumber {
			k.latest.Add(key, rec)
		}
	}
	publications.Inc()

	k.logger.Debug("price set",
		zap.Stringer("pair", key),
		zap.Uint64("amount", amount),
		zap.Uint8("decimals", decimals),
		zap.Uint32("block_number", blockNumber),
	)
	return rec, nil
}

// Pairs lists every pair with at least one stored record, in key order.
func (k *Keeper) Pairs(ctx context.Context) ([]Key, error) {
	start := []byte{priceKeyPrefix}
	it, err := k.db.Iterator(ctx, start, database.PrefixEnd(start))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to scan pairs")
	}
	defer it.Close()

	var pairs []Key
	for it.Next() {
		key, _, err := parseRecordKey(it.Key())
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to parse price key %x", it.Key())
		}
		if n := len(pairs); n > 0 && pairs[n-1] == key {
			continue
		}
		pairs = append(pairs, key)
	}
	if err := it.Error(); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to scan pairs")
	}
	return pairs, nil
}
