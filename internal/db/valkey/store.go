// Package valkey implements the db.Store facade on Valkey with the
// valkey-search and valkey-json modules. Valkey shares the Redis wire
// protocol, so the Store embeds the Redis driver and overrides only the
// operations where valkey-search diverges: bare FT.SEARCH without a KNN
// clause is not supported.
package valkey

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/propdex/internal/db"
	"github.com/kailas-cloud/propdex/internal/db/redis"
)

// Compile-time check that Store satisfies the facade.
var _ db.Store = (*Store)(nil)

// Config holds Valkey connection parameters.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store implements db.Store for Valkey.
type Store struct {
	*redis.Store
}

// NewStore connects to Valkey and returns a Store.
func NewStore(cfg Config) (*Store, error) {
	inner, err := redis.NewStore(redis.Config(cfg))
	if err != nil {
		return nil, err
	}
	return &Store{Store: inner}, nil
}

// SearchList performs paginated search. Valkey-search does not support bare
// FT.SEARCH without KNN, so query="*" falls back to SCAN + JSON.GET.
func (s *Store) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if query == "*" {
		return s.scanList(ctx, index, offset, limit, fields)
	}
	return s.Store.SearchList(ctx, index, query, offset, limit, fields)
}

// SearchCount returns document count. Falls back to SCAN for query="*"
// because valkey-search does not support bare FT.SEARCH without KNN.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	if query == "*" {
		return s.scanCount(ctx, index)
	}
	return s.Store.SearchCount(ctx, index, query)
}

// scanList implements listing via SCAN + JSON.GET for valkey-search
// which does not support bare FT.SEARCH without KNN.
func (s *Store) scanList(
	ctx context.Context, index string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	prefix := indexToKeyPrefix(index)
	keys, err := s.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan for list: %w", err)
	}

	sort.Strings(keys) // deterministic ordering

	total := len(keys)
	if offset >= total {
		return &db.SearchResult{Total: total}, nil
	}

	end := offset + limit
	if end > total {
		end = total
	}
	pageKeys := keys[offset:end]

	entries := make([]db.SearchEntry, 0, len(pageKeys))
	for _, key := range pageKeys {
		paths := fields
		if len(paths) == 0 {
			paths = []string{"$"}
		}
		raw, err := s.JSONGet(ctx, key, paths...)
		if err != nil {
			continue // key may have been deleted between SCAN and GET
		}
		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: map[string]string{"$": string(raw)},
		})
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

func (s *Store) scanCount(ctx context.Context, index string) (int, error) {
	prefix := indexToKeyPrefix(index)
	keys, err := s.Scan(ctx, prefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan for count: %w", err)
	}
	return len(keys), nil
}

// indexToKeyPrefix converts index name to a SCAN prefix.
// "propdex:property:idx" -> "propdex:property:"
func indexToKeyPrefix(index string) string {
	if strings.HasSuffix(index, ":idx") {
		return index[:len(index)-3]
	}
	return index + ":"
}
