package composer

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Fetcher reads one day's stored content. *client.Client satisfies it.
type Fetcher interface {
	Entry(ctx context.Context, date string) (string, error)
}

const defaultConcurrency = 8

type Loader struct {
	fetch Fetcher
	cache *Cache
	log   *log.Logger
	limit int
	group singleflight.Group
}

func NewLoader(fetch Fetcher, cache *Cache, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{fetch: fetch, cache: cache, log: logger, limit: defaultConcurrency}
}

// Cache returns the cache the loader fills.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Load returns one key, from the cache when possible.
func (l *Loader) Load(ctx context.Context, key string) string {
	return l.LoadMany(ctx, []string{key})[key]
}

// Fetch is Load for callers that must not mistake a failed read for an
// empty day, such as a read-modify-write of an entry.
func (l *Loader) Fetch(ctx context.Context, key string) (string, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}
	return l.fetchOne(ctx, key)
}

// fetchOne reads key from the server and fills the cache. In-flight reads
// are shared per cache generation, so a read started before Clear is never
// handed to a caller that came after it.
func (l *Loader) fetchOne(ctx context.Context, key string) (string, error) {
	gen := l.cache.generation()
	v, err, _ := l.group.Do(strconv.FormatUint(gen, 10)+"/"+key, func() (any, error) {
		content, err := l.fetch.Entry(ctx, key)
		if err != nil {
			return "", err
		}
		return l.cache.fill(gen, key, content), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// LoadMany returns content for every key once all fetches are done.
// Duplicate keys are fetched once and concurrent callers share in-flight
// requests. A key whose fetch fails maps to "" and is not cached, so the
// next call retries it.
func (l *Loader) LoadMany(ctx context.Context, keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	var missing []string
	for _, k := range keys {
		if _, seen := out[k]; seen {
			continue
		}
		if v, ok := l.cache.Get(k); ok {
			out[k] = v
			continue
		}
		out[k] = ""
		missing = append(missing, k)
	}
	if len(missing) == 0 {
		return out
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(l.limit)
	for _, key := range missing {
		g.Go(func() error {
			v, err := l.fetchOne(ctx, key)
			if err != nil {
				l.log.Warn("load entry failed", "date", key, "err", err)
				return nil
			}
			mu.Lock()
			out[key] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
