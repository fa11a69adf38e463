package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/heightcompare/pkg/cache"
	"github.com/matzehuels/heightcompare/pkg/catalog"
	"github.com/matzehuels/heightcompare/pkg/catalog/mongo"
	"github.com/matzehuels/heightcompare/pkg/catalog/seed"
	"github.com/matzehuels/heightcompare/pkg/catalog/sqlite"
	"github.com/matzehuels/heightcompare/pkg/config"
	"github.com/matzehuels/heightcompare/pkg/errors"
	"github.com/matzehuels/heightcompare/pkg/integrations/supabase"
	"github.com/matzehuels/heightcompare/pkg/pipeline"
	"github.com/matzehuels/heightcompare/pkg/session"
)

// closeTimeout bounds backend shutdown.
const closeTimeout = 5 * time.Second

// openCache returns the configured cache. noCache forces a null cache.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	backend := c.Config.Cache.Backend
	if noCache {
		backend = config.StoreNone
	}
	switch backend {
	case config.StoreNone:
		return cache.NewNullCache(), nil
	case config.StoreMemory:
		return cache.NewMemoryCache(), nil
	case config.StoreRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: c.Config.Cache.RedisAddr, Prefix: appName + ":"})
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return nil, fmt.Errorf("get cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	}
}

// newRunner creates a pipeline runner over the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// catalogHandle is an open catalog plus whatever must be closed with it.
type catalogHandle struct {
	*catalog.Memo
	closers []func() error
}

func (h *catalogHandle) Close() error {
	var first error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openCatalog opens the configured catalog backend behind a memo. refresh
// drops memoized and cached responses.
func (c *CLI) openCatalog(ctx context.Context, refresh bool) (*catalogHandle, error) {
	cc, err := c.openCache(ctx, false)
	if err != nil {
		return nil, err
	}
	h := &catalogHandle{closers: []func() error{cc.Close}}

	src, err := c.openSource(ctx, c.Config.Catalog.Backend, cc, refresh, h)
	if err != nil {
		_ = h.Close()
		return nil, err
	}

	h.Memo = catalog.NewMemo(src, c.Config.Catalog.Backend,
		catalog.WithTTL(c.Config.Catalog.TTL),
		catalog.WithStore(cc, cache.NewDefaultKeyer()),
	)
	if refresh {
		if err := h.Invalidate(ctx); err != nil {
			c.Logger.Warn("invalidate catalog memo", "error", err)
		}
	}
	c.Logger.Debug("opened catalog", "backend", h.Backend())
	return h, nil
}

func (c *CLI) openSource(ctx context.Context, backend string, cc cache.Cache, refresh bool, h *catalogHandle) (catalog.Source, error) {
	switch backend {
	case config.BackendSupabase:
		if c.Config.Supabase.URL == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "supabase.url is not configured (set it in the config file or SUPABASE_URL)")
		}
		return supabase.NewClient(supabase.Config{
			URL:      c.Config.Supabase.URL,
			Key:      c.Config.Supabase.Key,
			Rate:     c.Config.Supabase.Rate,
			CacheTTL: c.Config.Cache.TTL,
			Refresh:  refresh,
			Logger:   c.Logger,
		}, cc), nil
	case config.BackendSQLite:
		st, err := sqlite.Open(config.ExpandHome(c.Config.SQLite.Path))
		if err != nil {
			return nil, err
		}
		h.closers = append(h.closers, st.Close)
		return st, nil
	case config.BackendMongo:
		st, err := mongo.Connect(ctx, c.Config.Mongo.URI, c.Config.Mongo.Database)
		if err != nil {
			return nil, err
		}
		h.closers = append(h.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			return st.Close(ctx)
		})
		return st, nil
	case config.BackendSeed:
		return seed.Load(config.ExpandHome(c.Config.Seed.Path))
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown catalog backend %q", backend)
}

// openBoards returns the configured board store.
func (c *CLI) openBoards(ctx context.Context) (session.Store, error) {
	switch c.Config.Boards.Backend {
	case config.StoreMemory:
		return session.NewMemoryStore(nil), nil
	case config.StoreRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: c.Config.Cache.RedisAddr})
		if err != nil {
			return nil, err
		}
		return session.NewRedisStore(rc.Client()), nil
	default:
		return session.NewFileStore(config.ExpandHome(c.Config.Boards.Dir))
	}
}
