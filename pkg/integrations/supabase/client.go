// Package supabase reads the hosted character store through its PostgREST
// API and exposes it as a [catalog.Source].
//
// Two tables are read: characters (heights in meters, category IDs in an
// integer array) and categories. Rows are converted with
// [catalog.FromRecord], so heights come back in whole centimeters.
//
//	client := supabase.NewClient(supabase.Config{URL: url, Key: anonKey}, httpCache)
//	memo := catalog.NewMemo(client, "supabase")
//
// [catalog.Source]: github.com/matzehuels/heightcompare/pkg/catalog.Source
// [catalog.FromRecord]: github.com/matzehuels/heightcompare/pkg/catalog.FromRecord
package supabase

import (
	"context"
	stderrors "errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heightcompare/pkg/cache"
	"github.com/matzehuels/heightcompare/pkg/catalog"
	"github.com/matzehuels/heightcompare/pkg/errors"
	"github.com/matzehuels/heightcompare/pkg/integrations"
)

const (
	charactersPath = "/rest/v1/characters"
	categoriesPath = "/rest/v1/categories"

	// DefaultSearchLimit caps Search results when no limit is given.
	DefaultSearchLimit = 20
)

// Config locates the store.
type Config struct {
	URL      string        // project URL, e.g. https://abc.supabase.co
	Key      string        // anon key, sent as apikey and bearer token
	Rate     float64       // requests per second, 0 for unlimited
	CacheTTL time.Duration // HTTP response cache lifetime
	Refresh  bool          // bypass cached responses
	Logger   *log.Logger
}

// Client is a [catalog.Source] backed by PostgREST.
type Client struct {
	*integrations.Client
	baseURL string
	refresh bool

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewClient creates a client using c for response caching. c may be nil.
func NewClient(cfg Config, c cache.Cache, opts ...integrations.Option) *Client {
	headers := map[string]string{
		"Accept": "application/json",
	}
	if cfg.Key != "" {
		headers["apikey"] = cfg.Key
		headers["Authorization"] = "Bearer " + cfg.Key
	}
	base := []integrations.Option{integrations.WithRateLimit(cfg.Rate, 5)}
	if cfg.Logger != nil {
		base = append(base, integrations.WithLogger(cfg.Logger))
	}
	return &Client{
		Client:  integrations.NewClient(c, "supabase", cfg.CacheTTL, headers, append(base, opts...)...),
		baseURL: cfg.URL,
		refresh: cfg.Refresh,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithRand makes Random deterministic for tests.
func (c *Client) WithRand(r *rand.Rand) *Client {
	c.mu.Lock()
	c.rng = r
	c.mu.Unlock()
	return c
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := integrations.JoinURL(c.baseURL, path)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// records runs a characters query, caching the response under its query string.
func (c *Client) records(ctx context.Context, q url.Values) ([]catalog.Record, error) {
	if q.Get("select") == "" {
		q.Set("select", "*")
	}
	u := c.endpoint(charactersPath, q)
	var rows []catalog.Record
	err := c.Cached(ctx, "characters?"+q.Encode(), c.refresh, &rows, func() error {
		return c.Get(ctx, u, &rows)
	})
	if err != nil {
		return nil, wrap(err, "query characters")
	}
	return rows, nil
}

func (c *Client) characters(ctx context.Context, q url.Values) ([]catalog.Character, error) {
	rows, err := c.records(ctx, q)
	if err != nil {
		return nil, err
	}
	cats, err := c.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FromRecords(rows, cats), nil
}

// Characters returns every character ordered by name.
func (c *Client) Characters(ctx context.Context) ([]catalog.Character, error) {
	return c.characters(ctx, url.Values{"order": {"name"}})
}

// Categories returns every category ordered by ID.
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	q := url.Values{"select": {"*"}, "order": {"id"}}
	u := c.endpoint(categoriesPath, q)
	var rows []catalog.CategoryRecord
	err := c.Cached(ctx, "categories?"+q.Encode(), c.refresh, &rows, func() error {
		return c.Get(ctx, u, &rows)
	})
	if err != nil {
		return nil, wrap(err, "query categories")
	}
	cats := make([]catalog.Category, len(rows))
	for i, r := range rows {
		cats[i] = catalog.FromCategoryRecord(r)
	}
	return cats, nil
}

// ByCategory returns the characters whose cat_ids contain id.
func (c *Client) ByCategory(ctx context.Context, id int) ([]catalog.Character, error) {
	return c.characters(ctx, url.Values{
		"cat_ids": {fmt.Sprintf("cs.{%d}", id)},
		"order":   {"name"},
	})
}

// Search matches names case-insensitively. A non-positive limit uses
// [DefaultSearchLimit].
func (c *Client) Search(ctx context.Context, q string, limit int) ([]catalog.Character, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return c.characters(ctx, url.Values{
		"name":  {"ilike.*" + q + "*"},
		"order": {"name"},
		"limit": {strconv.Itoa(limit)},
	})
}

// Random returns n distinct characters drawn uniformly.
func (c *Client) Random(ctx context.Context, n int) ([]catalog.Character, error) {
	all, err := c.Characters(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return catalog.Sample(c.rng, all, n), nil
}

// ByID returns one character or a CHARACTER_NOT_FOUND error.
func (c *Client) ByID(ctx context.Context, id string) (catalog.Character, error) {
	chars, err := c.characters(ctx, url.Values{
		"id":    {"eq." + id},
		"limit": {"1"},
	})
	if err != nil {
		return catalog.Character{}, err
	}
	if len(chars) == 0 {
		return catalog.Character{}, errors.New(errors.ErrCodeCharacterNotFound, "character %q not found", id)
	}
	return chars[0], nil
}

// Stats summarizes the whole store.
func (c *Client) Stats(ctx context.Context) (catalog.Stats, error) {
	all, err := c.Characters(ctx)
	if err != nil {
		return catalog.Stats{}, err
	}
	return catalog.ComputeStats(all), nil
}

// wrap maps transport errors onto error codes.
func wrap(err error, op string) error {
	switch {
	case errors.GetCode(err) != "":
		return err
	case isErr(err, integrations.ErrUnauthorized):
		return errors.Wrap(errors.ErrCodeUnauthorized, err, "%s", op)
	case isErr(err, integrations.ErrRateLimited):
		return errors.Wrap(errors.ErrCodeRateLimited, err, "%s", op)
	case isErr(err, integrations.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, "%s", op)
	case isErr(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s", op)
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "%s", op)
	}
}

func isErr(err, target error) bool { return stderrors.Is(err, target) }

var _ catalog.Source = (*Client)(nil)
