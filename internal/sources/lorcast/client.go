// Package lorcast implements the remote card metadata source backed by the
// public Lorcast API.
package lorcast

import (
	"context"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/agentstation/inkwell/internal/transport"
	"github.com/agentstation/inkwell/pkg/catalogs"
	"github.com/agentstation/inkwell/pkg/constants"
	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/logging"
)

// SourceName identifies Lorcast in errors and logs.
const SourceName = "lorcast"

// Client fetches sets and cards from Lorcast. It implements refresh.Fetcher
// and inkwell.SetCounter.
type Client struct {
	baseURL     string
	transport   *transport.Client
	sets        SetLookup
	concurrency int64
	cacheTTL    time.Duration
	cache       *lru.Cache
	now         func() time.Time
}

// cachedCards is one per-set response kept in the LRU cache.
type cachedCards struct {
	cards     []Card
	fetchedAt time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithConcurrency sets how many sets are fetched in parallel.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = int64(n)
		}
	}
}

// WithCacheTTL sets how long a per-set response is reused. Zero disables
// reuse.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = d
	}
}

// WithClock overrides the clock used for price timestamps and cache expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Lorcast client. sets maps Lorcast set codes to catalog sets
// and may be nil, in which case every set is treated as unknown.
func New(sets SetLookup, opts ...Option) (*Client, error) {
	cache, err := lru.New(constants.RemoteCacheSize)
	if err != nil {
		return nil, errors.NewConfigError("lorcast", "cannot create response cache", err)
	}
	c := &Client{
		baseURL:     constants.LorcastBaseURL,
		transport:   transport.New(SourceName),
		sets:        sets,
		concurrency: constants.DefaultRemoteConcurrency,
		cacheTTL:    constants.RemoteCacheTTL,
		cache:       cache,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, errors.NewConfigError("lorcast", "invalid base URL", err)
	}
	return c, nil
}

// Sets lists every set Lorcast knows.
func (c *Client) Sets(ctx context.Context) ([]Set, error) {
	var resp setsResponse
	if err := c.transport.GetJSON(ctx, c.baseURL+"/sets", &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// SetCards lists the cards of one set. Responses are cached per set code.
func (c *Client) SetCards(ctx context.Context, code string) ([]Card, error) {
	cards, _, err := c.setCards(ctx, code)
	return cards, err
}

// setCards also returns when the cards were downloaded, which is earlier than
// now for a cached response.
func (c *Client) setCards(ctx context.Context, code string) ([]Card, time.Time, error) {
	if v, ok := c.cache.Get(code); ok {
		entry := v.(cachedCards)
		if c.now().Sub(entry.fetchedAt) < c.cacheTTL {
			return entry.cards, entry.fetchedAt, nil
		}
		c.cache.Remove(code)
	}

	var cards []Card
	endpoint := c.baseURL + "/sets/" + url.PathEscape(code) + "/cards"
	if err := c.transport.GetJSON(ctx, endpoint, &cards); err != nil {
		return nil, time.Time{}, err
	}
	fetchedAt := c.now()
	c.cache.Add(code, cachedCards{cards: cards, fetchedAt: fetchedAt})
	return cards, fetchedAt, nil
}

// Purge drops every cached response.
func (c *Client) Purge() {
	c.cache.Purge()
}

// Fetch downloads every set's cards and converts them to remote update
// records in set listing order. Any failed set fails the whole fetch.
func (c *Client) Fetch(ctx context.Context) ([]catalogs.RemoteCard, error) {
	logger := logging.FromContext(ctx)

	sets, err := c.Sets(ctx)
	if err != nil {
		return nil, err
	}

	perSet, err := fanOut(ctx, c.concurrency, sets, func(ctx context.Context, s Set) ([]catalogs.RemoteCard, error) {
		cards, fetchedAt, err := c.setCards(ctx, s.Code)
		if err != nil {
			return nil, err
		}
		out := make([]catalogs.RemoteCard, 0, len(cards))
		skipped := 0
		for _, card := range cards {
			r, ok := convertCard(card, c.sets, fetchedAt)
			if !ok {
				skipped++
				continue
			}
			out = append(out, r)
		}
		if skipped > 0 {
			logger.Debug().Str("set", s.Code).Int("skipped", skipped).Msg("Skipped cards without collector number")
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	var records []catalogs.RemoteCard
	for _, rs := range perSet {
		records = append(records, rs...)
	}
	logger.Debug().Int("sets", len(sets)).Int("cards", len(records)).Msg("Fetched remote cards")
	return records, nil
}

// SetCounts reports how many cards Lorcast lists for each set.
func (c *Client) SetCounts(ctx context.Context) ([]catalogs.RemoteSetCount, error) {
	sets, err := c.Sets(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := fanOut(ctx, c.concurrency, sets, func(ctx context.Context, s Set) (int, error) {
		cards, err := c.SetCards(ctx, s.Code)
		return len(cards), err
	})
	if err != nil {
		return nil, err
	}

	out := make([]catalogs.RemoteSetCount, len(sets))
	for i, s := range sets {
		out[i] = catalogs.RemoteSetCount{Code: s.Code, Name: s.Name, Cards: counts[i]}
	}
	return out, nil
}
