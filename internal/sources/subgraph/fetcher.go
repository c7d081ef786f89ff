// Package subgraph fetches token lists from a GraphQL subgraph, one page
// at a time.
package subgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/nftrecon/internal/transport"
	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/errors"
	"github.com/agentstation/nftrecon/pkg/logging"
	"github.com/agentstation/nftrecon/pkg/tokens"
)

// Config describes one subgraph endpoint and how to page through it.
type Config struct {
	URL           string
	APIKey        string
	APIKeyHeader  string
	Entity        string
	Fields        Fields
	PageSize      int
	MaxRecords    int
	SortField     string
	SortDirection string
	Delay         time.Duration
}

// Fetcher pages through a subgraph and returns its tokens.
type Fetcher struct {
	name    string
	config  Config
	query   string
	client  *transport.Client
	limiter *rate.Limiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the transport client, mainly for tests.
func WithClient(client *transport.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// New validates config and creates a Fetcher. name identifies the side in
// logs and errors.
func New(name string, config Config, opts ...Option) (*Fetcher, error) {
	config = withDefaults(config)
	if err := validate(name, config); err != nil {
		return nil, err
	}

	f := &Fetcher{
		name:    name,
		config:  config,
		query:   buildQuery(config.Entity, config.Fields, config.SortField, config.SortDirection),
		client:  transport.New(transport.AuthenticatorFor(config.APIKey, config.APIKeyHeader)),
		limiter: newLimiter(config.Delay),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Name returns the side name this fetcher was created with.
func (f *Fetcher) Name() string {
	return f.name
}

// FetchTokens requests pages of PageSize tokens, advancing the skip offset,
// until a page comes back short or MaxRecords tokens have been collected.
// Pages are spaced at least Delay apart. Any failed page aborts the fetch
// and nothing collected so far is returned.
func (f *Fetcher) FetchTokens(ctx context.Context) ([]tokens.Token, error) {
	log := logging.FromContext(ctx)

	all := make([]tokens.Token, 0, min(f.config.MaxRecords, f.config.PageSize))
	for len(all) < f.config.MaxRecords {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, errors.NewFetchError(f.name, len(all), err)
		}

		first := min(f.config.PageSize, f.config.MaxRecords-len(all))
		page, err := f.fetchPage(ctx, first, len(all))
		if err != nil {
			return nil, errors.NewFetchError(f.name, len(all), err)
		}

		log.Debug().Int("skip", len(all)).Int("received", len(page)).Msg("Fetched page")
		all = append(all, page...)

		if len(page) < first {
			break
		}
	}

	log.Info().Int("count", len(all)).Msg("Fetched tokens")
	return all, nil
}

// fetchPage requests one page.
func (f *Fetcher) fetchPage(ctx context.Context, first, skip int) ([]tokens.Token, error) {
	var data map[string]json.RawMessage
	err := f.client.Query(ctx, f.config.URL, transport.GraphQLRequest{
		Query: f.query,
		Variables: map[string]any{
			"first": first,
			"skip":  skip,
		},
	}, &data)
	if err != nil {
		return nil, err
	}

	raw, ok := data[f.config.Entity]
	if !ok {
		return nil, fmt.Errorf("response has no %q field", f.config.Entity)
	}

	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.WrapParse("json", f.config.Entity, err)
	}

	page := make([]tokens.Token, len(records))
	for i, r := range records {
		page[i] = r.token()
	}
	return page, nil
}

func withDefaults(c Config) Config {
	if c.Entity == "" {
		c.Entity = constants.DefaultEntity
	}
	if c.Fields == (Fields{}) {
		c.Fields = DefaultFields()
	}
	if c.PageSize == 0 {
		c.PageSize = constants.DefaultPageSize
	}
	if c.MaxRecords == 0 {
		c.MaxRecords = constants.DefaultMaxRecords
	}
	if c.SortField == "" {
		c.SortField = constants.DefaultSortField
	}
	if c.SortDirection == "" {
		c.SortDirection = constants.DefaultSortDirection
	}
	return c
}

func validate(name string, c Config) error {
	if c.URL == "" {
		return errors.NewMissingConfigError(name+" subgraph", "url")
	}
	if c.PageSize < 0 || c.PageSize > constants.MaxPageSize {
		return errors.NewConfigError(name+" subgraph", fmt.Sprintf("page size must be between 1 and %d", constants.MaxPageSize), nil)
	}
	if c.MaxRecords < 0 {
		return errors.NewConfigError(name+" subgraph", "max records must be positive", nil)
	}
	if c.Delay < 0 {
		return errors.NewConfigError(name+" subgraph", "delay must not be negative", nil)
	}
	if !identifier.MatchString(c.Entity) || !identifier.MatchString(c.SortField) {
		return errors.NewConfigError(name+" subgraph", "entity and sort field must be GraphQL names", nil)
	}
	if c.SortDirection != "asc" && c.SortDirection != "desc" {
		return errors.NewConfigError(name+" subgraph", "sort direction must be asc or desc", nil)
	}
	if err := c.Fields.validate(); err != nil {
		return errors.NewConfigError(name+" subgraph", err.Error(), err)
	}
	return nil
}

// newLimiter spaces calls at least delay apart. The first call never waits.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
