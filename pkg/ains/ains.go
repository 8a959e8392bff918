// Package ains implements the AINS (AInternet Name Service) client:
// DNS for AI agents. It resolves .aint domains to agent records, lists the
// full directory, and searches it by capability and trust score.
//
// Resolution results are cached in-memory per canonical domain for five
// minutes. All remote failure — timeout, connection error, non-2xx status,
// or an explicit not-found — is folded into a nil result: discovery code
// never has to distinguish "unreachable" from "unregistered".
package ains

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jaspervdmeent/ainternet-go/internal/hub"
	"github.com/jaspervdmeent/ainternet-go/pkg/aint"
)

// DefaultHub is the public AInternet hub.
const DefaultHub = "https://brein.jaspervandemeent.nl"

// DefaultTimeout applies to every hub request unless overridden.
const DefaultTimeout = 30 * time.Second

// cacheTTL is the freshness window for resolved records.
const cacheTTL = 300 * time.Second

// Client is the AINS resolver client.
type Client struct {
	doer       *hub.Doer
	httpClient *http.Client
	log        *zap.Logger
	cache      *domainCache
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithTimeout sets the per-request timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.httpClient.Timeout = d
		return nil
	}
}

// WithHTTPClient sets a custom http.Client, overriding WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithLogger enables debug logging. The default is a no-op logger; the
// client never logs unless one is provided.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// New creates an AINS client for hubURL. An empty hubURL selects DefaultHub.
func New(hubURL string, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zap.NewNop(),
		cache:      newDomainCache(cacheTTL),
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	if hubURL == "" {
		hubURL = DefaultHub
	}
	c.doer = hub.New(hubURL, c.httpClient)
	return c, nil
}

// Resolve maps a .aint domain (with or without suffix, any casing) to its
// agent record. A cached record is returned without a network call while it
// is still within the freshness window. Returns nil when the domain is not
// registered or the hub cannot be reached.
func (c *Client) Resolve(ctx context.Context, name string) *Record {
	return c.resolve(ctx, name, true)
}

// ResolveFresh is Resolve with the cache bypassed for the read. The fresh
// result still overwrites the cache entry.
func (c *Client) ResolveFresh(ctx context.Context, name string) *Record {
	return c.resolve(ctx, name, false)
}

func (c *Client) resolve(ctx context.Context, name string, useCache bool) *Record {
	domain := aint.Normalize(name)
	agentID := aint.AgentID(domain)

	if useCache {
		if rec, ok := c.cache.get(domain); ok {
			c.log.Debug("ains cache hit", zap.String("domain", domain))
			return rec
		}
	}

	body, err := c.doer.Get(ctx, "/api/ains/resolve/"+agentID, nil)
	if err != nil {
		c.log.Debug("ains resolve failed", zap.String("domain", domain), zap.Error(err))
		return nil
	}

	rec, err := decodeResolve(domain, agentID, body)
	if err != nil || rec == nil {
		return nil
	}

	c.cache.set(domain, *rec)
	return rec
}

// List fetches the full .aint directory, ordered by domain name.
// Returns an empty slice on any transport failure.
func (c *Client) List(ctx context.Context) []Record {
	body, err := c.doer.Get(ctx, "/api/ains/list", nil)
	if err != nil {
		c.log.Debug("ains list failed", zap.Error(err))
		return nil
	}

	var envelope struct {
		Domains map[string]recordWire `json:"domains"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	records := make([]Record, 0, len(envelope.Domains))
	for domain, w := range envelope.Domains {
		records = append(records, fromWire(domain, aint.AgentID(domain), w))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Domain < records[j].Domain
	})
	return records
}

// Search filters the directory by capability (case-insensitive membership,
// skipped when empty) and by minimum trust score (applied only when
// minTrust > 0), sorted descending by trust score. Records with equal trust
// keep their List order.
func (c *Client) Search(ctx context.Context, capability string, minTrust float64) []Record {
	records := c.List(ctx)

	matched := make([]Record, 0, len(records))
	for _, r := range records {
		if capability != "" && !r.HasCapability(capability) {
			continue
		}
		if minTrust > 0 && r.TrustScore < minTrust {
			continue
		}
		matched = append(matched, r)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].TrustScore > matched[j].TrustScore
	})
	return matched
}

// IsRegistered reports whether name resolves to a record.
func (c *Client) IsRegistered(ctx context.Context, name string) bool {
	return c.Resolve(ctx, name) != nil
}

// ClearCache drops all cached records; subsequent resolves hit the network
// regardless of prior freshness.
func (c *Client) ClearCache() {
	c.cache.clear()
}
