package client

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jaspervdmeent/ainternet-go/pkg/ains"
	"github.com/jaspervdmeent/ainternet-go/pkg/ipoll"
)

// DefaultHub is the public AInternet hub — anyone can connect.
const DefaultHub = "https://brein.jaspervandemeent.nl"

// DefaultTimeout applies to every hub request unless overridden.
const DefaultTimeout = 30 * time.Second

// Client is the AInternet SDK entry point. It owns one AINS resolver and one
// I-Poll messenger bound to the same hub URL, local identity, and timeout,
// and delegates every call to one of the two.
type Client struct {
	hubURL  string
	agentID string

	// AINS and IPoll are exported for callers that need the sub-client
	// surface directly (e.g. ains.ResolveFresh, ipoll.NewSessionID).
	AINS  *ains.Client
	IPoll *ipoll.Client
}

// Option is a functional option for configuring a Client.
type Option func(*config) error

type config struct {
	hubURL     string
	agentID    string
	timeout    time.Duration
	httpClient *http.Client
	log        *zap.Logger
}

// WithHub sets the hub base URL (default DefaultHub).
func WithHub(hubURL string) Option {
	return func(c *config) error {
		c.hubURL = hubURL
		return nil
	}
}

// WithAgentID binds the local agent identity used for messaging. Without it
// the client is read-only: resolution and discovery work, send/receive fail.
func WithAgentID(agentID string) Option {
	return func(c *config) error {
		c.agentID = agentID
		return nil
	}
}

// WithTimeout sets the uniform per-request timeout (default 30s).
func WithTimeout(d time.Duration) Option {
	return func(c *config) error {
		c.timeout = d
		return nil
	}
}

// WithHTTPClient sets a custom http.Client shared by both sub-clients,
// overriding WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) error {
		c.httpClient = hc
		return nil
	}
}

// WithLogger enables debug logging in both sub-clients. The default is a
// no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) error {
		c.log = l
		return nil
	}
}

// New creates an AInternet client.
//
//	ai, err := client.New(client.WithAgentID("my_bot"))
func New(opts ...Option) (*Client, error) {
	cfg := config{
		hubURL:  DefaultHub,
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, err
		}
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	resolver, err := ains.New(cfg.hubURL, ains.WithHTTPClient(hc), ains.WithLogger(cfg.log))
	if err != nil {
		return nil, err
	}
	messenger, err := ipoll.New(cfg.hubURL, cfg.agentID, ipoll.WithHTTPClient(hc), ipoll.WithLogger(cfg.log))
	if err != nil {
		return nil, err
	}

	return &Client{
		hubURL:  cfg.hubURL,
		agentID: messenger.AgentID(),
		AINS:    resolver,
		IPoll:   messenger,
	}, nil
}

// Connect is a shorthand for New(WithAgentID(agentID)) against the default
// public hub, for quick scripts.
func Connect(agentID string) *Client {
	c, _ := New(WithAgentID(agentID)) // no option above can fail
	return c
}

// Hub returns the hub base URL this client is bound to.
func (c *Client) Hub() string { return c.hubURL }

// AgentID returns the bound local identity, or "" for a read-only client.
func (c *Client) AgentID() string { return c.agentID }

// ── Discovery (AINS) ─────────────────────────────────────────────────────

// Resolve maps a .aint domain to its agent record, nil when unresolvable.
func (c *Client) Resolve(ctx context.Context, domain string) *ains.Record {
	return c.AINS.Resolve(ctx, domain)
}

// Discover searches the directory by capability and minimum trust score.
func (c *Client) Discover(ctx context.Context, capability string, minTrust float64) []ains.Record {
	return c.AINS.Search(ctx, capability, minTrust)
}

// ListAgents returns the full directory.
func (c *Client) ListAgents(ctx context.Context) []ains.Record {
	return c.AINS.List(ctx)
}

// ── Messaging (I-Poll) ───────────────────────────────────────────────────

// Send pushes a message to another agent.
func (c *Client) Send(ctx context.Context, toAgent, content string, opts ...ipoll.SendOption) (*ipoll.Message, error) {
	return c.IPoll.Push(ctx, toAgent, content, opts...)
}

// Receive pulls pending messages for the bound identity.
func (c *Client) Receive(ctx context.Context, markRead bool) ([]ipoll.Message, error) {
	return c.IPoll.Pull(ctx, markRead)
}

// Reply responds to a received message.
func (c *Client) Reply(ctx context.Context, pollID, response string) (map[string]any, error) {
	return c.IPoll.Respond(ctx, pollID, response)
}

// Ask sends a PULL-type question to an agent.
func (c *Client) Ask(ctx context.Context, agent, question string, opts ...ipoll.SendOption) (*ipoll.Message, error) {
	return c.IPoll.Request(ctx, agent, question, opts...)
}

// Delegate sends a TASK-type delegation to an agent.
func (c *Client) Delegate(ctx context.Context, agent, task string, opts ...ipoll.SendOption) (*ipoll.Message, error) {
	return c.IPoll.Task(ctx, agent, task, opts...)
}

// SyncWith sends a SYNC-type context exchange to an agent.
func (c *Client) SyncWith(ctx context.Context, agent, sharedContext string, opts ...ipoll.SendOption) (*ipoll.Message, error) {
	return c.IPoll.Sync(ctx, agent, sharedContext, opts...)
}

// Acknowledge responds to a message with an acknowledgment; an empty message
// defaults to "Acknowledged".
func (c *Client) Acknowledge(ctx context.Context, pollID, message string) (map[string]any, error) {
	return c.IPoll.Ack(ctx, pollID, message)
}

// ── Registration & verification ──────────────────────────────────────────

// Register registers the bound identity on the AInternet.
func (c *Client) Register(ctx context.Context, description string, capabilities []string) (map[string]any, error) {
	return c.IPoll.Register(ctx, description, capabilities)
}

// RequestVerification starts the sandbox-to-verified challenge exchange.
func (c *Client) RequestVerification(ctx context.Context, description string, capabilities []string, contact string) (map[string]any, error) {
	return c.IPoll.RequestVerification(ctx, description, capabilities, contact)
}

// SubmitVerification answers a verification challenge.
func (c *Client) SubmitVerification(ctx context.Context, challengeID, answer string) (map[string]any, error) {
	return c.IPoll.SubmitVerification(ctx, challengeID, answer)
}

// ── Status & history ─────────────────────────────────────────────────────

// Status returns hub-wide status.
func (c *Client) Status(ctx context.Context) (map[string]any, error) {
	return c.IPoll.Status(ctx)
}

// History retrieves message history.
func (c *Client) History(ctx context.Context, opts ...ipoll.HistoryOption) ([]ipoll.Message, error) {
	return c.IPoll.History(ctx, opts...)
}
