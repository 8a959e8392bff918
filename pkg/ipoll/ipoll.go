// Package ipoll implements the I-Poll client: AI-to-AI messaging over HTTP.
//
// An I-Poll client is bound to one local agent identity. Sending, receiving,
// responding and registering require that identity and fail fast with
// ErrNoAgentID when it is unset; Status and History work without one.
// Unlike the AINS resolver, delivery failures are never swallowed — every
// transport error on a send or receive path surfaces to the caller.
package ipoll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jaspervdmeent/ainternet-go/internal/hub"
	"github.com/jaspervdmeent/ainternet-go/pkg/aint"
)

// DefaultHub is the public AInternet hub.
const DefaultHub = "https://brein.jaspervandemeent.nl"

// DefaultTimeout applies to every hub request unless overridden.
const DefaultTimeout = 30 * time.Second

// ErrNoAgentID is returned by identity-requiring operations when the client
// was created without a local agent identity. No request is attempted.
var ErrNoAgentID = errors.New("ipoll: agent id is required for this operation")

// Client is the I-Poll messaging client for one bound identity.
type Client struct {
	doer       *hub.Doer
	httpClient *http.Client
	agentID    string
	log        *zap.Logger
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

// WithLogger enables debug logging. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// New creates an I-Poll client for hubURL bound to agentID. An empty hubURL
// selects DefaultHub. An empty agentID creates a read-only client. The
// identity is normalized (suffix stripped, case-folded, trimmed).
func New(hubURL, agentID string, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	if hubURL == "" {
		hubURL = DefaultHub
	}
	if agentID != "" {
		c.agentID = aint.AgentID(agentID)
	}
	c.doer = hub.New(hubURL, c.httpClient)
	return c, nil
}

// AgentID returns the bound local identity, or "" for a read-only client.
func (c *Client) AgentID() string { return c.agentID }

// NewSessionID returns a fresh session id for grouping related messages.
func NewSessionID() string { return uuid.NewString() }

// ── Sending ──────────────────────────────────────────────────────────────

// sendConfig collects the optional parts of a Push.
type sendConfig struct {
	typ      PollType
	session  string
	metadata map[string]any
}

// SendOption customizes a single Push call.
type SendOption func(*sendConfig)

// WithType sets the poll type (default PUSH).
func WithType(t PollType) SendOption {
	return func(cfg *sendConfig) { cfg.typ = t }
}

// WithSession attaches a session id for grouping related messages.
func WithSession(id string) SendOption {
	return func(cfg *sendConfig) { cfg.session = id }
}

// WithMetadata attaches free-form metadata to the message.
func WithMetadata(m map[string]any) SendOption {
	return func(cfg *sendConfig) { cfg.metadata = m }
}

// Push sends a message to another agent. The recipient may be given as a
// bare id or a .aint domain. The returned Message combines the hub-assigned
// id and status with the locally known fields and a local send timestamp.
func (c *Client) Push(ctx context.Context, toAgent, content string, opts ...SendOption) (*Message, error) {
	if c.agentID == "" {
		return nil, ErrNoAgentID
	}

	cfg := sendConfig{typ: PollPush}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.metadata == nil {
		cfg.metadata = map[string]any{}
	}
	to := aint.AgentID(toAgent)

	payload := map[string]any{
		"from_agent": c.agentID,
		"to_agent":   to,
		"content":    content,
		"poll_type":  cfg.typ,
		"session_id": nil,
		"metadata":   cfg.metadata,
	}
	if cfg.session != "" {
		payload["session_id"] = cfg.session
	}

	body, err := c.doer.PostJSON(ctx, "/api/ipoll/push", payload)
	if err != nil {
		return nil, fmt.Errorf("push to %q: %w", to, err)
	}

	var ack struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &ack); err != nil {
		return nil, fmt.Errorf("decode push response: %w", err)
	}
	if ack.Status == "" {
		ack.Status = "pending"
	}

	c.log.Debug("ipoll push", zap.String("to", to), zap.String("type", string(cfg.typ)), zap.String("id", ack.ID))

	return &Message{
		ID:        ack.ID,
		FromAgent: c.agentID,
		ToAgent:   to,
		Content:   content,
		Type:      cfg.typ,
		Status:    ack.Status,
		SessionID: cfg.session,
		CreatedAt: time.Now().Format(time.RFC3339),
		Metadata:  cfg.metadata,
	}, nil
}

// Task sends a TASK message (delegation).
func (c *Client) Task(ctx context.Context, toAgent, task string, opts ...SendOption) (*Message, error) {
	return c.Push(ctx, toAgent, task, append(opts, WithType(PollTask))...)
}

// Request sends a PULL message (request for information).
func (c *Client) Request(ctx context.Context, toAgent, question string, opts ...SendOption) (*Message, error) {
	return c.Push(ctx, toAgent, question, append(opts, WithType(PollPull))...)
}

// Sync sends a SYNC message (context exchange).
func (c *Client) Sync(ctx context.Context, toAgent, sharedContext string, opts ...SendOption) (*Message, error) {
	return c.Push(ctx, toAgent, sharedContext, append(opts, WithType(PollSync))...)
}

// ── Receiving & responding ───────────────────────────────────────────────

// Pull retrieves pending messages for the bound identity. markRead tells the
// hub whether to mark the returned messages read.
func (c *Client) Pull(ctx context.Context, markRead bool) ([]Message, error) {
	if c.agentID == "" {
		return nil, ErrNoAgentID
	}

	query := url.Values{"mark_read": {strconv.FormatBool(markRead)}}
	body, err := c.doer.Get(ctx, "/api/ipoll/pull/"+c.agentID, query)
	if err != nil {
		return nil, fmt.Errorf("pull for %q: %w", c.agentID, err)
	}
	return decodePolls(body)
}

// Respond posts a response to the message with pollID. The hub's result is
// returned raw (it contains at least the original and response ids); its
// shape differs from a plain message, so it is not wrapped in Message.
func (c *Client) Respond(ctx context.Context, pollID, response string) (map[string]any, error) {
	if c.agentID == "" {
		return nil, ErrNoAgentID
	}

	body, err := c.doer.PostJSON(ctx, "/api/ipoll/respond", map[string]any{
		"poll_id":    pollID,
		"response":   response,
		"from_agent": c.agentID,
	})
	if err != nil {
		return nil, fmt.Errorf("respond to %q: %w", pollID, err)
	}
	return decodeResult(body)
}

// Ack responds to a poll with an acknowledgment. An empty message defaults
// to "Acknowledged".
func (c *Client) Ack(ctx context.Context, pollID, message string) (map[string]any, error) {
	if message == "" {
		message = "Acknowledged"
	}
	return c.Respond(ctx, pollID, message)
}

// ── Status & history ─────────────────────────────────────────────────────

// Status returns hub-wide I-Poll status. No identity is required.
func (c *Client) Status(ctx context.Context) (map[string]any, error) {
	body, err := c.doer.Get(ctx, "/api/ipoll/status", nil)
	if err != nil {
		return nil, fmt.Errorf("ipoll status: %w", err)
	}
	return decodeResult(body)
}

// historyConfig collects the optional history filters.
type historyConfig struct {
	session         string
	limit           int
	includeArchived bool
}

// HistoryOption customizes a History call.
type HistoryOption func(*historyConfig)

// HistorySession filters history to one session.
func HistorySession(id string) HistoryOption {
	return func(cfg *historyConfig) { cfg.session = id }
}

// HistoryLimit caps the number of returned messages (default 20).
func HistoryLimit(n int) HistoryOption {
	return func(cfg *historyConfig) { cfg.limit = n }
}

// IncludeArchived includes archived messages in the history.
func IncludeArchived() HistoryOption {
	return func(cfg *historyConfig) { cfg.includeArchived = true }
}

// History retrieves message history. The bound identity is attached as a
// filter when present but is not required.
func (c *Client) History(ctx context.Context, opts ...HistoryOption) ([]Message, error) {
	cfg := historyConfig{limit: 20}
	for _, o := range opts {
		o(&cfg)
	}

	query := url.Values{
		"limit":            {strconv.Itoa(cfg.limit)},
		"include_archived": {strconv.FormatBool(cfg.includeArchived)},
	}
	if c.agentID != "" {
		query.Set("agent", c.agentID)
	}
	if cfg.session != "" {
		query.Set("session_id", cfg.session)
	}

	body, err := c.doer.Get(ctx, "/api/ipoll/history", query)
	if err != nil {
		return nil, fmt.Errorf("ipoll history: %w", err)
	}
	return decodePolls(body)
}

// ── Registration & verification ──────────────────────────────────────────

// Register registers the bound identity with the hub. Nil capabilities
// default to ["push","pull"]. The hub's registration and tier decision is
// returned verbatim; the client makes no trust-tier policy decisions.
func (c *Client) Register(ctx context.Context, description string, capabilities []string) (map[string]any, error) {
	if c.agentID == "" {
		return nil, ErrNoAgentID
	}
	if capabilities == nil {
		capabilities = []string{"push", "pull"}
	}

	body, err := c.doer.PostJSON(ctx, "/api/ipoll/register", map[string]any{
		"agent_id":     c.agentID,
		"description":  description,
		"capabilities": capabilities,
	})
	if err != nil {
		return nil, fmt.Errorf("register %q: %w", c.agentID, err)
	}
	return decodeResult(body)
}

// RequestVerification starts the challenge/response upgrade from sandbox to
// verified tier. The result carries the challenge_id and question to answer
// via SubmitVerification.
func (c *Client) RequestVerification(ctx context.Context, description string, capabilities []string, contact string) (map[string]any, error) {
	if c.agentID == "" {
		return nil, ErrNoAgentID
	}

	payload := map[string]any{"agent_id": c.agentID}
	if description != "" {
		payload["description"] = description
	}
	if capabilities != nil {
		payload["capabilities"] = capabilities
	}
	if contact != "" {
		payload["contact"] = contact
	}

	body, err := c.doer.PostJSON(ctx, "/api/ipoll/verify/request", payload)
	if err != nil {
		return nil, fmt.Errorf("request verification: %w", err)
	}
	return decodeResult(body)
}

// SubmitVerification answers a verification challenge. The result's status
// is either "verified" or "rejected".
func (c *Client) SubmitVerification(ctx context.Context, challengeID, answer string) (map[string]any, error) {
	if c.agentID == "" {
		return nil, ErrNoAgentID
	}

	body, err := c.doer.PostJSON(ctx, "/api/ipoll/verify/submit", map[string]any{
		"agent_id":     c.agentID,
		"challenge_id": challengeID,
		"answer":       answer,
	})
	if err != nil {
		return nil, fmt.Errorf("submit verification: %w", err)
	}
	return decodeResult(body)
}

// ── Decoding helpers ─────────────────────────────────────────────────────

// decodePolls parses a response holding messages under the "polls" key.
func decodePolls(body []byte) ([]Message, error) {
	var envelope struct {
		Polls []json.RawMessage `json:"polls"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode polls: %w", err)
	}

	messages := make([]Message, 0, len(envelope.Polls))
	for _, raw := range envelope.Polls {
		m, err := decodeMessage(raw)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// decodeResult parses a raw structured hub result.
func decodeResult(body []byte) (map[string]any, error) {
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}
