package ains

import (
	"encoding/json"
	"strings"
)

// Record is a resolved .aint directory entry for one agent.
//
// A Record is an immutable value constructed from a hub response. Cached
// copies are replaced wholesale on re-resolution, never mutated in place.
type Record struct {
	Domain       string   `json:"domain"`
	Agent        string   `json:"agent"`
	Owner        string   `json:"owner"`
	Endpoint     string   `json:"endpoint"`
	IPollURL     string   `json:"i_poll"`
	Capabilities []string `json:"capabilities"`
	TrustScore   float64  `json:"trust_score"`
	Status       string   `json:"status"`
	RegisteredAt string   `json:"registered_at,omitempty"`
}

// Trusted reports whether the agent's trust score is at least 0.7.
func (r *Record) Trusted() bool {
	return r.TrustScore >= 0.7
}

// CanPoll reports whether the agent exposes an I-Poll messaging endpoint.
func (r *Record) CanPoll() bool {
	return r.IPollURL != ""
}

// HasCapability reports whether the agent lists the capability,
// compared case-insensitively.
func (r *Record) HasCapability(capability string) bool {
	for _, c := range r.Capabilities {
		if strings.EqualFold(c, capability) {
			return true
		}
	}
	return false
}

// recordWire is the hub's JSON shape for a directory entry. TrustScore is a
// pointer so an absent field can be told apart from an explicit 0.
type recordWire struct {
	Agent        string   `json:"agent"`
	Owner        string   `json:"owner"`
	Endpoint     string   `json:"endpoint"`
	IPoll        string   `json:"i_poll"`
	Capabilities []string `json:"capabilities"`
	TrustScore   *float64 `json:"trust_score"`
	Status       string   `json:"status"`
	RegisteredAt string   `json:"registered_at"`
}

// fromWire builds a Record from wire data, applying the hub's documented
// defaults: agent falls back to the id derived from the domain, owner to
// "unknown", trust to 0.5 and status to "active". Out-of-range trust scores
// are passed through unchanged; the client defaults but never validates.
func fromWire(domain, fallbackAgent string, w recordWire) Record {
	rec := Record{
		Domain:       domain,
		Agent:        w.Agent,
		Owner:        w.Owner,
		Endpoint:     w.Endpoint,
		IPollURL:     w.IPoll,
		Capabilities: w.Capabilities,
		TrustScore:   0.5,
		Status:       w.Status,
		RegisteredAt: w.RegisteredAt,
	}
	if rec.Agent == "" {
		rec.Agent = fallbackAgent
	}
	if rec.Owner == "" {
		rec.Owner = "unknown"
	}
	if w.TrustScore != nil {
		rec.TrustScore = *w.TrustScore
	}
	if rec.Status == "" {
		rec.Status = "active"
	}
	return rec
}

// decodeResolve parses a resolve response body. The hub reports a missing
// domain either as HTTP 404 (handled by the caller) or as a 2xx body with
// {"status":"not_found"}; record fields may arrive nested under a "record"
// wrapper or flat at the top level, the wrapper taking precedence.
func decodeResolve(domain, agentID string, body []byte) (*Record, error) {
	var envelope struct {
		Status string          `json:"status"`
		Record json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Status == "not_found" {
		return nil, nil
	}

	raw := body
	if len(envelope.Record) > 0 && string(envelope.Record) != "null" {
		raw = envelope.Record
	}
	var w recordWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	rec := fromWire(domain, agentID, w)
	return &rec, nil
}
