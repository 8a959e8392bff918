package ipoll

import (
	"encoding/json"
	"fmt"
)

// PollType classifies an I-Poll message. The enumeration is closed: decoding
// any other value is an error, never a silent default.
type PollType string

const (
	PollPush PollType = "PUSH" // informational: "I found/did this"
	PollPull PollType = "PULL" // request: "what do you know about X?"
	PollSync PollType = "SYNC" // bidirectional context exchange
	PollTask PollType = "TASK" // delegation: "can you do this?"
	PollAck  PollType = "ACK"  // acknowledgment: "understood/done"
)

// ParsePollType validates s against the closed enumeration.
func ParsePollType(s string) (PollType, error) {
	switch t := PollType(s); t {
	case PollPush, PollPull, PollSync, PollTask, PollAck:
		return t, nil
	}
	return "", fmt.Errorf("unknown poll type %q", s)
}

// UnmarshalJSON rejects values outside the closed enumeration.
func (t *PollType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("poll type: %w", err)
	}
	parsed, err := ParsePollType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Message is one unit of the I-Poll protocol.
//
// The hub owns the id and the status. An outbound Message carries an empty
// id until the hub acknowledges it; the client never invents one. Status
// moves pending → read → responded (or terminal archived) on the hub side;
// the client only observes the value and never enforces the transition.
type Message struct {
	ID        string         `json:"id"`
	FromAgent string         `json:"from_agent"`
	ToAgent   string         `json:"to_agent"`
	Content   string         `json:"content"`
	Type      PollType       `json:"poll_type"`
	Status    string         `json:"status"`
	SessionID string         `json:"session_id,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Pending reports whether the hub still lists the message as pending.
func (m *Message) Pending() bool {
	return m.Status == "pending"
}

// IsTask reports whether the message delegates work to the recipient.
func (m *Message) IsTask() bool {
	return m.Type == PollTask
}

// SenderTrust returns the sender's trust score recorded in metadata under
// the reserved "trust_score" key at send time, or 0 when absent. This is
// informational only and distinct from the AINS record's trust score.
func (m *Message) SenderTrust() float64 {
	v, ok := m.Metadata["trust_score"].(float64)
	if !ok {
		return 0
	}
	return v
}

// messageWire covers the two field-naming conventions the hub emits. The
// short forms (from/to/type) win over the long forms when both are present.
type messageWire struct {
	ID        string         `json:"id"`
	From      string         `json:"from"`
	FromAgent string         `json:"from_agent"`
	To        string         `json:"to"`
	ToAgent   string         `json:"to_agent"`
	Content   string         `json:"content"`
	Type      string         `json:"type"`
	PollType  string         `json:"poll_type"`
	Status    string         `json:"status"`
	SessionID string         `json:"session_id"`
	CreatedAt string         `json:"created_at"`
	Metadata  map[string]any `json:"metadata"`
}

// decodeMessage is the single decode routine for inbound message entries.
func decodeMessage(data []byte) (Message, error) {
	var w messageWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}

	pick := func(short, long string) string {
		if short != "" {
			return short
		}
		return long
	}

	typ := PollPush
	if raw := pick(w.Type, w.PollType); raw != "" {
		parsed, err := ParsePollType(raw)
		if err != nil {
			return Message{}, err
		}
		typ = parsed
	}

	return Message{
		ID:        w.ID,
		FromAgent: pick(w.From, w.FromAgent),
		ToAgent:   pick(w.To, w.ToAgent),
		Content:   w.Content,
		Type:      typ,
		Status:    w.Status,
		SessionID: w.SessionID,
		CreatedAt: w.CreatedAt,
		Metadata:  w.Metadata,
	}, nil
}
