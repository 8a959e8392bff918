package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jaspervdmeent/ainternet-go/pkg/client"
	"github.com/jaspervdmeent/ainternet-go/pkg/ipoll"
)

// stubHub is a minimal in-memory hub: it stores pushed messages and serves
// them back per recipient.
func stubHub(t *testing.T) *httptest.Server {
	t.Helper()

	var mu sync.Mutex
	inbox := map[string][]map[string]any{} // recipient -> messages
	seq := 0

	mux := http.NewServeMux()

	mux.HandleFunc("/api/ains/resolve/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/ains/resolve/")
		if id != "gemini" && id != "echo" {
			json.NewEncoder(w).Encode(map[string]any{"status": "not_found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"agent": id, "trust_score": 0.82, "capabilities": []string{"vision"},
		})
	})

	mux.HandleFunc("/api/ains/list", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"domains": map[string]any{
				"gemini.aint": map[string]any{"agent": "gemini", "trust_score": 0.82, "capabilities": []string{"vision"}},
				"echo.aint":   map[string]any{"agent": "echo", "trust_score": 0.6, "capabilities": []string{"push"}},
			},
		})
	})

	mux.HandleFunc("/api/ipoll/push", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)

		mu.Lock()
		seq++
		id := fmt.Sprintf("poll_%d", seq)
		to, _ := payload["to_agent"].(string)
		inbox[to] = append(inbox[to], map[string]any{
			"id":      id,
			"from":    payload["from_agent"],
			"to":      to,
			"content": payload["content"],
			"type":    payload["poll_type"],
			"status":  "pending",
		})
		mu.Unlock()

		json.NewEncoder(w).Encode(map[string]any{"id": id, "status": "pending"})
	})

	mux.HandleFunc("/api/ipoll/pull/", func(w http.ResponseWriter, r *http.Request) {
		agent := strings.TrimPrefix(r.URL.Path, "/api/ipoll/pull/")
		mu.Lock()
		polls := inbox[agent]
		inbox[agent] = nil
		mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"polls": polls})
	})

	mux.HandleFunc("/api/ipoll/respond", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		json.NewEncoder(w).Encode(map[string]any{
			"original_id": payload["poll_id"], "response_id": "poll_r1",
		})
	})

	mux.HandleFunc("/api/ipoll/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "operational"})
	})

	return httptest.NewServer(mux)
}

func TestSendThenReceive_endToEnd(t *testing.T) {
	srv := stubHub(t)
	defer srv.Close()
	ctx := context.Background()

	sender, err := client.New(client.WithHub(srv.URL), client.WithAgentID("My_Bot.aint"))
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := client.New(client.WithHub(srv.URL), client.WithAgentID("echo"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sender.Send(ctx, "echo.aint", "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msgs, err := receiver.Receive(ctx, true)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	got := msgs[0]
	if got.Content != "hi" {
		t.Errorf("Content: got %q, want %q", got.Content, "hi")
	}
	if got.Type != ipoll.PollPush {
		t.Errorf("Type: got %q, want PUSH", got.Type)
	}
	if got.FromAgent != "my_bot" {
		t.Errorf("FromAgent: got %q, want sender's normalized identity %q", got.FromAgent, "my_bot")
	}

	if _, err := receiver.Reply(ctx, got.ID, "hi back"); err != nil {
		t.Errorf("Reply: %v", err)
	}
}

func TestResolveAndDiscover_delegation(t *testing.T) {
	srv := stubHub(t)
	defer srv.Close()
	ctx := context.Background()

	ai, err := client.New(client.WithHub(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	rec := ai.Resolve(ctx, "Gemini")
	if rec == nil || rec.Domain != "gemini.aint" {
		t.Fatalf("Resolve: got %+v", rec)
	}

	if ai.Resolve(ctx, "nobody") != nil {
		t.Error("expected nil for unknown domain")
	}

	found := ai.Discover(ctx, "vision", 0)
	if len(found) != 1 || found[0].Domain != "gemini.aint" {
		t.Errorf("Discover: got %+v", found)
	}

	all := ai.ListAgents(ctx)
	if len(all) != 2 {
		t.Errorf("ListAgents: expected 2 records, got %d", len(all))
	}
}

func TestReadOnlyClient_sendFailsFast(t *testing.T) {
	srv := stubHub(t)
	defer srv.Close()

	ai, err := client.New(client.WithHub(srv.URL)) // no identity
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ai.Send(context.Background(), "echo", "hi"); !errors.Is(err, ipoll.ErrNoAgentID) {
		t.Errorf("expected ErrNoAgentID, got %v", err)
	}

	// Unauthenticated status still works.
	if _, err := ai.Status(context.Background()); err != nil {
		t.Errorf("Status: %v", err)
	}
}

func TestTypedHelpers(t *testing.T) {
	srv := stubHub(t)
	defer srv.Close()
	ctx := context.Background()

	ai, _ := client.New(client.WithHub(srv.URL), client.WithAgentID("my_bot"))
	echo, _ := client.New(client.WithHub(srv.URL), client.WithAgentID("echo"))

	ai.Ask(ctx, "echo", "what do you know?")
	ai.Delegate(ctx, "echo", "do the thing")
	ai.SyncWith(ctx, "echo", "project status: green")

	msgs, err := echo.Receive(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	want := []ipoll.PollType{ipoll.PollPull, ipoll.PollTask, ipoll.PollSync}
	for i, m := range msgs {
		if m.Type != want[i] {
			t.Errorf("message %d: got type %q, want %q", i, m.Type, want[i])
		}
	}
}

func TestConnect_defaults(t *testing.T) {
	ai := client.Connect("my_bot")
	if ai.Hub() != client.DefaultHub {
		t.Errorf("Hub: got %q, want default", ai.Hub())
	}
	if ai.AgentID() != "my_bot" {
		t.Errorf("AgentID: got %q", ai.AgentID())
	}
}
