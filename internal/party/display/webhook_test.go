package display

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/partyboard/internal/party/app"
	"github.com/louisbranch/partyboard/internal/party/render"
)

type boardCall struct {
	method string
	path   string
	body   map[string]any
	auth   string
}

type fakeBoard struct {
	mu     sync.Mutex
	calls  []boardCall
	status int
}

func (f *fakeBoard) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := boardCall{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&call.body)
		}
		f.mu.Lock()
		f.calls = append(f.calls, call)
		status := f.status
		f.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		if r.Method == http.MethodPost && r.URL.Path == "/locations/board-1/messages" {
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg-9"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (f *fakeBoard) lastCall(t *testing.T) boardCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no board calls recorded")
	}
	return f.calls[len(f.calls)-1]
}

func newTestClient(t *testing.T, board *fakeBoard) *Client {
	t.Helper()
	server := httptest.NewServer(board.handler())
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL, "token-1", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClient_SendReturnsBoardHandle(t *testing.T) {
	t.Parallel()
	board := &fakeBoard{}
	client := newTestClient(t, board)

	handle, err := client.Send(context.Background(), "board-1", render.Payload{
		Title:    "🟡 Recruiting — Friday run",
		SlotRows: []string{"1. Owner"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if handle != "msg-9" {
		t.Fatalf("handle = %q, want msg-9", handle)
	}
	call := board.lastCall(t)
	if call.method != http.MethodPost || call.path != "/locations/board-1/messages" {
		t.Fatalf("call = %+v", call)
	}
	if call.auth != "Bearer token-1" {
		t.Fatalf("auth = %q", call.auth)
	}
	if call.body["title"] != "🟡 Recruiting — Friday run" {
		t.Fatalf("body = %+v", call.body)
	}
}

func TestClient_EditTargetsMessage(t *testing.T) {
	t.Parallel()
	board := &fakeBoard{}
	client := newTestClient(t, board)

	if err := client.Edit(context.Background(), "msg-9", render.Payload{Title: "updated"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	call := board.lastCall(t)
	if call.method != http.MethodPatch || call.path != "/messages/msg-9" {
		t.Fatalf("call = %+v", call)
	}
}

func TestClient_DeleteTreatsMissingAsDeleted(t *testing.T) {
	t.Parallel()
	board := &fakeBoard{status: http.StatusNotFound}
	client := newTestClient(t, board)

	if err := client.Delete(context.Background(), "msg-9"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestClient_ServerErrorPropagates(t *testing.T) {
	t.Parallel()
	board := &fakeBoard{status: http.StatusBadGateway}
	client := newTestClient(t, board)

	if err := client.Edit(context.Background(), "msg-9", render.Payload{}); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestClient_NotifyPostsEvent(t *testing.T) {
	t.Parallel()
	board := &fakeBoard{}
	client := newTestClient(t, board)

	client.Notify(context.Background(), app.Notification{
		Title:    "party closed",
		Fields:   map[string]string{"handle": "msg-9"},
		Severity: app.SeverityWarn,
	})
	call := board.lastCall(t)
	if call.path != "/notifications" || call.body["severity"] != "warn" {
		t.Fatalf("call = %+v", call)
	}
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	t.Parallel()
	if _, err := NewClient("  ", "", time.Second); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
