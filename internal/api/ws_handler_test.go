package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type fakeFeed struct {
	messages chan string
	closed   chan struct{}
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{messages: make(chan string, 1), closed: make(chan struct{})}
}

func (f *fakeFeed) Subscribe(context.Context) (<-chan string, func() error, error) {
	return f.messages, func() error { close(f.closed); return nil }, nil
}

func dialFeed(t *testing.T, s *testServer) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/contact/feed"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("handshake status = %d", resp.StatusCode)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestContactFeed_ForwardsAfterAuth(t *testing.T) {
	feed := newFakeFeed()
	s := newTestServer(t, func(d *Deps) { d.Feed = feed })
	conn := dialFeed(t, s)

	if err := conn.WriteJSON(wsAuthMessage{Type: "auth", Token: s.adminToken(t)}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	var ready map[string]string
	if err := conn.ReadJSON(&ready); err != nil || ready["type"] != "ready" {
		t.Fatalf("ready = %v (%v)", ready, err)
	}

	feed.messages <- `{"type":"contact_message","message_id":3}`
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != `{"type":"contact_message","message_id":3}` {
		t.Fatalf("message = %s", msg)
	}

	_ = conn.Close()
	select {
	case <-feed.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription not released after disconnect")
	}
}

func TestContactFeed_RejectsBadToken(t *testing.T) {
	s := newTestServer(t, func(d *Deps) { d.Feed = newFakeFeed() })
	conn := dialFeed(t, s)

	if err := conn.WriteJSON(wsAuthMessage{Type: "auth", Token: "forged"}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("err = %v, want policy violation close", err)
	}
}

func TestContactFeed_UnavailableWithoutFeed(t *testing.T) {
	s := newTestServer(t)
	expectError(t, s.doJSON(t, http.MethodGet, "/api/contact/feed", nil, ""), http.StatusServiceUnavailable, "Live feed unavailable")
}
