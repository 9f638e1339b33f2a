package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ndtrung-dev/sensorgate/internal/auth"
)

// issueTicket inserts a ticket directly into the server's store.
func issueTicket(srv *Server, ticket string) {
	srv.tickets.mu.Lock()
	srv.tickets.tickets[ticket] = ticketEntry{
		userID:    "usr-test",
		role:      auth.RoleViewer,
		expiresAt: time.Now().Add(ticketTTL),
	}
	srv.tickets.mu.Unlock()
}

// dialWS connects a WebSocket client to the test server with the given ticket.
func dialWS(t *testing.T, tsURL, ticket string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(tsURL, "http") + "/api/v1/ws?ticket=" + ticket
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketRequiresTicket(t *testing.T) {
	_, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial without ticket succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake response = %v, want 401", resp)
	}
	if resp != nil {
		resp.Body.Close()
	}
}

func TestWebSocketStreamsBroadcasts(t *testing.T) {
	srv, ts := newTestServer(t)

	issueTicket(srv, "ticket-1")
	conn := dialWS(t, ts.URL, "ticket-1")

	waitForClients(t, srv.hub, 1)

	envelope, _ := json.Marshal(map[string]map[string]any{ //nolint:errcheck // static input
		"temperature": {"value": 21.5, "timestamp": 1700000000.25},
	})
	srv.hub.Broadcast(envelope)

	//nolint:errcheck // deadline on test connection
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}

	var got map[string]map[string]any
	if err := json.Unmarshal(message, &got); err != nil {
		t.Fatalf("unmarshalling broadcast: %v", err)
	}
	if got["temperature"]["value"] != 21.5 {
		t.Errorf("value = %v, want 21.5", got["temperature"]["value"])
	}
}

func TestBroadcastSurvivesClosedClient(t *testing.T) {
	srv, ts := newTestServer(t)

	issueTicket(srv, "ticket-a")
	issueTicket(srv, "ticket-b")
	closed := dialWS(t, ts.URL, "ticket-a")
	alive := dialWS(t, ts.URL, "ticket-b")

	waitForClients(t, srv.hub, 2)

	// Drop one client abruptly; the read pump should prune it.
	closed.Close()
	waitForClients(t, srv.hub, 1)

	srv.hub.Broadcast([]byte(`{"humidity":{"value":60,"timestamp":1700000001}}`))

	//nolint:errcheck // deadline on test connection
	alive.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := alive.ReadMessage()
	if err != nil {
		t.Fatalf("surviving client read: %v", err)
	}
	if !strings.Contains(string(message), "humidity") {
		t.Errorf("message = %s, want humidity envelope", message)
	}
}

func TestTicketIsSingleUseAcrossConnections(t *testing.T) {
	srv, ts := newTestServer(t)

	issueTicket(srv, "ticket-once")
	dialWS(t, ts.URL, "ticket-once")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws?ticket=ticket-once"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("second dial with consumed ticket succeeded")
	}
	if resp != nil {
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("handshake status = %d, want 401", resp.StatusCode)
		}
		resp.Body.Close()
	}
}

// waitForClients polls until the hub reaches the expected client count.
func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
}
