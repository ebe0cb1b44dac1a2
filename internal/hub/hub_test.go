package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

func dialTestHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleUpgrade))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", h.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastReachesSubscriber(t *testing.T) {
	h := New(nil)
	conn := dialTestHub(t, h)
	waitForClients(t, h, 1)

	h.BroadcastJobResult(printjob.Result{
		Success:       true,
		Device:        "POS-80",
		Kind:          printjob.KindReceipt,
		TransportUsed: printjob.TransportRawProtocol,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Event != EventJobResult {
		t.Errorf("event = %q, want %q", msg.Event, EventJobResult)
	}
	data, ok := msg.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data has unexpected shape: %T", msg.Data)
	}
	if data["device"] != "POS-80" || data["success"] != true {
		t.Errorf("payload did not round-trip: %v", data)
	}
}

func TestDisconnectDropsClient(t *testing.T) {
	h := New(nil)
	conn := dialTestHub(t, h)
	waitForClients(t, h, 1)

	conn.Close()
	waitForClients(t, h, 0)

	// Broadcasting to nobody must not block or panic.
	h.Broadcast(EventDevices, nil)
}

func TestCloseDisconnectsEverything(t *testing.T) {
	h := New(nil)
	dialTestHub(t, h)
	dialTestHub(t, h)
	waitForClients(t, h, 2)

	h.Close()
	if n := h.ClientCount(); n != 0 {
		t.Errorf("client count after close = %d, want 0", n)
	}
}
