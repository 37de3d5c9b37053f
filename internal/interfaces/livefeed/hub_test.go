package livefeed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/live" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastRespectsMatchFilter(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil, logging.NewNop())
	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)
	t.Cleanup(hub.Close)

	filtered := dialHub(t, server, "?match_id=m-2,m-3")
	everything := dialHub(t, server, "")
	waitForClients(t, hub, 2)

	minute := 23
	hub.Broadcast(match.State{MatchID: "m-1", Minute: &minute, Phase: match.PhaseFirstHalf, HomeScore: 1})
	hub.Broadcast(match.State{MatchID: "m-2", Phase: match.PhaseHalfTime})

	_ = everything.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first Message
	_, raw, err := everything.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, sonic.Unmarshal(raw, &first))
	assert.Equal(t, "match_state", first.Type)
	assert.Equal(t, "m-1", first.State.MatchID)
	assert.Equal(t, 1, first.State.HomeScore)

	_ = filtered.SetReadDeadline(time.Now().Add(2 * time.Second))
	var onlyM2 Message
	_, raw, err = filtered.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, sonic.Unmarshal(raw, &onlyM2))
	assert.Equal(t, "m-2", onlyM2.State.MatchID)
}

func TestHub_ClientCanResubscribe(t *testing.T) {
	t.Parallel()

	hub := NewHub([]string{"*"}, logging.NewNop())
	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)
	t.Cleanup(hub.Close)

	conn := dialHub(t, server, "?match_id=m-1")
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"subscribe","matchIds":["m-9"]}`)))

	deadline := time.Now().Add(2 * time.Second)
	for {
		hub.mu.RLock()
		var c *client
		for item := range hub.clients {
			c = item
		}
		hub.mu.RUnlock()
		if c != nil && c.wants("m-9") && !c.wants("m-1") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscription was not updated")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestParseMatchIDs(t *testing.T) {
	t.Parallel()

	got := parseMatchIDs([]string{"a, b", "", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
