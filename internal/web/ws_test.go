package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"accontrol/internal/events"
	"github.com/gorilla/websocket"
)

type eventsFrame struct {
	Type string         `json:"type"`
	Data []events.Event `json:"data"`
}

func TestEventPushCursorSkipsDeliveredBatch(t *testing.T) {
	f := newFixture(t, false)
	ev := f.server.events
	for i := 1; i <= 5; i++ {
		ev.Add(events.EventCommand, true, fmt.Sprintf("command %d", i))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		cursor, err := f.server.pushEvents(conn, 0)
		if err != nil {
			t.Errorf("First push failed: %v", err)
			return
		}
		if cursor != 5 {
			t.Errorf("Expected cursor at the newest ID 5, got %d", cursor)
		}

		// Nothing new: no frame and an unchanged cursor.
		again, err := f.server.pushEvents(conn, cursor)
		if err != nil {
			t.Errorf("Idle push failed: %v", err)
			return
		}
		if again != cursor {
			t.Errorf("Expected cursor to stay at %d, got %d", cursor, again)
		}

		ev.Add(events.EventCommand, true, "command 6")
		if _, err := f.server.pushEvents(conn, again); err != nil {
			t.Errorf("Follow-up push failed: %v", err)
		}
	}))
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	if resp != nil {
		resp.Body.Close()
	}

	var first eventsFrame
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("Failed to read first frame: %v", err)
	}
	if first.Type != "events" || len(first.Data) != 5 {
		t.Fatalf("Expected an events frame with 5 entries, got %q with %d", first.Type, len(first.Data))
	}
	if first.Data[0].ID != 5 || first.Data[4].ID != 1 {
		t.Errorf("Expected events newest first, got IDs %d..%d", first.Data[0].ID, first.Data[4].ID)
	}

	// The only remaining frame is the single fresh event; a repeat of
	// the first batch here means the cursor went backwards.
	var second eventsFrame
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("Failed to read second frame: %v", err)
	}
	ids := make([]int64, len(second.Data))
	for i, e := range second.Data {
		ids[i] = e.ID
	}
	if second.Type != "events" || len(second.Data) != 1 || second.Data[0].ID != 6 {
		t.Fatalf("Expected only the new event 6, got %q with IDs %v", second.Type, ids)
	}
}
