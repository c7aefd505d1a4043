package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxMsgSize   = 1 << 10
	pushInterval = 1 * time.Second
)

// wsEnvelope wraps every message on the live state stream.
type wsEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// liveSnapshot is the periodic state pushed to the status page.
type liveSnapshot struct {
	Power    bool   `json:"power"`
	Mode     string `json:"mode"`
	Degrees  int    `json:"degrees"`
	Fanspeed string `json:"fanspeed"`
	RSSI     int    `json:"rssi"`
	Bus      bool   `json:"bus_connected"`
}

// The UI is only reachable on the local network, so any origin is fine.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveState streams the AC state and new events to the status page over
// a websocket, with pings keeping half-open connections from lingering.
func (s *Server) liveState(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[WEB] Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMsgSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine handles control frames and detects disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pushInterval)
	ping := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer ping.Stop()

	lastEventID := int64(0)
	if err := s.pushState(conn); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.pushState(conn); err != nil {
				return
			}
			if lastEventID, err = s.pushEvents(conn, lastEventID); err != nil {
				return
			}
		}
	}
}

func (s *Server) pushState(conn *websocket.Conn) error {
	state := s.store.State()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: "state", Data: liveSnapshot{
		Power:    state.Power,
		Mode:     state.Mode.String(),
		Degrees:  state.Degrees,
		Fanspeed: state.Fanspeed.String(),
		RSSI:     s.link.RSSI(),
		Bus:      s.busConnected(),
	}})
}

func (s *Server) pushEvents(conn *websocket.Conn, sinceID int64) (int64, error) {
	fresh := s.events.GetSince(sinceID)
	if len(fresh) == 0 {
		return sinceID, nil
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(wsEnvelope{Type: "events", Data: fresh}); err != nil {
		return sinceID, err
	}
	// GetSince returns newest first, so the cursor is the head of the batch.
	return fresh[0].ID, nil
}
