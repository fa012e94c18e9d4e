package api

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/dorkscan/dorkscan/pkg/broadcast"
	"github.com/dorkscan/dorkscan/pkg/events"
)

// Compile-time interface check.
var _ broadcast.Subscriber = (*wsSubscriber)(nil)

// wsSubscriber relays scan events to one WebSocket client as JSON text
// frames. Writes are serialized: events from concurrent jobs arrive on the
// same connection.
type wsSubscriber struct {
	conn net.Conn
	mu   sync.Mutex
}

// Send implements broadcast.Subscriber. A write error marks the client
// dead; the broadcaster ignores the error and the read loop cleans up.
func (c *wsSubscriber) Send(ev events.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return wsutil.WriteServerText(c.conn, data)
}

// handleWS upgrades the connection and subscribes it to the event stream.
// The client is dropped when it closes the connection or a read fails.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		return
	}

	sub := &wsSubscriber{conn: conn}
	s.broadcaster.Connect(sub)

	go func() {
		defer func() {
			s.broadcaster.Disconnect(sub)
			conn.Close()
		}()
		for {
			// Client frames are keepalives; their content is ignored.
			if _, _, err := wsutil.ReadClientData(conn); err != nil {
				return
			}
		}
	}()
}
