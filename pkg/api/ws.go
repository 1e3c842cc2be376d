package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/docpane/docpane/pkg/session"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsMaxMessage   = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The HTTP layer already serves a permissive CORS policy; the websocket
	// endpoint matches it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is one input from the page: a keystroke-level query update,
// a sentinel visibility observation, or a version selector click.
type clientMessage struct {
	Type    string  `json:"type"`
	Query   string  `json:"q,omitempty"`
	Top     float64 `json:"top,omitempty"`
	Visible bool    `json:"visible,omitempty"`
	Group   string  `json:"group,omitempty"`
	Version string  `json:"version,omitempty"`
}

// liveMessage is one server push: the full session snapshot after a state
// change. Clients re-render from snapshots rather than applying deltas.
type liveMessage struct {
	Type string `json:"type"`
	session.Snapshot
}

// HandleLive upgrades to a websocket and runs one interactive search
// session for the lifetime of the connection. Debounce, stale-response
// handling and pagination all live server-side in the session; the client
// only reports raw inputs and renders snapshots.
func (s *Server) HandleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cfg := s.config()
	sess := session.New(session.Options{
		Backend:  s.backend,
		Groups:   cfg.Groups,
		Locale:   cfg.Search.Locale,
		Filter:   cfg.Search.Filter,
		Params:   cfg.Search.Params,
		PerPage:  cfg.Search.PageSize,
		Debounce: cfg.Search.Debounce.Duration,
	})
	go sess.Run(ctx)

	listenerID, snapshots := sess.Subscribe()
	defer sess.Unsubscribe(listenerID)

	s.logger.Debugf("session %s connected from %s", sess.ID(), r.RemoteAddr)

	// Writer: initial snapshot, then every broadcast, plus keepalive pings.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		defer cancel()

		if err := writeSnapshot(conn, sess.CurrentSnapshot()); err != nil {
			return
		}

		ping := time.NewTicker(wsPingInterval)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				if err := writeSnapshot(conn, snap); err != nil {
					return
				}
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader: feed client inputs into the session until the peer goes away.
	conn.SetReadLimit(wsMaxMessage)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debugf("session %s: dropping malformed message: %v", sess.ID(), err)
			continue
		}

		switch msg.Type {
		case "query":
			sess.SetQuery(msg.Query)
		case "sentinel":
			sess.ObserveSentinel(msg.Top, msg.Visible)
		case "version":
			sess.SelectVersion(msg.Group, msg.Version)
		default:
			s.logger.Debugf("session %s: unknown message type %q", sess.ID(), msg.Type)
		}
	}

	cancel()
	<-writeDone
	s.logger.Debugf("session %s disconnected", sess.ID())
}

func writeSnapshot(conn *websocket.Conn, snap session.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(liveMessage{Type: "snapshot", Snapshot: snap})
}
