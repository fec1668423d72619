package serve

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"roleserve/internal/monitor"
)

// MonitorFrame is one snapshot pushed to monitoring dashboards.
type MonitorFrame struct {
	Timestamp   time.Time        `json:"timestamp"`
	ModelLoaded bool             `json:"model_loaded"`
	Drift       monitor.Snapshot `json:"drift"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from other origins; the stream is read-only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleMonitorWS upgrades the connection and pushes drift snapshots at
// the configured interval until the client disconnects. The stream only
// reads engine state, it never mutates counters or the drift window.
func (s *Server) handleMonitorWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		frame := MonitorFrame{
			Timestamp:   time.Now(),
			ModelLoaded: s.service.ModelLoaded(),
			Drift:       s.service.Drift().Snapshot(),
		}

		if err := conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}
		if err := conn.WriteJSON(frame); err != nil {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
