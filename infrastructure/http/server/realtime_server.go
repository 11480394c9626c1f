package server

import (
	"dm-lab/auth"
	"dm-lab/domain/event"
	"dm-lab/sink"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	maxFrameBytes       = 4 * 1024
	pongWait            = 60 * time.Second
	pingPeriod          = pongWait * 9 / 10
	defaultWriteTimeout = 10 * time.Second

	joinFrame  = "join"
	leaveFrame = "leave"
)

type clientFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// HandleWebsocket upgrades first and authenticates second, so that a refused
// client still receives an unauthorized frame before the close.
func (s *Server) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("Websocket upgrade failed", "error", err)
		return
	}

	userID, err := s.realtime.Authenticate(auth.TokenFromRequest(r))
	if err == nil {
		_, err = s.directory.Resolve(r.Context(), userID)
	}
	if err != nil {
		s.log.Debug("Websocket handshake refused", "error", err)
		s.refuse(conn)
		return
	}

	connectionID := uuid.NewString()
	connectionSink := sink.NewConnectionSink(connectionID, userID, s.connectionBufferSize())
	s.realtime.Connect(connectionID, userID, connectionSink)
	s.log.Info("Websocket connected", "connection_id", connectionID, "user_id", userID)

	if err = s.writeFrame(conn, event.Frame{Event: event.Connected, Data: event.ConnectedPayload{UserID: userID}}); err != nil {
		s.realtime.Disconnect(connectionID)
		connectionSink.Close()
		_ = conn.Close()
		return
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(conn, connectionSink)
	}()

	s.readLoop(conn, connectionID, connectionSink)

	s.realtime.Disconnect(connectionID)
	connectionSink.Close()
	<-writerDone
	_ = conn.Close()
	s.log.Info("Websocket disconnected", "connection_id", connectionID, "user_id", userID)
}

// writeLoop is the only goroutine writing to conn once the handshake is done.
func (s *Server) writeLoop(conn *websocket.Conn, connectionSink *sink.ConnectionSink) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-connectionSink.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(s.writeTimeout()))
			return
		case <-s.baseCtx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(s.writeTimeout()))
			// Unblocks the read loop
			_ = conn.Close()
			return
		case evt := <-connectionSink.Events():
			if err := s.writeFrame(conn, evt.Frame()); err != nil {
				s.log.Debug("Websocket write failed", "connection_id", connectionSink.ConnectionID, "error", err)
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeTimeout())); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// readLoop handles join and leave requests until the peer goes away.
func (s *Server) readLoop(conn *websocket.Conn, connectionID string, connectionSink *sink.ConnectionSink) {
	conn.SetReadLimit(maxFrameBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame clientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("Websocket read failed", "connection_id", connectionID, "error", err)
			}
			return
		}
		var channel string
		if err := json.Unmarshal(frame.Data, &channel); err != nil {
			s.log.Debug("Ignoring frame without channel name", "connection_id", connectionID, "event", frame.Event)
			continue
		}
		switch frame.Event {
		case joinFrame:
			if !s.realtime.Join(connectionID, channel, connectionSink) {
				s.log.Debug("Ignoring join with blank channel", "connection_id", connectionID)
			}
		case leaveFrame:
			s.realtime.Leave(connectionID, channel)
		default:
			s.log.Debug("Ignoring unknown frame", "connection_id", connectionID, "event", frame.Event)
		}
	}
}

func (s *Server) refuse(conn *websocket.Conn) {
	_ = s.writeFrame(conn, event.Frame{Event: event.Unauthorized, Data: "Authentication required"})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"),
		time.Now().Add(s.writeTimeout()))
	_ = conn.Close()
}

func (s *Server) writeFrame(conn *websocket.Conn, frame event.Frame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout())); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}

func (s *Server) writeTimeout() time.Duration {
	if s.options.WriteTimeout <= 0 {
		return defaultWriteTimeout
	}
	return s.options.WriteTimeout
}

func (s *Server) connectionBufferSize() int {
	if s.options.ConnectionBufferSize <= 0 {
		return 64
	}
	return s.options.ConnectionBufferSize
}
