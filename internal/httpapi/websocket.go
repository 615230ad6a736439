package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/projection"
)

const (
	writeWait      = 10 * time.Second
	maxIngestBytes = 4 << 20
)

var upgrader = websocket.Upgrader{
	// The API is meant for local tooling and instrumented pages on any origin.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
}

// subscribe streams projection updates as JSON text messages. The optional
// `context` query parameter narrows the stream to one graph. The stream ends
// when the peer goes away or the server shuts down.
func (s *Server) subscribe(c *gin.Context) {
	scope := projection.AllGraphs()
	if id := c.Query("context"); id != "" {
		scope = projection.Graph(nodeid.ContextID(id))
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("Failed to upgrade subscribe connection.", "error", err)
		return
	}
	defer ws.Close()
	websocketsOpen.WithLabelValues("subscribe").Inc()
	defer websocketsOpen.WithLabelValues("subscribe").Dec()

	logger := s.logger.With("remote_addr", c.Request.RemoteAddr, "scope", scope.String())

	// Handler calls are sequential, so broken needs no lock.
	broken := false
	sub, err := s.proj.Subscribe(scope, func(u projection.Update) {
		if broken {
			return
		}
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(u); err != nil {
			logger.Debug("Subscriber write failed.", "error", err)
			broken = true
			// Unblocks the read loop below.
			_ = ws.Close()
		}
	})
	if sub == nil {
		logger.Warn("Subscription refused.", "error", err)
		closeWith(ws, websocket.CloseTryAgainLater, err.Error())
		return
	}
	if errors.Is(err, projection.ErrUnknownScope) {
		logger.Debug("Subscribed to a graph that does not exist yet.")
	}
	defer func() {
		sub.Unsubscribe()
		<-sub.Done()
	}()
	logger.Info("Subscriber connected.", "subscription", sub.ID())

	// Incoming messages are ignored; reading is how a close is noticed.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-readDone:
		logger.Info("Subscriber disconnected.", "subscription", sub.ID())
	case <-s.closing:
		closeWith(ws, websocket.CloseGoingAway, "server shutting down")
	case <-sub.Done():
	}
}

// ingestSocket pushes every message it receives into the ingest source. A
// message holds one envelope or several separated by newlines.
func (s *Server) ingestSocket(c *gin.Context) {
	if s.ingest == nil || !s.ingest.Enabled() {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no websocket source is configured"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("Failed to upgrade ingest connection.", "error", err)
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxIngestBytes)
	websocketsOpen.WithLabelValues("ingest").Inc()
	defer websocketsOpen.WithLabelValues("ingest").Dec()

	logger := s.logger.With("remote_addr", c.Request.RemoteAddr, "source", s.ingest.Name())
	logger.Info("Ingest peer connected.")

	go func() {
		select {
		case <-s.closing:
			closeWith(ws, websocket.CloseGoingAway, "server shutting down")
		case <-c.Request.Context().Done():
		}
	}()

	ctx := c.Request.Context()
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("Ingest connection dropped.", "error", err)
			} else {
				logger.Info("Ingest peer disconnected.")
			}
			return
		}
		if !s.ingest.Push(ctx, msg) {
			logger.Info("Ingest source closed, dropping connection.")
			closeWith(ws, websocket.CloseGoingAway, "ingest closed")
			return
		}
	}
}

func closeWith(ws *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
