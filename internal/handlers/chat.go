package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// The chat widget is served from the same origin; the socket carries no credentials.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Chat widget
// @Description  WebSocket. Each text frame from the client is answered with {"type":"bot","data":"<reply>"}.
// @Tags         chat
// @Router       /ws/chat [get]
func (h *Handler) chatConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	user := identityFrom(c).Username
	h.log.Debugw("ws_chat_connected", "user", user)

	replies := make(chan string, 8)
	done := make(chan struct{})
	defer close(done)
	go h.readChat(conn, replies, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case reply, ok := <-replies:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(wsEnvelope{Type: "bot", Data: reply}); err != nil {
				h.log.Infow("ws_write_failed", "err", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "err", err)
				return
			}
		}
	}
}

// readChat turns each incoming message into a reply. It closes replies when
// the client goes away and stops early once done is closed.
func (h *Handler) readChat(conn *websocket.Conn, replies chan<- string, done <-chan struct{}) {
	defer close(replies)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			h.log.Debugw("ws_read_closed", "err", err)
			return
		}
		select {
		case replies <- h.services.Reply(string(msg)):
		case <-done:
			return
		}
	}
}
