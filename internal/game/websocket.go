package game

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	maxMessage = 16 * 1024
)

type gorillaWebSocketWrapper struct {
	conn      *websocket.Conn
	closeOnce sync.Once
}

func NewGorillaWebSocketWrapper(conn *websocket.Conn) *gorillaWebSocketWrapper {
	conn.SetReadLimit(maxMessage)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &gorillaWebSocketWrapper{conn: conn}
}

func (w *gorillaWebSocketWrapper) Write(data []byte) error {
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *gorillaWebSocketWrapper) WriteBinary(data []byte) error {
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (w *gorillaWebSocketWrapper) Read() ([]byte, bool, error) {
	kind, data, err := w.conn.ReadMessage()
	return data, kind == websocket.BinaryMessage, err
}

// Ping goes through WriteControl, which may run alongside a data write.
func (w *gorillaWebSocketWrapper) Ping() error {
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (w *gorillaWebSocketWrapper) Close() {
	w.closeOnce.Do(func() {
		w.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		w.conn.Close()
	})
}
