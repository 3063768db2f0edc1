package orderControllers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/boutiqueware/boutique-api/events"
)

// writeWait bounds how long a single event write may block; a client
// that stalls past it errors out and gets dropped by the hub instead of
// wedging delivery to everyone else.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsSink adapts a websocket connection into an event sink. Writes are
// serialized; gorilla connections allow only one concurrent writer.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSink) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// GET /orders/ws
//
// Long-lived feed of lifecycle events for the admin dashboard. The read
// loop exists only to detect the client going away; nothing the client
// sends is interpreted.
func OrderFeed(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sink := &wsSink{conn: conn}
		hub.Subscribe(sink)
		defer hub.Unsubscribe(sink)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}
