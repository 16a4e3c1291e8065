package controllers

import (
	"net/http"
	"time"

	"nutribalance/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const pingInterval = 25 * time.Second

type RealtimeController struct {
	RT *services.RealtimeHub
}

func NewRealtimeController(rt *services.RealtimeHub) *RealtimeController {
	return &RealtimeController{RT: rt}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /api/ws/alerts
func (rc *RealtimeController) AlertsWS(c *gin.Context) {
	uid := userID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := &services.WSClient{UserID: uid, Conn: conn}
	rc.RT.Register(cl)

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := cl.Ping(); err != nil {
					rc.RT.Unregister(cl)
					return
				}
			}
		}
	}()

	// the read loop ends when the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			rc.RT.Unregister(cl)
			return
		}
	}
}
