package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// message is the envelope of every pushed event
type message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	userID string
	caseID string
	conn   *websocket.Conn
	send   chan message
}

// NotificationHub tracks connected sockets by user and by war room
type NotificationHub struct {
	mutex sync.Mutex
	users map[string]map[*client]struct{}
	cases map[string]map[*client]struct{}
}

// NewNotificationHub returns an empty hub
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		users: make(map[string]map[*client]struct{}),
		cases: make(map[string]map[*client]struct{}),
	}
}

var _ services.Realtime = (*NotificationHub)(nil)

func (h *NotificationHub) register(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.users[c.userID] == nil {
		h.users[c.userID] = make(map[*client]struct{})
	}
	h.users[c.userID][c] = struct{}{}
	if c.caseID != "" {
		if h.cases[c.caseID] == nil {
			h.cases[c.caseID] = make(map[*client]struct{})
		}
		h.cases[c.caseID][c] = struct{}{}
	}
	api.TrackWebsocketClient(1)
}

func (h *NotificationHub) unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.users[c.userID][c]; !ok {
		return
	}
	delete(h.users[c.userID], c)
	if len(h.users[c.userID]) == 0 {
		delete(h.users, c.userID)
	}
	if c.caseID != "" {
		delete(h.cases[c.caseID], c)
		if len(h.cases[c.caseID]) == 0 {
			delete(h.cases, c.caseID)
		}
	}
	close(c.send)
	api.TrackWebsocketClient(-1)
}

// deliver queues m on every client of set; a client whose buffer is full is dropped
func (h *NotificationHub) deliver(set map[*client]struct{}, m message) int {
	n := 0
	for c := range set {
		select {
		case c.send <- m:
			n++
		default:
			zap.S().Warnw("dropping slow websocket client", "userId", c.userID, "caseId", c.caseID)
			go c.conn.Close()
		}
	}
	return n
}

// PushToUser sends an event to every notification socket of a user
func (h *NotificationHub) PushToUser(userID, event string, payload interface{}) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	set := make(map[*client]struct{})
	for c := range h.users[userID] {
		if c.caseID == "" {
			set[c] = struct{}{}
		}
	}
	h.deliver(set, message{Event: event, Data: payload})
}

// BroadcastToCase sends an event to everyone in the case's war room
func (h *NotificationHub) BroadcastToCase(caseID, event string, payload interface{}) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	n := h.deliver(h.cases[caseID], message{Event: event, Data: payload})
	zap.S().Debugw("broadcast war room event", "caseId", caseID, "event", event, "clients", n)
}

// Connected reports how many sockets a user holds open
func (h *NotificationHub) Connected(userID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.users[userID])
}

func (h *NotificationHub) serve(w http.ResponseWriter, r *http.Request, userID, caseID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade error", "error", err)
		return
	}
	c := &client{userID: userID, caseID: caseID, conn: conn, send: make(chan message, sendBuffer)}
	h.register(c)
	zap.S().Infow("websocket connected", "userId", userID, "caseId", caseID)

	go c.writePump()
	c.readPump()
	h.unregister(c)
	zap.S().Infow("websocket disconnected", "userId", userID, "caseId", caseID)
}

// readPump discards client frames and keeps the read deadline fresh until the socket closes
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case m, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(m); err != nil {
				zap.S().Warnw("error sending websocket event", "userId", c.userID, "event", m.Event, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Notification exposes a user's notification feed
type Notification struct {
	Svc *services.NotificationService
	Hub *NotificationHub
}

// NotificationsWebSocketHandler upgrades an authenticated request to the user's notification stream
func (n Notification) NotificationsWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	n.Hub.serve(w, r, actor(r).ID.Hex(), "")
}

// NotificationsHandler lists the caller's notifications, newest first
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	unread := r.URL.Query().Get("unread") == "true"
	page, err := n.Svc.List(ctx, actor(r).ID, unread, getPage(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// UnreadCountHandler returns the number of unread notifications
func (n Notification) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := n.Svc.UnreadCount(ctx, actor(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

// MarkReadHandler marks one of the caller's notifications read
func (n Notification) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "notification_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := n.Svc.MarkRead(ctx, id, actor(r).ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// MarkAllReadHandler marks every notification of the caller read
func (n Notification) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := n.Svc.MarkAllRead(ctx, actor(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": count})
}
