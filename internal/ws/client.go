package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 64
)

// Client is one WebSocket connection for one user. A user may hold
// several clients at once (multiple tabs or devices).
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan OutgoingEvent
	userID string

	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once
	wg     sync.WaitGroup
}

func newClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan OutgoingEvent, sendBufSize),
		userID: userID,
		done:   make(chan struct{}),
	}
}

// start launches the read and write pumps. cancel is kept so close can
// tear both down.
func (c *Client) start(ctx context.Context, cancel context.CancelFunc) {
	c.cancel = cancel
	c.wg.Add(2)
	go c.writePump(ctx)
	go c.readPump(ctx)
}

// wait blocks until both pumps have exited.
func (c *Client) wait() {
	c.wg.Wait()
}

// close signals the client to stop. Safe to call multiple times from
// any goroutine.
func (c *Client) close() {
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) readPump(ctx context.Context) {
	defer c.wg.Done()
	defer func() {
		// During hub shutdown nothing drains unregister, so an
		// unconditional send could block wait() forever. ctx is
		// cancelled when the hub closes this client, and done is
		// closed once Run has exited.
		select {
		case c.hub.unregister <- c:
		case <-ctx.Done():
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Warnw(ctx, "set read deadline", "user_id", c.userID, "error", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnw(ctx, "socket read failed", "user_id", c.userID, "error", err)
			}
			return
		}

		var event IncomingEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Warnw(ctx, "bad socket event", "user_id", c.userID, "error", err)
			continue
		}
		c.hub.handleEvent(ctx, c, event)
	}
}

func (c *Client) writePump(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		case event := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				log.Errorw(ctx, "marshal socket event", "user_id", c.userID, "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue drops the event when the client buffer is full or the client
// is already gone. A slow consumer must not stall the hub.
func (c *Client) enqueue(event OutgoingEvent) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}
