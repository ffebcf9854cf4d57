// Package ws adapts gorilla WebSocket connections onto the signaling core.
package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rsinha/huddle/internal/core"
)

const sendQueueSize = 64

var errConnClosed = errors.New("connection closed")

// wsConn is a transport endpoint. It implements core.Conn: frames enqueue on
// a buffered channel and a single write pump drains it, which keeps per-
// connection FIFO order. The send channel is never closed so a multicast
// racing a disconnect can never panic; Close signals through done instead.
type wsConn struct {
	id   core.ConnID
	conn *websocket.Conn
	send chan core.Frame
	done chan struct{}
	once sync.Once
}

func newWSConn(id core.ConnID, conn *websocket.Conn) *wsConn {
	return &wsConn{
		id:   id,
		conn: conn,
		send: make(chan core.Frame, sendQueueSize),
		done: make(chan struct{}),
	}
}

func (c *wsConn) ID() core.ConnID { return c.id }

func (c *wsConn) TrySend(f core.Frame) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}
	select {
	case c.send <- f:
		return nil
	default:
		return core.ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
