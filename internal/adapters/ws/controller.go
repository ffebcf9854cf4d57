package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rsinha/huddle/internal/app"
	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Gate        *app.Gate
	Coordinator *app.Coordinator
	Registry    *core.Registry
	Relay       *core.Relay
	ReadLimit   int64
	PingPeriod  time.Duration
}

// Handle upgrades the HTTP request and runs the connection lifecycle: write
// pump first, then the handshake gate, then the read loop. A connection that
// fails the gate still gets its read loop so we notice the client going away,
// but its frames are discarded.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.ws").Msg("upgrade failed")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := newWSConn(core.ConnID(uuid.NewString()), ws)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)

	user, err := ctl.Gate.Admit(ctx, conn, credential(c.Request))
	if err != nil {
		// socketError already queued by the gate; the connection stays inert.
		user = nil
	}

	go ctl.readPump(ctx, cancel, conn, user)
}

// credential extracts the access token from the handshake: the accessToken
// cookie, or the auth query field for clients that cannot send cookies.
func credential(r *http.Request) string {
	if c, err := r.Cookie("accessToken"); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("auth")
}

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.pingPeriod())
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "adapters.ws").Str("conn", string(c.id)).Msg("write failed")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, c *wsConn, user *domain.User) {
	defer func() {
		ctl.Registry.Unbind(c.id)
		cancel()
		c.Close()
		log.Info().Str("module", "adapters.ws").Str("conn", string(c.id)).Msg("connection closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			if user == nil {
				continue // unauthenticated connections process nothing
			}
			ctl.dispatch(ctx, c, user, data)
		}
	}
}

// dispatch matches every variant of the closed inbound set; unknown names
// never get here because DecodeInbound rejects them.
func (ctl *Controller) dispatch(ctx context.Context, c core.Conn, user *domain.User, data []byte) {
	ev, err := core.DecodeInbound(data)
	if err != nil {
		log.Debug().Err(err).Str("module", "adapters.ws").Str("conn", string(c.ID())).Msg("bad inbound frame")
		ctl.Relay.Send(c, core.ErrorEvent{Message: "Unrecognized event"})
		return
	}

	switch ev := ev.(type) {
	case core.JoinChat:
		ctl.Registry.JoinRoom(c.ID(), core.GroupKey(ev.ChatID))
		log.Info().Str("module", "adapters.ws").Str("user", string(user.ID)).Str("chat", string(ev.ChatID)).Msg("joined chat")
	case core.LeaveChat:
		ctl.Registry.LeaveRoom(c.ID(), core.GroupKey(ev.ChatID))
	case core.Typing:
		ctl.echoToChat(c, core.GroupKey(ev.ChatID), ev)
	case core.StopTyping:
		ctl.echoToChat(c, core.GroupKey(ev.ChatID), ev)
	case core.AdminJoinRequest:
		ctl.logHandled(c, ctl.Coordinator.RequestJoin(ctx, c, ev.User, ev.RoomID))
	case core.AdminApproveUser:
		ctl.logHandled(c, ctl.Coordinator.Approve(ctx, c, ev.RoomID, ev.UserID))
	case core.AdminRejectUser:
		ctl.logHandled(c, ctl.Coordinator.Reject(ctx, c, ev.UserID))
	}
}

// Coordinator failures already reached the initiating connection as events;
// here they only leave a trace.
func (ctl *Controller) logHandled(c core.Conn, err error) {
	if err != nil {
		log.Debug().Err(err).Str("module", "adapters.ws").Str("conn", string(c.ID())).Msg("signaling event failed")
	}
}

// echoToChat forwards a typing indicator to everyone in the chat group except
// the emitting connection. The relay has no except-sender logic, so the
// filtering happens here, at the caller.
func (ctl *Controller) echoToChat(c core.Conn, key core.GroupKey, ev core.Event) {
	f, err := core.Encode(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Str("event", ev.EventName()).Msg("encode failed")
		return
	}
	for _, peer := range ctl.Registry.Connections(key) {
		if peer.ID() == c.ID() {
			continue
		}
		_ = peer.TrySend(f)
	}
}

func (ctl *Controller) pingPeriod() time.Duration {
	if ctl.PingPeriod > 0 {
		return ctl.PingPeriod
	}
	return 54 * time.Second
}
