package core

import (
	"encoding/json"
	"fmt"

	"github.com/rsinha/huddle/internal/domain"
)

// Wire format is a JSON envelope: {"event": <name>, "payload": <object>}.
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is a server-to-client signaling event. The set is closed: every
// variant lives in this file and carries a typed payload.
type Event interface {
	EventName() string
}

type Connected struct{}

type SocketError struct {
	Message string `json:"message"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

type Typing struct {
	ChatID domain.ChatID `json:"chatId"`
}

type StopTyping struct {
	ChatID domain.ChatID `json:"chatId"`
}

type AdminUserApprove struct {
	User domain.User `json:"user"`
}

type RoomJoinApproved struct {
	RoomID domain.RoomID `json:"roomId"`
}

type UserJoined struct {
	UserID domain.UserID `json:"userId"`
}

type RoomJoinRejected struct {
	Message string `json:"message"`
}

type MessageReceived struct {
	domain.Message
}

type MessageDeleted struct {
	domain.Message
}

func (Connected) EventName() string        { return "connected" }
func (SocketError) EventName() string      { return "socketError" }
func (ErrorEvent) EventName() string       { return "error" }
func (Typing) EventName() string           { return "typing" }
func (StopTyping) EventName() string       { return "stopTyping" }
func (AdminUserApprove) EventName() string { return "admin:user-approve" }
func (RoomJoinApproved) EventName() string { return "room:join:approved" }
func (UserJoined) EventName() string       { return "user:joined" }
func (RoomJoinRejected) EventName() string { return "room:join:rejected" }
func (MessageReceived) EventName() string  { return "messageReceived" }
func (MessageDeleted) EventName() string   { return "messageDeleted" }

// Encode marshals an event into its wire envelope. The payload is delivered
// verbatim to every recipient, one encode per emit.
func Encode(ev Event) (Frame, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", ev.EventName(), err)
	}
	frame, err := json.Marshal(envelope{Event: ev.EventName(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", ev.EventName(), err)
	}
	return frame, nil
}

// Inbound is a client-to-server signaling event. Closed set; DecodeInbound
// rejects anything outside it so the dispatcher can total-match on type.
type Inbound interface {
	inbound()
}

type JoinChat struct {
	ChatID domain.ChatID `json:"chatId"`
}

type LeaveChat struct {
	ChatID domain.ChatID `json:"chatId"`
}

type AdminJoinRequest struct {
	User   domain.User   `json:"user"`
	RoomID domain.RoomID `json:"roomId"`
}

type AdminApproveUser struct {
	RoomID domain.RoomID `json:"roomId"`
	UserID domain.UserID `json:"userId"`
}

type AdminRejectUser struct {
	UserID domain.UserID `json:"userId"`
}

func (JoinChat) inbound()         {}
func (LeaveChat) inbound()        {}
func (Typing) inbound()           {}
func (StopTyping) inbound()       {}
func (AdminJoinRequest) inbound() {}
func (AdminApproveUser) inbound() {}
func (AdminRejectUser) inbound()  {}

// DecodeInbound parses a wire frame into its typed variant.
func DecodeInbound(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Event {
	case "joinChat":
		var ev JoinChat
		return ev, env.into(&ev)
	case "leaveChat":
		var ev LeaveChat
		return ev, env.into(&ev)
	case "typing":
		var ev Typing
		return ev, env.into(&ev)
	case "stopTyping":
		var ev StopTyping
		return ev, env.into(&ev)
	case "admin:join-request":
		var ev AdminJoinRequest
		return ev, env.into(&ev)
	case "admin:approve-user":
		var ev AdminApproveUser
		return ev, env.into(&ev)
	case "admin:reject-user":
		var ev AdminRejectUser
		return ev, env.into(&ev)
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
}

func (e envelope) into(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Event, err)
	}
	return nil
}
