package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
)

// Coordinator runs the admin-approval handshake for call rooms. Durable
// participant state lives in the room store; the coordinator drives it and
// the registry's live subscriptions, never holding a registry lock across
// store I/O.
//
// Every failure is surfaced as an event on the initiating connection before
// the wrapped taxonomy error returns; callers only log it.
type Coordinator struct {
	registry *core.Registry
	relay    *core.Relay
	rooms    RoomStore
	pending  *PendingJoinRequests
}

func NewCoordinator(registry *core.Registry, relay *core.Relay, rooms RoomStore, pending *PendingJoinRequests) *Coordinator {
	return &Coordinator{registry: registry, relay: relay, rooms: rooms, pending: pending}
}

// RequestJoin forwards a join request to every live connection of the room's
// admin and arms the pending-request TTL. Failures go back to the requester
// only.
func (co *Coordinator) RequestJoin(ctx context.Context, c core.Conn, user domain.User, roomID domain.RoomID) error {
	room, err := co.rooms.FindRoom(ctx, roomID)
	if err != nil {
		return co.fail(c, err, "Room or admin not found")
	}
	if !room.IsActive {
		co.relay.Send(c, core.ErrorEvent{Message: "Room is not active"})
		return fmt.Errorf("%w: room %s is not active", core.ErrForbidden, roomID)
	}
	if room.Admin == "" {
		co.relay.Send(c, core.ErrorEvent{Message: "Room or admin not found"})
		return fmt.Errorf("%w: room %s has no admin", core.ErrNotFound, roomID)
	}

	adminGroup := core.PersonalGroup(room.Admin)
	if co.registry.GroupSize(adminGroup) == 0 {
		co.relay.Send(c, core.ErrorEvent{Message: "Room admin is not connected"})
		return fmt.Errorf("%w: admin of room %s has no live connection", core.ErrUnavailable, roomID)
	}

	co.pending.Add(roomID, user.ID, func() {
		log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Str("user", string(user.ID)).Msg("join request expired")
		co.relay.Emit(core.PersonalGroup(user.ID), core.RoomJoinRejected{
			Message: "Your request to join the room timed out.",
		})
	})

	co.relay.Emit(adminGroup, core.AdminUserApprove{User: user})
	log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Str("user", string(user.ID)).Msg("join request forwarded to admin")
	return nil
}

// Approve admits a user into the room: durable set union first, then the
// notifications, then the live room subscription. Only the room's admin may
// call it; the delivery channel alone proves nothing.
func (co *Coordinator) Approve(ctx context.Context, c core.Conn, roomID domain.RoomID, userID domain.UserID) error {
	actor, ok := co.registry.UserOf(c.ID())
	if !ok {
		co.relay.Send(c, core.ErrorEvent{Message: "Connection is not authenticated"})
		return fmt.Errorf("%w: connection %s is not bound", core.ErrUnauthorized, c.ID())
	}

	room, err := co.rooms.FindRoom(ctx, roomID)
	if err != nil {
		return co.fail(c, err, "Room not found")
	}
	if room.Admin != actor {
		co.relay.Send(c, core.ErrorEvent{Message: "Only the room admin can approve join requests"})
		log.Warn().Str("module", "app.coordinator").Str("room", string(roomID)).Str("actor", string(actor)).Msg("approve refused: not the admin")
		return fmt.Errorf("%w: %s is not the admin of room %s", core.ErrForbidden, actor, roomID)
	}

	if _, err := co.rooms.AddParticipant(ctx, roomID, userID); err != nil {
		// State untouched on store failure; the admin can retry safely.
		return co.fail(c, err, "Room not found")
	}
	co.pending.Resolve(roomID, userID)

	co.relay.Emit(core.PersonalGroup(userID), core.RoomJoinApproved{RoomID: roomID})
	co.relay.Emit(core.GroupKey(roomID), core.UserJoined{UserID: userID})

	conns := co.registry.Connections(core.PersonalGroup(userID))
	if len(conns) == 0 {
		// Durable approval stands; only the live subscription step failed.
		co.relay.Send(c, core.ErrorEvent{Message: "User is not connected"})
		return fmt.Errorf("%w: user %s has no live connection", core.ErrUnavailable, userID)
	}
	for _, uc := range conns {
		co.registry.JoinRoom(uc.ID(), core.GroupKey(roomID))
	}
	log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Str("user", string(userID)).Int("conns", len(conns)).Msg("user approved into room")
	return nil
}

// Reject notifies the rejected user's personal group. No durable mutation.
// The pending entry supplies the room for the admin check, since the reject
// payload carries only the user id.
func (co *Coordinator) Reject(ctx context.Context, c core.Conn, userID domain.UserID) error {
	actor, ok := co.registry.UserOf(c.ID())
	if !ok {
		co.relay.Send(c, core.ErrorEvent{Message: "Connection is not authenticated"})
		return fmt.Errorf("%w: connection %s is not bound", core.ErrUnauthorized, c.ID())
	}

	roomID, ok := co.pending.RoomFor(userID)
	if !ok {
		co.relay.Send(c, core.ErrorEvent{Message: "No pending join request for this user"})
		return fmt.Errorf("%w: no pending join request for user %s", core.ErrNotFound, userID)
	}

	room, err := co.rooms.FindRoom(ctx, roomID)
	if err != nil {
		return co.fail(c, err, "Room not found")
	}
	if room.Admin != actor {
		co.relay.Send(c, core.ErrorEvent{Message: "Only the room admin can reject join requests"})
		log.Warn().Str("module", "app.coordinator").Str("room", string(roomID)).Str("actor", string(actor)).Msg("reject refused: not the admin")
		return fmt.Errorf("%w: %s is not the admin of room %s", core.ErrForbidden, actor, roomID)
	}

	co.pending.Resolve(roomID, userID)
	co.relay.Emit(core.PersonalGroup(userID), core.RoomJoinRejected{
		Message: "Your request to join the room was rejected by the admin.",
	})
	log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Str("user", string(userID)).Msg("join request rejected")
	return nil
}

// fail maps a collaborator error to the event the initiating connection sees
// and passes the wrapped error through. Not-found keeps its message; anything
// else reads as a generic store failure with no internals leaked.
func (co *Coordinator) fail(c core.Conn, err error, notFoundMsg string) error {
	msg := "Error fetching room data"
	if errors.Is(err, core.ErrNotFound) {
		msg = notFoundMsg
	} else {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("room store failure")
		err = fmt.Errorf("%w: %w", core.ErrInternal, err)
	}
	co.relay.Send(c, core.ErrorEvent{Message: msg})
	return err
}
