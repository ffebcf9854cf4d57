package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rsinha/huddle/internal/app"
	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
	"github.com/rsinha/huddle/internal/store"
)

type Handlers struct {
	Rooms    app.RoomStore
	Chats    app.ChatStore
	Messages app.MessageStore
	Relay    *core.Relay
}

type createRoomRequest struct {
	Password string `json:"password"`
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	room, err := h.Rooms.CreateRoom(c.Request.Context(), currentUser(c), req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create room"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

type joinRoomRequest struct {
	Link     string `json:"link"`
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

// JoinRoom validates room access ahead of the socket-level approval flow:
// invite links bypass the password, direct joins must present it.
func (h *Handlers) JoinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	id := req.RoomID
	viaLink := false
	if req.Link != "" {
		_, after, found := strings.Cut(req.Link, "=")
		if !found || after == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid link"})
			return
		}
		id = after
		viaLink = true
	}

	room, err := h.Rooms.FindRoom(c.Request.Context(), domain.RoomID(id))
	if err != nil {
		status, msg := http.StatusInternalServerError, "Error fetching room data"
		if errors.Is(err, core.ErrNotFound) {
			status, msg = http.StatusNotFound, "Room not found"
		}
		c.JSON(status, gin.H{"message": msg})
		return
	}
	if !room.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"message": "Room is not active"})
		return
	}

	if !viaLink && room.Password != "" {
		if req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Password is required"})
			return
		}
		if err := store.ComparePassword(room, req.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid password"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"room": room})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage persists the message, then fans messageReceived out to every
// participant's personal group except the sender. The sender filter lives
// here; the relay has none.
func (h *Handlers) SendMessage(c *gin.Context) {
	sender := currentUser(c)
	chatID := domain.ChatID(c.Param("chatId"))

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Message content is required"})
		return
	}

	chat, err := h.Chats.FindChat(c.Request.Context(), chatID)
	if err != nil {
		status, msg := http.StatusInternalServerError, "Error fetching chat data"
		if errors.Is(err, core.ErrNotFound) {
			status, msg = http.StatusNotFound, "Chat does not exist"
		}
		c.JSON(status, gin.H{"message": msg})
		return
	}
	if !chat.HasParticipant(sender) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not a part of this chat"})
		return
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		Sender:    sender,
		Content:   req.Content,
		Chat:      chatID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Messages.CreateMessage(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send message"})
		return
	}

	for _, p := range chat.Participants {
		if p == sender {
			continue
		}
		h.Relay.Emit(core.PersonalGroup(p), core.MessageReceived{Message: *msg})
	}
	log.Info().Str("module", "adapters.http").Str("chat", string(chatID)).Str("sender", string(sender)).Msg("message sent")

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// DeleteMessage is sender-only. On success every other participant's personal
// group gets messageDeleted with the removed document.
func (h *Handlers) DeleteMessage(c *gin.Context) {
	caller := currentUser(c)
	chatID := domain.ChatID(c.Param("chatId"))
	messageID := domain.MessageID(c.Param("messageId"))

	chat, err := h.Chats.FindChat(c.Request.Context(), chatID)
	if err != nil {
		status, msg := http.StatusInternalServerError, "Error fetching chat data"
		if errors.Is(err, core.ErrNotFound) {
			status, msg = http.StatusNotFound, "Chat does not exist"
		}
		c.JSON(status, gin.H{"message": msg})
		return
	}
	if !chat.HasParticipant(caller) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not a part of this chat"})
		return
	}

	msg, err := h.Messages.FindMessage(c.Request.Context(), messageID)
	if err != nil {
		status, m := http.StatusInternalServerError, "Error fetching message"
		if errors.Is(err, core.ErrNotFound) {
			status, m = http.StatusNotFound, "Message does not exist"
		}
		c.JSON(status, gin.H{"message": m})
		return
	}
	if msg.Sender != caller {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only delete your own messages"})
		return
	}

	if err := h.Messages.DeleteMessage(c.Request.Context(), messageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete message"})
		return
	}

	for _, p := range chat.Participants {
		if p == caller {
			continue
		}
		h.Relay.Emit(core.PersonalGroup(p), core.MessageDeleted{Message: *msg})
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}
