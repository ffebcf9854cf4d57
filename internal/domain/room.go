package domain

import "time"

type RoomID string

// Room is the durable call-room record. The admin is implicitly a member;
// participants only grow through the approval flow.
type Room struct {
	RoomID       RoomID    `json:"roomId" bson:"roomId"`
	Admin        UserID    `json:"admin" bson:"admin"`
	Participants []UserID  `json:"participants" bson:"participants"`
	Invites      []UserID  `json:"invites,omitempty" bson:"invites,omitempty"`
	Password     string    `json:"-" bson:"password,omitempty"`
	ChatID       ChatID    `json:"chatId,omitempty" bson:"chatId,omitempty"`
	IsActive     bool      `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

func (r *Room) HasParticipant(id UserID) bool {
	for _, p := range r.Participants {
		if p == id {
			return true
		}
	}
	return false
}
