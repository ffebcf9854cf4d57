package domain

import "time"

type ChatID string

type Chat struct {
	ID           ChatID    `json:"_id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	IsGroupChat  bool      `json:"isGroupChat" bson:"isGroupChat"`
	Participants []UserID  `json:"participants" bson:"participants"`
	Admin        UserID    `json:"admin,omitempty" bson:"admin,omitempty"`
	LastMessage  MessageID `json:"lastMessage,omitempty" bson:"lastMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

func (c *Chat) HasParticipant(id UserID) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}
