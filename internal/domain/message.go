package domain

import "time"

type MessageID string

type Attachment struct {
	URL       string `json:"url" bson:"url"`
	LocalPath string `json:"localPath,omitempty" bson:"localPath,omitempty"`
}

type Message struct {
	ID          MessageID    `json:"_id" bson:"_id"`
	Sender      UserID       `json:"sender" bson:"sender"`
	Content     string       `json:"content" bson:"content"`
	Attachments []Attachment `json:"attachments,omitempty" bson:"attachments,omitempty"`
	Chat        ChatID       `json:"chat" bson:"chat"`
	CreatedAt   time.Time    `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt   time.Time    `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
