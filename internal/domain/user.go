// Package domain contains entities without logic, just meta-data.
package domain

type UserID string

type User struct {
	ID       UserID `json:"_id" bson:"_id"`
	Username string `json:"username" bson:"username"`
	Email    string `json:"email,omitempty" bson:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}
