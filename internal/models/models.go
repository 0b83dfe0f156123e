package models

import "time"

// User is owned by the auth service; this service only reads it.
type User struct {
	ID     string `bson:"_id,omitempty" json:"id"`
	Name   string `bson:"name" json:"name"`
	Email  string `bson:"email" json:"email"`
	Avatar string `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Bio    string `bson:"bio,omitempty" json:"bio,omitempty"`
}

// Connection edge statuses.
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
)

// Derived connection status between two users, from one user's perspective.
const (
	StatusNone      = "none"
	StatusPending   = "pending"
	StatusReceived  = "received"
	StatusConnected = "connected"
)

// Connection is a directional friend-request edge. At most one edge exists
// per unordered user pair, in either direction.
type Connection struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Requester string    `bson:"requester" json:"requester"`
	Recipient string    `bson:"recipient" json:"recipient"`
	Status    string    `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Message is immutable once created except for the unread->read transition.
type Message struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	Sender    string     `bson:"sender" json:"sender"`
	Receiver  string     `bson:"receiver" json:"receiver"`
	Content   string     `bson:"content" json:"content"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	Read      bool       `bson:"read" json:"read"`
	ReadAt    *time.Time `bson:"read_at,omitempty" json:"readAt,omitempty"`
}

// ConversationSummary is the derived per-counterpart inbox entry. Never stored.
type ConversationSummary struct {
	User        User     `json:"user"`
	LastMessage *Message `json:"lastMessage"`
	UnreadCount int      `json:"unreadCount"`
}

// UserWithStatus is a listing row: a user plus the viewer's connection status
// toward them.
type UserWithStatus struct {
	User
	ConnectionStatus string `json:"connectionStatus"`
}
