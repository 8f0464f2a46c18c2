package models

import "time"

// Chat is a 1:1 conversation between exactly two fixed users. RoomName is the
// broadcast address for every event scoped to this chat.
type Chat struct {
	ID            string    `db:"id" json:"id"`
	RoomName      string    `db:"room_name" json:"roomName"`
	InitiatorID   string    `db:"initiator_id" json:"initiatorId"`
	ParticipantID string    `db:"participant_id" json:"participantId"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// HasParticipant reports whether userID is one of the chat's two participants.
func (c Chat) HasParticipant(userID string) bool {
	return c.InitiatorID == userID || c.ParticipantID == userID
}

// OtherParticipant returns the counterpart of userID in this chat.
func (c Chat) OtherParticipant(userID string) string {
	if c.InitiatorID == userID {
		return c.ParticipantID
	}
	return c.InitiatorID
}

// ChatWithStatuses bundles a chat with the status rows of both participants.
type ChatWithStatuses struct {
	Chat     Chat
	Statuses []UserChatStatus
}

// ChatSummary is the per-user list view of a chat.
type ChatSummary struct {
	ChatID             string             `json:"chatId"`
	RoomName           string             `json:"roomName"`
	FriendID           string             `json:"friendId"`
	ChatStatus         ChatStatus         `json:"chatStatus"`
	NotificationStatus NotificationStatus `json:"notificationStatus"`
	CreatedAt          time.Time          `json:"createdAt"`
}
