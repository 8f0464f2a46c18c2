package models

import "time"

// ChatStatus is the per-user visibility of a chat.
type ChatStatus string

const (
	ChatStatusActive  ChatStatus = "active"
	ChatStatusHidden  ChatStatus = "hidden"
	ChatStatusRemoved ChatStatus = "removed"
)

// Accessible reports whether a chat in this state can still be messaged into.
// Hidden chats stay reachable; only removed ones are closed off.
func (s ChatStatus) Accessible() bool {
	return s == ChatStatusActive || s == ChatStatusHidden
}

// NotificationStatus is the per-user notification mode, independent of
// visibility.
type NotificationStatus string

const (
	NotificationMuted   NotificationStatus = "muted"
	NotificationUnmuted NotificationStatus = "unmuted"
)

// UserChatStatus is the single status row per (chat, user) pair. Exactly one
// exists per participant for the lifetime of the chat.
type UserChatStatus struct {
	ID                 string             `db:"id" json:"id"`
	ChatID             string             `db:"chat_id" json:"chatId"`
	UserID             string             `db:"user_id" json:"userId"`
	ChatStatus         ChatStatus         `db:"chat_status" json:"chatStatus"`
	NotificationStatus NotificationStatus `db:"notification_status" json:"notificationStatus"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updatedAt"`
}

// StatusUpdate is a partial update of a status row; nil fields are untouched.
type StatusUpdate struct {
	ChatStatus         *ChatStatus         `json:"chatStatus,omitempty"`
	NotificationStatus *NotificationStatus `json:"notificationStatus,omitempty"`
}

// Empty reports whether the update would not change the given row.
func (u StatusUpdate) Empty(current UserChatStatus) bool {
	if u.ChatStatus != nil && *u.ChatStatus != current.ChatStatus {
		return false
	}
	if u.NotificationStatus != nil && *u.NotificationStatus != current.NotificationStatus {
		return false
	}
	return true
}
