package models

import "time"

// Message belongs to exactly one chat. Content holds ciphertext at rest; the
// service layer swaps plaintext back in before anything leaves the process.
// ChatRoom is denormalized from the chat for fast broadcast addressing.
type Message struct {
	ID        string    `db:"id" json:"id"`
	ChatID    string    `db:"chat_id" json:"chatId"`
	ChatRoom  string    `db:"chat_room" json:"chatRoom"`
	SenderID  string    `db:"sender_id" json:"senderId"`
	Content   string    `db:"content" json:"content"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// MessageUpdate is a partial update of a message; nil fields are dropped from
// the UPDATE entirely.
type MessageUpdate struct {
	Content *string
	IsRead  *bool
}

// Empty reports whether nothing is left to write.
func (u MessageUpdate) Empty() bool {
	return u.Content == nil && u.IsRead == nil
}

// MessagePage is one page of a chat's history, newest first.
type MessagePage struct {
	Messages []Message `json:"messages"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
	Total    int       `json:"total"`
}
