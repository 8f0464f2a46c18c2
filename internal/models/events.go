package models

// Server-pushed event names. Chat-scoped events are addressed by the chat's
// room name, user-scoped ones by user id.
const (
	EventChatCreated          = "chatCreated"
	EventChatDeleted          = "chatDeleted"
	EventNewChatMessage       = "newChatMessage"
	EventUpdateChatMessage    = "updateChatMessage"
	EventDeleteChatMessage    = "deleteChatMessage"
	EventMessageRead          = "messageRead"
	EventUserTyping           = "userTyping"
	EventStopTyping           = "stopTyping"
	EventUpdateUserChatStatus = "updateUserChatStatus"
)

// Client-invoked operation names carried over the websocket.
const (
	OpStartTyping = "startTyping"
	OpStopTyping  = "stopTyping"
)

// ServerEvent is the envelope pushed to connected clients.
type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ClientEvent is the envelope read from a connected client.
type ClientEvent struct {
	Event string          `json:"event"`
	Data  ClientEventData `json:"data"`
}

type ClientEventData struct {
	ChatID string `json:"chatId"`
}

// TypingEvent is the payload of userTyping / stopTyping.
type TypingEvent struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

// ChatDeletedEvent carries the id of a removed chat.
type ChatDeletedEvent struct {
	ChatID string `json:"chatId"`
}

// MessageRefEvent identifies one message within its chat; the payload of
// deleteChatMessage and messageRead.
type MessageRefEvent struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
}
