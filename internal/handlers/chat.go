package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"marketplace-chat/internal/services"
)

// ChatHandler exposes the chat, status and message operations over HTTP.
type ChatHandler struct {
	chats    *services.ChatService
	statuses *services.StatusService
	messages *services.MessageService
	log      *logrus.Logger
}

func NewChatHandler(chats *services.ChatService, statuses *services.StatusService, messages *services.MessageService, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, statuses: statuses, messages: messages, log: log}
}

// CreateChat opens a chat between the caller and another user.
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req struct {
		ParticipantID string `json:"participantId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := h.chats.Create(c.Request.Context(), c.GetString("userID"), req.ParticipantID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, chat)
}

// ListChats returns the caller's visible chats.
func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.chats.ListForUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// DeleteChat removes a chat; either participant may do it.
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	err := h.chats.Delete(c.Request.Context(), c.Param("chat_id"), c.GetString("userID"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStatus applies a partial update to the caller's own status row.
func (h *ChatHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		ChatStatus         *string `json:"chatStatus"`
		NotificationStatus *string `json:"notificationStatus"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update, err := statusUpdateFromRequest(req.ChatStatus, req.NotificationStatus)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	status, err := h.statuses.UpdateStatus(c.Request.Context(),
		c.Param("chat_id"), c.Param("status_id"), c.GetString("userID"), update)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// PostMessage validates, encrypts and stores a message, answering with the
// plaintext body.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messages.Create(c.Request.Context(), c.Param("chat_id"), c.GetString("userID"), req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListMessages pages through the chat history, newest first.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	page, err := positiveQueryInt(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pageSize, err := positiveQueryInt(c, "pageSize", 20)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.messages.List(c.Request.Context(), c.Param("chat_id"), c.GetString("userID"), page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMessage returns one of the caller's own messages.
func (h *ChatHandler) GetMessage(c *gin.Context) {
	msg, err := h.messages.FindOne(c.Request.Context(),
		c.Param("chat_id"), c.Param("message_id"), c.GetString("userID"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// UpdateMessage edits one of the caller's own messages.
func (h *ChatHandler) UpdateMessage(c *gin.Context) {
	var req services.MessageUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messages.Update(c.Request.Context(),
		c.Param("chat_id"), c.Param("message_id"), c.GetString("userID"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// DeleteMessage removes one of the caller's own messages and returns its
// decrypted content.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	msg, err := h.messages.Delete(c.Request.Context(),
		c.Param("chat_id"), c.Param("message_id"), c.GetString("userID"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func positiveQueryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 1 {
		return 0, &queryError{name: name}
	}
	return val, nil
}

type queryError struct{ name string }

func (e *queryError) Error() string { return "invalid " + e.name }
