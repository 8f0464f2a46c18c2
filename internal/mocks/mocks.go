package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"marketplace-chat/internal/models"
	"marketplace-chat/internal/repositories"
)

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) Create(ctx context.Context, q repositories.Querier, chat models.Chat) error {
	args := m.Called(ctx, q, chat)
	return args.Error(0)
}

func (m *ChatRepositoryMock) GetByID(ctx context.Context, q repositories.Querier, chatID string) (models.Chat, error) {
	args := m.Called(ctx, q, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetByParticipants(ctx context.Context, q repositories.Querier, userA, userB string) (models.Chat, error) {
	args := m.Called(ctx, q, userA, userB)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetWithStatuses(ctx context.Context, q repositories.Querier, chatID string) (models.ChatWithStatuses, error) {
	args := m.Called(ctx, q, chatID)
	var cw models.ChatWithStatuses
	if val := args.Get(0); val != nil {
		cw = val.(models.ChatWithStatuses)
	}
	return cw, args.Error(1)
}

func (m *ChatRepositoryMock) ListForUser(ctx context.Context, q repositories.Querier, userID string) ([]models.ChatSummary, error) {
	args := m.Called(ctx, q, userID)
	var list []models.ChatSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ChatSummary)
	}
	return list, args.Error(1)
}

func (m *ChatRepositoryMock) Delete(ctx context.Context, q repositories.Querier, chatID string) error {
	args := m.Called(ctx, q, chatID)
	return args.Error(0)
}

type StatusRepositoryMock struct {
	mock.Mock
}

func (m *StatusRepositoryMock) Create(ctx context.Context, q repositories.Querier, status models.UserChatStatus) error {
	args := m.Called(ctx, q, status)
	return args.Error(0)
}

func (m *StatusRepositoryMock) GetByID(ctx context.Context, q repositories.Querier, statusID string) (models.UserChatStatus, error) {
	args := m.Called(ctx, q, statusID)
	var status models.UserChatStatus
	if val := args.Get(0); val != nil {
		status = val.(models.UserChatStatus)
	}
	return status, args.Error(1)
}

func (m *StatusRepositoryMock) GetByChatAndUser(ctx context.Context, q repositories.Querier, chatID, userID string) (models.UserChatStatus, error) {
	args := m.Called(ctx, q, chatID, userID)
	var status models.UserChatStatus
	if val := args.Get(0); val != nil {
		status = val.(models.UserChatStatus)
	}
	return status, args.Error(1)
}

func (m *StatusRepositoryMock) Update(ctx context.Context, q repositories.Querier, statusID string, update models.StatusUpdate) (models.UserChatStatus, error) {
	args := m.Called(ctx, q, statusID, update)
	var status models.UserChatStatus
	if val := args.Get(0); val != nil {
		status = val.(models.UserChatStatus)
	}
	return status, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, q repositories.Querier, msg models.Message) error {
	args := m.Called(ctx, q, msg)
	return args.Error(0)
}

func (m *MessageRepositoryMock) List(ctx context.Context, q repositories.Querier, chatID string, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, q, chatID, limit, offset)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) Count(ctx context.Context, q repositories.Querier, chatID string) (int, error) {
	args := m.Called(ctx, q, chatID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) GetBySenderAndID(ctx context.Context, q repositories.Querier, chatID, messageID, senderID string) (models.Message, error) {
	args := m.Called(ctx, q, chatID, messageID, senderID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) Update(ctx context.Context, q repositories.Querier, messageID string, update models.MessageUpdate) (models.Message, error) {
	args := m.Called(ctx, q, messageID, update)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) Delete(ctx context.Context, q repositories.Querier, messageID string) error {
	args := m.Called(ctx, q, messageID)
	return args.Error(0)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, q repositories.Querier, userID string) (models.User, error) {
	args := m.Called(ctx, q, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByLiveAddress(ctx context.Context, q repositories.Querier, liveAddress string) (models.User, error) {
	args := m.Called(ctx, q, liveAddress)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) SetOnline(ctx context.Context, q repositories.Querier, userID, liveAddress string) error {
	args := m.Called(ctx, q, userID, liveAddress)
	return args.Error(0)
}

func (m *UserRepositoryMock) SetOffline(ctx context.Context, q repositories.Querier, userID string) error {
	args := m.Called(ctx, q, userID)
	return args.Error(0)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) ToRoom(room string, recipients []string, event models.ServerEvent) {
	m.Called(room, recipients, event)
}

func (m *BroadcasterMock) ToRoomExcept(room string, recipients []string, exceptUserID string, event models.ServerEvent) {
	m.Called(room, recipients, exceptUserID, event)
}

func (m *BroadcasterMock) ToUser(userID string, event models.ServerEvent) {
	m.Called(userID, event)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) Enqueue(ctx context.Context, kind, recipient string, payload map[string]any) {
	m.Called(ctx, kind, recipient, payload)
}

var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.StatusRepository = (*StatusRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
