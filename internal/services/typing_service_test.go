package services

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-chat/internal/apperr"
	"marketplace-chat/internal/mocks"
	"marketplace-chat/internal/models"
)

func newTypingServiceFixture() (*TypingService, *mocks.ChatRepositoryMock, *mocks.StatusRepositoryMock, *mocks.BroadcasterMock) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	chats := new(mocks.ChatRepositoryMock)
	statuses := new(mocks.StatusRepositoryMock)
	broadcaster := new(mocks.BroadcasterMock)
	return NewTypingService(&mocks.FakeStore{}, chats, statuses, broadcaster, log), chats, statuses, broadcaster
}

func TestTypingRelayExcludesSender(t *testing.T) {
	service, chats, statuses, broadcaster := newTypingServiceFixture()
	userID := uuid.NewString()
	chat := models.Chat{
		ID:            uuid.NewString(),
		RoomName:      "chat-" + uuid.NewString(),
		InitiatorID:   userID,
		ParticipantID: uuid.NewString(),
	}

	chats.On("GetByID", mock.Anything, mock.Anything, chat.ID).Return(chat, nil).Once()
	statuses.On("GetByChatAndUser", mock.Anything, mock.Anything, chat.ID, userID).
		Return(models.UserChatStatus{ChatID: chat.ID, UserID: userID}, nil).Once()
	broadcaster.On("ToRoomExcept", chat.RoomName, []string{chat.InitiatorID, chat.ParticipantID}, userID,
		models.ServerEvent{Event: models.EventUserTyping, Data: models.TypingEvent{ChatID: chat.ID, UserID: userID}}).Once()

	require.NoError(t, service.Start(context.Background(), userID, chat.ID))
	chats.AssertExpectations(t)
	statuses.AssertExpectations(t)
	broadcaster.AssertExpectations(t)
}

func TestStopTypingRelays(t *testing.T) {
	service, chats, statuses, broadcaster := newTypingServiceFixture()
	userID := uuid.NewString()
	chat := models.Chat{
		ID:            uuid.NewString(),
		RoomName:      "chat-" + uuid.NewString(),
		InitiatorID:   uuid.NewString(),
		ParticipantID: userID,
	}

	chats.On("GetByID", mock.Anything, mock.Anything, chat.ID).Return(chat, nil).Once()
	statuses.On("GetByChatAndUser", mock.Anything, mock.Anything, chat.ID, userID).
		Return(models.UserChatStatus{ChatID: chat.ID, UserID: userID}, nil).Once()
	broadcaster.On("ToRoomExcept", chat.RoomName, []string{chat.InitiatorID, chat.ParticipantID}, userID,
		models.ServerEvent{Event: models.EventStopTyping, Data: models.TypingEvent{ChatID: chat.ID, UserID: userID}}).Once()

	require.NoError(t, service.Stop(context.Background(), userID, chat.ID))
	broadcaster.AssertExpectations(t)
}

func TestTypingOutsiderForbidden(t *testing.T) {
	service, chats, _, broadcaster := newTypingServiceFixture()
	chat := models.Chat{
		ID:            uuid.NewString(),
		InitiatorID:   uuid.NewString(),
		ParticipantID: uuid.NewString(),
	}

	chats.On("GetByID", mock.Anything, mock.Anything, chat.ID).Return(chat, nil).Once()

	err := service.Start(context.Background(), uuid.NewString(), chat.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	broadcaster.AssertNotCalled(t, "ToRoomExcept", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTypingMalformedChatIDBadRequest(t *testing.T) {
	service, _, _, broadcaster := newTypingServiceFixture()

	err := service.Start(context.Background(), uuid.NewString(), "not-a-uuid")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	broadcaster.AssertNotCalled(t, "ToRoomExcept", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
