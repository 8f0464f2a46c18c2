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
	"marketplace-chat/internal/repositories"
)

type statusServiceFixture struct {
	service     *StatusService
	chats       *mocks.ChatRepositoryMock
	statuses    *mocks.StatusRepositoryMock
	broadcaster *mocks.BroadcasterMock
}

func newStatusServiceFixture() *statusServiceFixture {
	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &statusServiceFixture{
		chats:       new(mocks.ChatRepositoryMock),
		statuses:    new(mocks.StatusRepositoryMock),
		broadcaster: new(mocks.BroadcasterMock),
	}
	f.service = NewStatusService(&mocks.FakeStore{}, f.chats, f.statuses, f.broadcaster, log)
	return f
}

func (f *statusServiceFixture) assertExpectations(t *testing.T) {
	f.chats.AssertExpectations(t)
	f.statuses.AssertExpectations(t)
	f.broadcaster.AssertExpectations(t)
}

func statusChatFixture(callerID string) models.Chat {
	return models.Chat{
		ID:            uuid.NewString(),
		RoomName:      "chat-" + uuid.NewString(),
		InitiatorID:   callerID,
		ParticipantID: uuid.NewString(),
	}
}

func TestUpdateStatusTransitionBroadcasts(t *testing.T) {
	f := newStatusServiceFixture()
	callerID := uuid.NewString()
	chat := statusChatFixture(callerID)
	current := models.UserChatStatus{
		ID:                 uuid.NewString(),
		ChatID:             chat.ID,
		UserID:             callerID,
		ChatStatus:         models.ChatStatusActive,
		NotificationStatus: models.NotificationUnmuted,
	}
	updated := current
	updated.ChatStatus = models.ChatStatusHidden

	f.chats.On("GetByID", mock.Anything, mock.Anything, chat.ID).Return(chat, nil).Once()
	f.statuses.On("GetByID", mock.Anything, mock.Anything, current.ID).Return(current, nil).Once()

	hidden := models.ChatStatusHidden
	update := models.StatusUpdate{ChatStatus: &hidden}
	f.statuses.On("Update", mock.Anything, mock.Anything, current.ID, update).Return(updated, nil).Once()
	f.broadcaster.On("ToRoom", chat.RoomName, []string{chat.InitiatorID, chat.ParticipantID},
		models.ServerEvent{Event: models.EventUpdateUserChatStatus, Data: updated}).Once()

	got, err := f.service.UpdateStatus(context.Background(), chat.ID, current.ID, callerID, update)
	require.NoError(t, err)
	assert.Equal(t, models.ChatStatusHidden, got.ChatStatus)
	f.assertExpectations(t)
}

func TestUpdateStatusNoopSkipsWrite(t *testing.T) {
	f := newStatusServiceFixture()
	callerID := uuid.NewString()
	chat := statusChatFixture(callerID)
	current := models.UserChatStatus{
		ID:                 uuid.NewString(),
		ChatID:             chat.ID,
		UserID:             callerID,
		ChatStatus:         models.ChatStatusHidden,
		NotificationStatus: models.NotificationMuted,
	}

	f.chats.On("GetByID", mock.Anything, mock.Anything, chat.ID).Return(chat, nil).Once()
	f.statuses.On("GetByID", mock.Anything, mock.Anything, current.ID).Return(current, nil).Once()

	hidden := models.ChatStatusHidden
	got, err := f.service.UpdateStatus(context.Background(), chat.ID, current.ID, callerID,
		models.StatusUpdate{ChatStatus: &hidden})
	require.NoError(t, err)
	assert.Equal(t, current, got)
	f.statuses.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.broadcaster.AssertNotCalled(t, "ToRoom", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestUpdateStatusForeignRowBadRequest(t *testing.T) {
	f := newStatusServiceFixture()
	callerID := uuid.NewString()
	chat := statusChatFixture(callerID)
	// Row belongs to the other participant, not the caller.
	current := models.UserChatStatus{
		ID:     uuid.NewString(),
		ChatID: chat.ID,
		UserID: chat.ParticipantID,
	}

	f.chats.On("GetByID", mock.Anything, mock.Anything, chat.ID).Return(chat, nil).Once()
	f.statuses.On("GetByID", mock.Anything, mock.Anything, current.ID).Return(current, nil).Once()

	muted := models.NotificationMuted
	_, err := f.service.UpdateStatus(context.Background(), chat.ID, current.ID, callerID,
		models.StatusUpdate{NotificationStatus: &muted})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	f.statuses.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestUpdateStatusWrongChatBadRequest(t *testing.T) {
	f := newStatusServiceFixture()
	callerID := uuid.NewString()
	chat := statusChatFixture(callerID)
	current := models.UserChatStatus{
		ID:     uuid.NewString(),
		ChatID: uuid.NewString(),
		UserID: callerID,
	}

	f.chats.On("GetByID", mock.Anything, mock.Anything, chat.ID).Return(chat, nil).Once()
	f.statuses.On("GetByID", mock.Anything, mock.Anything, current.ID).Return(current, nil).Once()

	muted := models.NotificationMuted
	_, err := f.service.UpdateStatus(context.Background(), chat.ID, current.ID, callerID,
		models.StatusUpdate{NotificationStatus: &muted})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	f.assertExpectations(t)
}

func TestUpdateStatusOutsiderForbidden(t *testing.T) {
	f := newStatusServiceFixture()
	chat := statusChatFixture(uuid.NewString())

	f.chats.On("GetByID", mock.Anything, mock.Anything, chat.ID).Return(chat, nil).Once()

	muted := models.NotificationMuted
	_, err := f.service.UpdateStatus(context.Background(), chat.ID, uuid.NewString(), uuid.NewString(),
		models.StatusUpdate{NotificationStatus: &muted})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	f.assertExpectations(t)
}

func TestGetStatusDuplicateRowsInternal(t *testing.T) {
	f := newStatusServiceFixture()
	chatID, userID := uuid.NewString(), uuid.NewString()

	f.statuses.On("GetByChatAndUser", mock.Anything, mock.Anything, chatID, userID).
		Return(models.UserChatStatus{}, repositories.ErrStatusCardinality).Once()

	_, err := f.service.GetStatus(context.Background(), chatID, userID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))
	f.assertExpectations(t)
}

func TestAssertAccessible(t *testing.T) {
	f := newStatusServiceFixture()

	assert.NoError(t, f.service.AssertAccessible(models.UserChatStatus{ChatStatus: models.ChatStatusActive}))
	assert.NoError(t, f.service.AssertAccessible(models.UserChatStatus{ChatStatus: models.ChatStatusHidden}))

	err := f.service.AssertAccessible(models.UserChatStatus{ChatStatus: models.ChatStatusRemoved})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}
