package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketplace-chat/internal/apperr"
	"marketplace-chat/internal/models"
	"marketplace-chat/internal/repositories"
)

// StatusService owns the per-(user,chat) status state machine: visibility
// transitions plus the orthogonal notification mode. Each participant only
// ever mutates their own row, so concurrent updates never conflict.
type StatusService struct {
	store       repositories.Store
	chats       repositories.ChatRepository
	statuses    repositories.StatusRepository
	broadcaster Broadcaster
	log         *logrus.Logger
}

func NewStatusService(store repositories.Store, chats repositories.ChatRepository, statuses repositories.StatusRepository, broadcaster Broadcaster, log *logrus.Logger) *StatusService {
	return &StatusService{
		store:       store,
		chats:       chats,
		statuses:    statuses,
		broadcaster: broadcaster,
		log:         log,
	}
}

// GetStatus loads the caller's status row for a chat. The creation invariant
// guarantees one exists; a miss here is reported, not repaired.
func (s *StatusService) GetStatus(ctx context.Context, chatID, userID string) (models.UserChatStatus, error) {
	status, err := s.statuses.GetByChatAndUser(ctx, s.store.Reader(), chatID, userID)
	if err != nil {
		return models.UserChatStatus{}, mapStoreErr(err)
	}
	return status, nil
}

// AssertAccessible rejects statuses that can no longer be messaged into.
// Hidden chats stay accessible; only removed ones are closed.
func (s *StatusService) AssertAccessible(status models.UserChatStatus) error {
	if !status.ChatStatus.Accessible() {
		return apperr.New(apperr.KindForbidden, "chat is not accessible")
	}
	return nil
}

// UpdateStatus applies a partial update to the caller's own status row. The
// row must belong to both the chat and the caller; an update that changes
// nothing succeeds without touching the store.
func (s *StatusService) UpdateStatus(ctx context.Context, chatID, statusID, callerID string, update models.StatusUpdate) (models.UserChatStatus, error) {
	if uuid.Validate(chatID) != nil || uuid.Validate(statusID) != nil {
		return models.UserChatStatus{}, apperr.New(apperr.KindBadRequest, "malformed id")
	}

	chat, err := s.chats.GetByID(ctx, s.store.Reader(), chatID)
	if err != nil {
		return models.UserChatStatus{}, mapStoreErr(err)
	}
	if !chat.HasParticipant(callerID) {
		return models.UserChatStatus{}, apperr.New(apperr.KindForbidden, "not a chat participant")
	}

	current, err := s.statuses.GetByID(ctx, s.store.Reader(), statusID)
	if err != nil {
		return models.UserChatStatus{}, mapStoreErr(err)
	}
	if current.ChatID != chatID || current.UserID != callerID {
		return models.UserChatStatus{}, apperr.New(apperr.KindBadRequest, "status row does not match chat and caller")
	}

	if update.Empty(current) {
		return current, nil
	}

	var updated models.UserChatStatus
	err = s.store.WithinTx(ctx, func(tx *repositories.Tx) error {
		var txErr error
		updated, txErr = s.statuses.Update(ctx, tx.Q, statusID, update)
		if txErr != nil {
			return txErr
		}
		tx.AfterCommit(func() {
			s.broadcaster.ToRoom(chat.RoomName, []string{chat.InitiatorID, chat.ParticipantID},
				models.ServerEvent{Event: models.EventUpdateUserChatStatus, Data: updated})
		})
		return nil
	})
	if err != nil {
		return models.UserChatStatus{}, mapStoreErr(err)
	}

	s.log.WithFields(logrus.Fields{
		"chat_id":   chatID,
		"status_id": statusID,
		"user_id":   callerID,
	}).Debug("chat status updated")
	return updated, nil
}
