package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketplace-chat/internal/apperr"
	"marketplace-chat/internal/models"
	"marketplace-chat/internal/repositories"
)

// ChatService creates and removes 1:1 chats. A chat between the same pair of
// users is unique regardless of who initiated it, and both participants get
// their status row in the same transaction as the chat itself.
type ChatService struct {
	store       repositories.Store
	chats       repositories.ChatRepository
	statuses    repositories.StatusRepository
	users       repositories.UserRepository
	broadcaster Broadcaster
	log         *logrus.Logger
}

func NewChatService(store repositories.Store, chats repositories.ChatRepository, statuses repositories.StatusRepository, users repositories.UserRepository, broadcaster Broadcaster, log *logrus.Logger) *ChatService {
	return &ChatService{
		store:       store,
		chats:       chats,
		statuses:    statuses,
		users:       users,
		broadcaster: broadcaster,
		log:         log,
	}
}

// Create opens a chat between the caller and participantID.
func (s *ChatService) Create(ctx context.Context, initiatorID, participantID string) (models.Chat, error) {
	if uuid.Validate(participantID) != nil {
		return models.Chat{}, apperr.New(apperr.KindBadRequest, "malformed participant id")
	}
	if participantID == initiatorID {
		return models.Chat{}, apperr.New(apperr.KindBadRequest, "cannot open a chat with yourself")
	}

	if _, err := s.users.GetByID(ctx, s.store.Reader(), participantID); err != nil {
		return models.Chat{}, mapStoreErr(err)
	}

	_, err := s.chats.GetByParticipants(ctx, s.store.Reader(), initiatorID, participantID)
	if err == nil {
		return models.Chat{}, apperr.New(apperr.KindConflict, "chat already exists between these users")
	}
	if !errors.Is(err, repositories.ErrChatNotFound) {
		return models.Chat{}, apperr.Internal(err)
	}

	chat := models.Chat{
		ID:            uuid.NewString(),
		RoomName:      "chat-" + uuid.NewString(),
		InitiatorID:   initiatorID,
		ParticipantID: participantID,
	}

	err = s.store.WithinTx(ctx, func(tx *repositories.Tx) error {
		if err := s.chats.Create(ctx, tx.Q, chat); err != nil {
			return err
		}
		for _, userID := range []string{chat.InitiatorID, chat.ParticipantID} {
			status := models.UserChatStatus{
				ID:                 uuid.NewString(),
				ChatID:             chat.ID,
				UserID:             userID,
				ChatStatus:         models.ChatStatusActive,
				NotificationStatus: models.NotificationUnmuted,
			}
			if err := s.statuses.Create(ctx, tx.Q, status); err != nil {
				return err
			}
		}
		tx.AfterCommit(func() {
			s.broadcaster.ToRoom(chat.RoomName, []string{chat.InitiatorID, chat.ParticipantID},
				models.ServerEvent{Event: models.EventChatCreated, Data: chat})
		})
		return nil
	})
	if err != nil {
		return models.Chat{}, apperr.Internal(err)
	}

	s.log.WithFields(logrus.Fields{
		"chat_id":      chat.ID,
		"initiator_id": initiatorID,
	}).Info("chat created")
	return chat, nil
}

// Delete removes the chat and, through the store's cascade, everything it
// owns. Either participant may do it.
func (s *ChatService) Delete(ctx context.Context, chatID, userID string) error {
	if uuid.Validate(chatID) != nil {
		return apperr.New(apperr.KindBadRequest, "malformed chat id")
	}

	chat, err := s.chats.GetByID(ctx, s.store.Reader(), chatID)
	if err != nil {
		return mapStoreErr(err)
	}
	if !chat.HasParticipant(userID) {
		return apperr.New(apperr.KindForbidden, "not a chat participant")
	}

	err = s.store.WithinTx(ctx, func(tx *repositories.Tx) error {
		if err := s.chats.Delete(ctx, tx.Q, chatID); err != nil {
			return err
		}
		tx.AfterCommit(func() {
			s.broadcaster.ToRoom(chat.RoomName, []string{chat.InitiatorID, chat.ParticipantID},
				models.ServerEvent{Event: models.EventChatDeleted, Data: models.ChatDeletedEvent{ChatID: chatID}})
		})
		return nil
	})
	if err != nil {
		return mapStoreErr(err)
	}

	s.log.WithFields(logrus.Fields{
		"chat_id": chatID,
		"user_id": userID,
	}).Info("chat deleted")
	return nil
}

// ListForUser returns the caller's visible chats.
func (s *ChatService) ListForUser(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	summaries, err := s.chats.ListForUser(ctx, s.store.Reader(), userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return summaries, nil
}
