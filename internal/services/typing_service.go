package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketplace-chat/internal/apperr"
	"marketplace-chat/internal/models"
	"marketplace-chat/internal/repositories"
)

// TypingService relays typing indicators. No persistence side effect; the
// caller must be a participant with a singular status row, and the sender
// never hears its own indicator.
type TypingService struct {
	store       repositories.Store
	chats       repositories.ChatRepository
	statuses    repositories.StatusRepository
	broadcaster Broadcaster
	log         *logrus.Logger
}

func NewTypingService(store repositories.Store, chats repositories.ChatRepository, statuses repositories.StatusRepository, broadcaster Broadcaster, log *logrus.Logger) *TypingService {
	return &TypingService{
		store:       store,
		chats:       chats,
		statuses:    statuses,
		broadcaster: broadcaster,
		log:         log,
	}
}

func (s *TypingService) Start(ctx context.Context, userID, chatID string) error {
	return s.relay(ctx, userID, chatID, models.EventUserTyping)
}

func (s *TypingService) Stop(ctx context.Context, userID, chatID string) error {
	return s.relay(ctx, userID, chatID, models.EventStopTyping)
}

func (s *TypingService) relay(ctx context.Context, userID, chatID, event string) error {
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
	if _, err := s.statuses.GetByChatAndUser(ctx, s.store.Reader(), chatID, userID); err != nil {
		return mapStoreErr(err)
	}

	s.broadcaster.ToRoomExcept(chat.RoomName, []string{chat.InitiatorID, chat.ParticipantID}, userID,
		models.ServerEvent{Event: event, Data: models.TypingEvent{ChatID: chatID, UserID: userID}})
	return nil
}
