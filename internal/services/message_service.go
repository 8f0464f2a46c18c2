package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketplace-chat/internal/apperr"
	"marketplace-chat/internal/models"
	"marketplace-chat/internal/notify"
	"marketplace-chat/internal/repositories"
	"marketplace-chat/internal/secure"
)

// MessageService owns the message lifecycle: validate, encrypt, persist,
// decrypt on every return path. Message bodies never leave the process as
// ciphertext and are never stored as plaintext.
type MessageService struct {
	store       repositories.Store
	chats       repositories.ChatRepository
	statuses    repositories.StatusRepository
	messages    repositories.MessageRepository
	users       repositories.UserRepository
	box         *secure.MessageBox
	broadcaster Broadcaster
	notifier    Notifier
	editWindow  time.Duration
	log         *logrus.Logger
}

func NewMessageService(
	store repositories.Store,
	chats repositories.ChatRepository,
	statuses repositories.StatusRepository,
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	box *secure.MessageBox,
	broadcaster Broadcaster,
	notifier Notifier,
	editWindow time.Duration,
	log *logrus.Logger,
) *MessageService {
	return &MessageService{
		store:       store,
		chats:       chats,
		statuses:    statuses,
		messages:    messages,
		users:       users,
		box:         box,
		broadcaster: broadcaster,
		notifier:    notifier,
		editWindow:  editWindow,
		log:         log,
	}
}

// MessageUpdateInput is the caller's partial update of a message.
type MessageUpdateInput struct {
	Content *string `json:"content"`
	IsRead  *bool   `json:"isRead"`
}

// Create validates, encrypts and persists a new message. The receiver is the
// single residual status row after removing the sender's own; anything other
// than exactly one residual row violates the two-participant invariant.
// Persisting the message and re-surfacing a hidden receiver commit as one
// unit; broadcast and notification run strictly after.
func (s *MessageService) Create(ctx context.Context, chatID, senderID, content string) (models.Message, error) {
	if uuid.Validate(chatID) != nil {
		return models.Message{}, apperr.New(apperr.KindBadRequest, "malformed chat id")
	}
	if content == "" {
		return models.Message{}, apperr.New(apperr.KindBadRequest, "message content is empty")
	}

	cw, err := s.chats.GetWithStatuses(ctx, s.store.Reader(), chatID)
	if err != nil {
		return models.Message{}, mapStoreErr(err)
	}
	if !cw.Chat.HasParticipant(senderID) {
		return models.Message{}, apperr.New(apperr.KindForbidden, "not a chat participant")
	}

	var senderStatus *models.UserChatStatus
	residual := make([]models.UserChatStatus, 0, 1)
	for i := range cw.Statuses {
		if cw.Statuses[i].UserID == senderID {
			senderStatus = &cw.Statuses[i]
		} else {
			residual = append(residual, cw.Statuses[i])
		}
	}
	if senderStatus == nil || len(residual) != 1 {
		return models.Message{}, apperr.Newf(apperr.KindInternal,
			"chat %s violates the one-status-row-per-participant invariant", chatID)
	}
	receiver := residual[0]

	if senderStatus.ChatStatus != models.ChatStatusActive {
		return models.Message{}, apperr.New(apperr.KindForbidden, "chat is not active for sender")
	}
	if !receiver.ChatStatus.Accessible() {
		return models.Message{}, apperr.New(apperr.KindForbidden, "recipient is unavailable")
	}

	ciphertext, err := s.box.Encrypt(content)
	if err != nil {
		return models.Message{}, apperr.Internal(err)
	}

	msg := models.Message{
		ID:        uuid.NewString(),
		ChatID:    cw.Chat.ID,
		ChatRoom:  cw.Chat.RoomName,
		SenderID:  senderID,
		Content:   ciphertext,
		CreatedAt: time.Now().UTC(),
	}

	// The caller's response and the broadcast both carry plaintext.
	public := msg
	public.Content = content

	reactivate := receiver.ChatStatus == models.ChatStatusHidden
	err = s.store.WithinTx(ctx, func(tx *repositories.Tx) error {
		if err := s.messages.Create(ctx, tx.Q, msg); err != nil {
			return err
		}
		if reactivate {
			active := models.ChatStatusActive
			updated, txErr := s.statuses.Update(ctx, tx.Q, receiver.ID, models.StatusUpdate{ChatStatus: &active})
			if txErr != nil {
				return txErr
			}
			tx.AfterCommit(func() {
				s.broadcaster.ToUser(receiver.UserID,
					models.ServerEvent{Event: models.EventUpdateUserChatStatus, Data: updated})
			})
		}
		tx.AfterCommit(func() {
			s.broadcaster.ToRoom(cw.Chat.RoomName, []string{senderID, receiver.UserID},
				models.ServerEvent{Event: models.EventNewChatMessage, Data: public})
		})
		return nil
	})
	if err != nil {
		return models.Message{}, mapStoreErr(err)
	}

	if receiver.NotificationStatus == models.NotificationUnmuted {
		s.notifyReceiver(ctx, receiver.UserID, public)
	}

	return public, nil
}

func (s *MessageService) notifyReceiver(ctx context.Context, receiverID string, msg models.Message) {
	recipient, err := s.users.GetByID(ctx, s.store.Reader(), receiverID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", receiverID).Warn("skipping notification, recipient lookup failed")
		return
	}
	s.notifier.Enqueue(ctx, notify.KindChatMessage, recipient.Email, map[string]any{
		"chatId":    msg.ChatID,
		"messageId": msg.ID,
		"senderId":  msg.SenderID,
	})
}

// List returns one page of the chat's history, newest first, decrypted. The
// page is validated against the true total: an offset beyond the total is
// NotFound, a page size larger than the total is BadRequest.
func (s *MessageService) List(ctx context.Context, chatID, userID string, page, pageSize int) (models.MessagePage, error) {
	if uuid.Validate(chatID) != nil {
		return models.MessagePage{}, apperr.New(apperr.KindBadRequest, "malformed chat id")
	}
	if page < 1 || pageSize < 1 {
		return models.MessagePage{}, apperr.New(apperr.KindBadRequest, "page and pageSize must be positive")
	}

	if _, err := s.statuses.GetByChatAndUser(ctx, s.store.Reader(), chatID, userID); err != nil {
		return models.MessagePage{}, mapStoreErr(err)
	}

	total, err := s.messages.Count(ctx, s.store.Reader(), chatID)
	if err != nil {
		return models.MessagePage{}, apperr.Internal(err)
	}

	offset := (page - 1) * pageSize
	if total == 0 && page == 1 {
		return models.MessagePage{Messages: []models.Message{}, Page: page, PageSize: pageSize, Total: 0}, nil
	}
	if offset >= total {
		return models.MessagePage{}, apperr.Newf(apperr.KindNotFound, "page %d lies beyond %d messages", page, total)
	}
	if pageSize > total {
		return models.MessagePage{}, apperr.Newf(apperr.KindBadRequest, "page size %d exceeds %d messages", pageSize, total)
	}

	msgs, err := s.messages.List(ctx, s.store.Reader(), chatID, pageSize, offset)
	if err != nil {
		return models.MessagePage{}, apperr.Internal(err)
	}
	for i := range msgs {
		plaintext, decErr := s.box.Decrypt(msgs[i].Content)
		if decErr != nil {
			return models.MessagePage{}, apperr.Internal(decErr)
		}
		msgs[i].Content = plaintext
	}

	return models.MessagePage{Messages: msgs, Page: page, PageSize: pageSize, Total: total}, nil
}

// FindOne returns one of the caller's own messages, decrypted. Ownership is
// implicit in the lookup predicate: someone else's message is simply absent.
func (s *MessageService) FindOne(ctx context.Context, chatID, messageID, userID string) (models.Message, error) {
	if uuid.Validate(chatID) != nil || uuid.Validate(messageID) != nil {
		return models.Message{}, apperr.New(apperr.KindBadRequest, "malformed id")
	}

	msg, err := s.messages.GetBySenderAndID(ctx, s.store.Reader(), chatID, messageID, userID)
	if err != nil {
		return models.Message{}, mapStoreErr(err)
	}

	plaintext, err := s.box.Decrypt(msg.Content)
	if err != nil {
		return models.Message{}, apperr.Internal(err)
	}
	msg.Content = plaintext
	return msg, nil
}

// Update edits one of the caller's own messages. Content edits are bounded
// by the edit window (boundary inclusive-reject) and a no-op edit is
// refused; an isRead value equal to the current one is dropped from the
// write entirely.
func (s *MessageService) Update(ctx context.Context, chatID, messageID, userID string, input MessageUpdateInput) (models.Message, error) {
	if uuid.Validate(chatID) != nil || uuid.Validate(messageID) != nil {
		return models.Message{}, apperr.New(apperr.KindBadRequest, "malformed id")
	}

	chat, err := s.chats.GetByID(ctx, s.store.Reader(), chatID)
	if err != nil {
		return models.Message{}, mapStoreErr(err)
	}

	msg, err := s.messages.GetBySenderAndID(ctx, s.store.Reader(), chatID, messageID, userID)
	if err != nil {
		return models.Message{}, mapStoreErr(err)
	}

	var update models.MessageUpdate
	plaintext := ""
	if input.Content != nil {
		if time.Since(msg.CreatedAt) >= s.editWindow {
			return models.Message{}, apperr.New(apperr.KindConflict, "edit window has elapsed")
		}
		existing, decErr := s.box.Decrypt(msg.Content)
		if decErr != nil {
			return models.Message{}, apperr.Internal(decErr)
		}
		if existing == *input.Content {
			return models.Message{}, apperr.New(apperr.KindBadRequest, "message content is unchanged")
		}
		ciphertext, encErr := s.box.Encrypt(*input.Content)
		if encErr != nil {
			return models.Message{}, apperr.Internal(encErr)
		}
		update.Content = &ciphertext
		plaintext = *input.Content
	}
	if input.IsRead != nil && *input.IsRead != msg.IsRead {
		update.IsRead = input.IsRead
	}

	if update.Empty() {
		// Nothing actually differs; succeed without a redundant write.
		current := msg
		existing, decErr := s.box.Decrypt(current.Content)
		if decErr != nil {
			return models.Message{}, apperr.Internal(decErr)
		}
		current.Content = existing
		return current, nil
	}

	markedRead := update.IsRead != nil && *update.IsRead && !msg.IsRead
	var updated models.Message
	err = s.store.WithinTx(ctx, func(tx *repositories.Tx) error {
		var txErr error
		updated, txErr = s.messages.Update(ctx, tx.Q, messageID, update)
		if txErr != nil {
			return txErr
		}

		public := updated
		if update.Content != nil {
			public.Content = plaintext
		} else {
			existing, decErr := s.box.Decrypt(updated.Content)
			if decErr != nil {
				return decErr
			}
			public.Content = existing
		}
		updated = public

		recipients := []string{chat.InitiatorID, chat.ParticipantID}
		tx.AfterCommit(func() {
			s.broadcaster.ToRoom(chat.RoomName, recipients,
				models.ServerEvent{Event: models.EventUpdateChatMessage, Data: public})
			if markedRead {
				s.broadcaster.ToRoom(chat.RoomName, recipients,
					models.ServerEvent{Event: models.EventMessageRead, Data: models.MessageRefEvent{
						ChatID:    chat.ID,
						MessageID: public.ID,
					}})
			}
		})
		return nil
	})
	if err != nil {
		return models.Message{}, mapStoreErr(err)
	}

	return updated, nil
}

// Delete removes one of the caller's own messages and returns its decrypted
// content for the response.
func (s *MessageService) Delete(ctx context.Context, chatID, messageID, userID string) (models.Message, error) {
	if uuid.Validate(chatID) != nil || uuid.Validate(messageID) != nil {
		return models.Message{}, apperr.New(apperr.KindBadRequest, "malformed id")
	}

	chat, err := s.chats.GetByID(ctx, s.store.Reader(), chatID)
	if err != nil {
		return models.Message{}, mapStoreErr(err)
	}

	msg, err := s.messages.GetBySenderAndID(ctx, s.store.Reader(), chatID, messageID, userID)
	if err != nil {
		return models.Message{}, mapStoreErr(err)
	}

	plaintext, err := s.box.Decrypt(msg.Content)
	if err != nil {
		return models.Message{}, apperr.Internal(err)
	}

	err = s.store.WithinTx(ctx, func(tx *repositories.Tx) error {
		if err := s.messages.Delete(ctx, tx.Q, messageID); err != nil {
			return err
		}
		tx.AfterCommit(func() {
			s.broadcaster.ToRoom(chat.RoomName, []string{chat.InitiatorID, chat.ParticipantID},
				models.ServerEvent{Event: models.EventDeleteChatMessage, Data: models.MessageRefEvent{
					ChatID:    chatID,
					MessageID: messageID,
				}})
		})
		return nil
	})
	if err != nil {
		return models.Message{}, mapStoreErr(err)
	}

	msg.Content = plaintext
	return msg, nil
}
