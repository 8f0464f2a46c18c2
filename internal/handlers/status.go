package handlers

import (
	"marketplace-chat/internal/apperr"
	"marketplace-chat/internal/models"
)

// statusUpdateFromRequest validates the raw enum values of a status update.
func statusUpdateFromRequest(chatStatus, notificationStatus *string) (models.StatusUpdate, error) {
	var update models.StatusUpdate

	if chatStatus != nil {
		switch v := models.ChatStatus(*chatStatus); v {
		case models.ChatStatusActive, models.ChatStatusHidden, models.ChatStatusRemoved:
			update.ChatStatus = &v
		default:
			return update, apperr.Newf(apperr.KindBadRequest, "unknown chat status %q", *chatStatus)
		}
	}
	if notificationStatus != nil {
		switch v := models.NotificationStatus(*notificationStatus); v {
		case models.NotificationMuted, models.NotificationUnmuted:
			update.NotificationStatus = &v
		default:
			return update, apperr.Newf(apperr.KindBadRequest, "unknown notification status %q", *notificationStatus)
		}
	}
	return update, nil
}
