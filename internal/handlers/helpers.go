package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketplace-chat/internal/apperr"
	"marketplace-chat/internal/observability"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// RequestIDMiddleware ensures every response carries a request id and makes
// it visible to everything downstream of the handler.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := requestIDFromContext(c)
		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(
			observability.ContextWithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

var kindToStatus = map[apperr.Kind]int{
	apperr.KindAuthRejected: http.StatusUnauthorized,
	apperr.KindBadRequest:   http.StatusBadRequest,
	apperr.KindForbidden:    http.StatusForbidden,
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindConflict:     http.StatusConflict,
	apperr.KindInternal:     http.StatusInternalServerError,
}

// respondError maps the error taxonomy onto HTTP. Internal faults log the
// cause and answer with a generic message so store or crypto details never
// leak to the client.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	kind := apperr.KindOf(err)
	status := kindToStatus[kind]

	message := "internal error"
	var appErr *apperr.Error
	if kind != apperr.KindInternal && errors.As(err, &appErr) {
		message = appErr.Message()
	}

	entry := log.WithError(err).WithFields(logrus.Fields{
		"request_id": requestIDFromContext(c),
		"kind":       kind.String(),
	})
	if kind == apperr.KindInternal {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	c.JSON(status, gin.H{"error": message})
}
