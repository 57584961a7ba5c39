package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumatch-api/internal/apperror"
	"github.com/yourusername/resumatch-api/internal/middleware"
	"github.com/yourusername/resumatch-api/internal/model"
)

// respondError writes the user-facing body for err and logs the cause.
// Raw backend output never reaches the response.
func respondError(c *gin.Context, action string, err error) {
	status := apperror.ToHTTPStatus(err)

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	if sess, ok := middleware.GetSession(c); ok {
		event = event.Str("userId", sess.UserID)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		event = event.Str("details", appErr.Details)
	}
	event.Err(err).
		Str("action", action).
		Str("kind", apperror.Kind(err).Error()).
		Int("status", status).
		Msg("Request failed")

	c.JSON(status, apperror.ToJSON(err))
}

// session returns the caller's session or writes a 401.
func session(c *gin.Context, action string) (model.Session, bool) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		respondError(c, action, apperror.NewUnauthorized("no session in context"))
		return model.Session{}, false
	}
	return sess, true
}

// analysisID parses the :id path parameter or writes a 404.
func analysisID(c *gin.Context, action string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, action, apperror.NewNotFound("Analysis", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}
