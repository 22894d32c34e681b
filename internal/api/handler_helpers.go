package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"circadian/internal/response"
	"circadian/internal/session"
)

func HandleError(c *gin.Context, logger *zap.Logger, err error, status int, msg string) {
	logger.Error(msg,
		zap.String("request_id", c.GetString("request_id")),
		zap.Int("status", status),
		zap.Error(err))
	c.JSON(status, response.NewAppError(status, msg+": "+err.Error()))
}

func HandleSuccess(c *gin.Context, status int, data interface{}, meta map[string]any) {
	c.JSON(status, response.Success(data, meta))
}

// statusFor maps session errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidSleepGoal):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrAlreadyLogged), errors.Is(err, session.ErrNoWakeTime):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
