package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pawpair/backend/pkg/apperrors"
	"pawpair/backend/pkg/logger"
)

type ErrorBody struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Code: apperrors.CodeInvalidArgument, Message: msg})
}

// Error renders err with the HTTP status matching its apperrors code.
// Internal errors are logged and their details are not exposed.
func Error(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	status := StatusFor(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorBody{Code: code, Message: msg})
}

func StatusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeInvalidArgument:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodePermissionDenied:
		return http.StatusForbidden
	case apperrors.CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
