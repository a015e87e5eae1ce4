package middleware

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler renders AppErrors and echo errors as ErrorResponse JSON.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	resp := ErrorResponse{
		Code:    apperrors.CodeInternal,
		Message: "Internal server error",
		TraceID: uuid.New().String()[:8],
	}

	var appErr *apperrors.AppError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = apperrors.HTTPStatus(appErr.Code)
		resp.Code = appErr.Code
		if status < http.StatusInternalServerError || appErr.Code == apperrors.CodeUpstreamUnavailable {
			resp.Message = appErr.Message
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		resp.Code = codeForStatus(status)
		if msg, ok := httpErr.Message.(string); ok {
			resp.Message = msg
		} else {
			resp.Message = http.StatusText(status)
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"trace_id", resp.TraceID,
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, resp)
	}
	if writeErr != nil {
		logger.Error("failed to write error response", "error", writeErr)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusConflict:
		return apperrors.CodeConflict
	case http.StatusUnprocessableEntity:
		return apperrors.CodeValidationFailed
	case http.StatusServiceUnavailable:
		return apperrors.CodeUpstreamUnavailable
	}
	if status >= http.StatusInternalServerError {
		return apperrors.CodeInternal
	}
	return "ERROR"
}
