package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"download-service/internal/http/middleware"
	apperrors "download-service/pkg/errors"
)

const (
	jsonKeyError     = "error"
	jsonKeyRequestID = "request_id"

	msgInternalServerError = "internal server error"
	unknownRequestID       = "unknown"

	// Non-standard status used when the client went away before a response.
	statusClientClosedRequest = 499
)

type errorMapping struct {
	target error
	code   int
}

// Order matters: the pipeline sentinels are checked before the generic ones
// because both ResourceNotFound and NotFound map to 404 with different text.
var errorMappings = []errorMapping{
	{apperrors.ErrMissingParameter, http.StatusBadRequest},
	{apperrors.ErrBadRequest, http.StatusBadRequest},
	{apperrors.ErrNoCredential, http.StatusUnauthorized},
	{apperrors.ErrInvalidCredential, http.StatusUnauthorized},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrInsufficientRole, http.StatusForbidden},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrResourceNotFound, http.StatusNotFound},
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrConflict, http.StatusConflict},
	{apperrors.ErrURLIssuanceExhausted, http.StatusInternalServerError},
	{apperrors.ErrRoleLookupFailed, http.StatusInternalServerError},
}

// exposedServerErrors keep their typed message on a 5xx response.
var exposedServerErrors = []error{
	apperrors.ErrURLIssuanceExhausted,
	apperrors.ErrRoleLookupFailed,
}

// NewHTTPErrorHandler maps handler errors to status codes and a JSON body of
// the form {"error": ..., "request_id": ...}. Unexpected failures are logged
// in full and answered with a generic message.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, message := classify(err)

		requestID := middleware.GetRequestID(c)
		if requestID == "" {
			requestID = unknownRequestID
		}

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		}
		switch {
		case code >= http.StatusInternalServerError:
			log.Error("internal_server_error", fields...)
		case code == statusClientClosedRequest:
			log.Info("client_closed_request", fields...)
		default:
			log.Warn("client_error", fields...)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{
				jsonKeyError:     message,
				jsonKeyRequestID: requestID,
			})
		}
		if err != nil {
			log.Error("write error response", zap.Error(err))
		}
	}
}

func classify(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Code >= http.StatusInternalServerError {
			return httpErr.Code, msgInternalServerError
		}
		return httpErr.Code, fmt.Sprintf("%v", httpErr.Message)
	}

	if errors.Is(err, context.Canceled) {
		return statusClientClosedRequest, context.Canceled.Error()
	}

	code := http.StatusInternalServerError
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			code = m.code
			break
		}
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return code, msgInternalServerError
	}

	if code < http.StatusInternalServerError {
		return code, appErr.Message
	}
	for _, exposed := range exposedServerErrors {
		if errors.Is(err, exposed) {
			return code, appErr.Message
		}
	}
	return code, msgInternalServerError
}
