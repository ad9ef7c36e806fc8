package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
)

type errorResponse struct {
	Message string `json:"message"`
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation,
		apperr.KindMissingAsset,
		apperr.KindDuplicateUsername,
		apperr.KindUnknownUser,
		apperr.KindInvalidCredentials:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindMissingToken, apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInvalidToken:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler is the only place errors become HTTP responses.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		writeError(c, he.Code, he.Message)
		return
	}

	kind := apperr.KindOf(err)
	status := StatusOf(kind)

	var msg string
	switch kind {
	case apperr.KindUploadFailed:
		msg = "upload failed: " + apperr.Message(err)
	case apperr.KindStore:
		logging.FromContext(c.Request().Context()).With("handler", "error_handler").
			Error("internal_error", "status", status, "error", err)
		msg = "internal server error"
	default:
		msg = apperr.Message(err)
	}
	writeError(c, status, msg)
}

func writeError(c echo.Context, status int, msg any) {
	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else if s, ok := msg.(string); ok {
		werr = c.JSON(status, errorResponse{Message: s})
	} else {
		werr = c.JSON(status, map[string]any{"message": msg})
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response_failed", "error", werr)
	}
}
