package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusFor(err))
//  3. Error is mapped via core.MapError to get a user-facing message
//  4. Technical error is logged with the request ID for correlation
//  5. User message is written as JSON, or plain text for the HTML report

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/JonMunkholm/bankrecon/internal/ingest"
	"github.com/JonMunkholm/bankrecon/internal/logging"
	"github.com/JonMunkholm/bankrecon/internal/service"
)

var (
	errNoFile            = errors.New("no file provided")
	errInvalidCustomerID = errors.New("invalid customer id")
	errRateLimited       = errors.New("rate limit exceeded")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an error returned by the service.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTooManyBatches):
		return http.StatusServiceUnavailable
	case errors.Is(err, ingest.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingest.ErrEmptyFile), errors.Is(err, ingest.ErrMissingColumns):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errNoFile), errors.Is(err, errInvalidCustomerID):
		return http.StatusBadRequest
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "invalid csv") || strings.Contains(msg, "encoding error") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError logs the technical error server-side and returns a
// user-friendly message in the format the client expects.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if wantsJSON(r) {
		writeJSON(w, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}
	http.Error(w, userMsg.Message+" ("+userMsg.Code+")", statusCode)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// clientIP returns the request's client address without the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
