package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/alageshkumardev-create/FitzdoPoc/pkg/errors"
)

// errorEnvelope mirrors httputil.Response.
type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// maps it onto an AppError. Structured error envelopes keep their code and
// message; anything else yields a generic error carrying the raw body.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", service, resp.StatusCode, err)
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		return mapStatus(resp.StatusCode, env.Error.Code, env.Error.Message)
	}
	return fmt.Errorf("%s returned status %d: %s", service, resp.StatusCode, string(body))
}

func mapStatus(status int, code, message string) error {
	var sentinel error
	switch status {
	case http.StatusNotFound:
		sentinel = apperrors.ErrNotFound
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		sentinel = apperrors.ErrInvalidInput
	case http.StatusConflict:
		sentinel = apperrors.ErrConflict
	case http.StatusUnauthorized:
		sentinel = apperrors.ErrUnauthorized
	case http.StatusServiceUnavailable:
		sentinel = apperrors.ErrServiceUnavail
	default:
		if status >= 500 {
			sentinel = apperrors.ErrInternal
		}
	}
	return &apperrors.AppError{Code: code, Message: message, Status: status, Err: sentinel}
}

// IsClientError reports whether status is a 4xx code.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
