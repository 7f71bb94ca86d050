package utils

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/vaughan-dsouza/cinnamart/internal/common"
	"github.com/vaughan-dsouza/cinnamart/internal/logging"
	"github.com/vaughan-dsouza/cinnamart/internal/validation"
)

// maxBodyBytes caps decoded request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the failure envelope. Detail is filled in development only.
type ErrorResponse struct {
	Success bool                    `json:"success"`
	Error   string                  `json:"error"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
	Detail  string                  `json:"detail,omitempty"`
}

// JSON writes a JSON response with status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// JSONError writes {"success": false, "error": "..."} with a given status.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: msg})
}

// DecodeJSON parses the JSON body into v. Unknown fields are rejected.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return validation.Errorf("body", "empty request body")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return validation.Errorf("body", "empty request body")
		}
		return validation.Errorf("body", "invalid JSON: %s", err.Error())
	}
	return nil
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrAccountDisabled),
		errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

var sentinels = []error{
	common.ErrInvalidCredentials,
	common.ErrAccountDisabled,
	common.ErrTokenExpired,
	common.ErrTokenRevoked,
	common.ErrInvalidToken,
	common.ErrUnauthorized,
	common.ErrForbidden,
	common.ErrNotFound,
	common.ErrConflict,
}

func publicMessage(err error) string {
	var pe *common.PublicError
	if errors.As(err, &pe) {
		return pe.Msg
	}
	var ve *validation.RequestValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	if errors.Is(err, common.ErrStoreUnavailable) {
		return "service temporarily unavailable"
	}
	return "internal server error"
}

// WriteError renders err with the status its kind maps to. Server-side
// failures are logged; their text reaches the client only when dev is set.
func WriteError(w http.ResponseWriter, r *http.Request, err error, dev bool) {
	status := StatusFor(err)
	resp := ErrorResponse{Error: publicMessage(err)}

	var ve *validation.RequestValidationError
	if errors.As(err, &ve) {
		resp.Errors = ve.Fields
	}

	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		if dev {
			resp.Detail = err.Error()
		}
	}

	JSON(w, status, resp)
}
