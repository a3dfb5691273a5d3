package httpx

import (
	"errors"
	"net/http"

	"github.com/cardano-insights/agent-service/internal/apperrors"
)

// statusForCode maps application error codes to HTTP status codes.
var statusForCode = map[apperrors.ErrorCode]int{
	apperrors.ErrCodeValidation:        http.StatusBadRequest,
	apperrors.ErrCodeNotFound:          http.StatusNotFound,
	apperrors.ErrCodeUnauthorized:      http.StatusForbidden,
	apperrors.ErrCodeInvalidTransition: http.StatusConflict,
	apperrors.ErrCodeInternal:          http.StatusInternalServerError,
}

// WriteAppError renders an application error as a JSON error envelope.
// Internal errors are masked with a generic message so backend details
// never reach clients.
func WriteAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status, ok := statusForCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		WriteError(w, ErrorParams{
			Code:    status,
			ErrCode: string(apperrors.ErrCodeInternal),
			Err:     errors.New("internal server error"),
		})
		return
	}

	WriteError(w, ErrorParams{Code: status, ErrCode: string(code), Err: err})
}
