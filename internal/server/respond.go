package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/jengatower/pkg/errors"
)

type errorBody struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{Error: errors.UserMessage(err), Code: code})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSortKey, errors.ErrCodeInvalidSource:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeBlockNotFound:
		return http.StatusNotFound
	case errors.ErrCodeReconfigBusy, errors.ErrCodeDragRefused:
		return http.StatusConflict
	case errors.ErrCodeTimeout:
		return http.StatusServiceUnavailable
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
