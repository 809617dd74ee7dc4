package utils

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPError is an error that already knows the status it should be served with.
type HTTPError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(code int, message string) error {
	return &HTTPError{Code: code, Message: message}
}

func BadRequest(message string) error {
	return NewHTTPError(http.StatusBadRequest, message)
}

func Unauthorized(message string) error {
	return NewHTTPError(http.StatusUnauthorized, message)
}

// WriteError serves err as {"error": message}. Anything that does not wrap an
// HTTPError is reported as a bare 500 so internal details stay in the logs.
func WriteError(w http.ResponseWriter, err error) {
	httpErr := &HTTPError{Code: http.StatusInternalServerError, Message: "Internal Server Error"}
	errors.As(err, &httpErr)

	body, mErr := json.Marshal(httpErr)
	if mErr != nil {
		http.Error(w, mErr.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpErr.Code)
	_, _ = w.Write(body)
}
