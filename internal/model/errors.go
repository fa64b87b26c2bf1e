package model

import "fmt"

// Status codes with a distinguished meaning for result handlers.
const (
	StatusUnauthorized  = 401
	StatusForbidden     = 403
	StatusNotFound      = 404
	StatusConflict      = 409
	StatusUnprocessable = 422
)

// ApiError is the only failure shape the state engine sees from the API boundary.
// Status is 0 when the request never produced an HTTP response.
type ApiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *ApiError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewApiError(status int, message string) *ApiError {
	return &ApiError{Status: status, Message: message}
}
