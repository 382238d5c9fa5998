package services

import (
	"fmt"
	"net/http"
)

// Error codes carried by ServiceError. The unauthenticated/forbidden split
// is load-bearing: clients prompt re-login on UNAUTHORIZED and show a
// generic denial on FORBIDDEN.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func NewServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

func unauthorizedError(message string) *ServiceError {
	return NewServiceError(http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func forbiddenError(message string, cause error) *ServiceError {
	return NewServiceError(http.StatusForbidden, CodeForbidden, message, cause)
}
