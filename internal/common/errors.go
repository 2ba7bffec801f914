package common

import (
	"errors"
	"net/http"
)

// CodedError carries a machine-readable code and the HTTP status it should
// surface as, so services can classify failures without importing echo.
type CodedError struct {
	Status  int
	Code    string
	Message string
	Details map[string]string
}

func (e *CodedError) Error() string {
	return e.Message
}

func NewCodedError(status int, code, message string) *CodedError {
	return &CodedError{Status: status, Code: code, Message: message}
}

// AsCodedError unwraps err looking for a CodedError.
func AsCodedError(err error) (*CodedError, bool) {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded, true
	}
	return nil, false
}

// Configuration errors surface as 4xx with a stable code.
var (
	ErrMissingCredentials = NewCodedError(http.StatusUnprocessableEntity, "MISSING_CREDENTIALS",
		"tenant has no storefront API credentials configured")
	ErrGatewayNotConfigured = NewCodedError(http.StatusUnprocessableEntity, "GATEWAY_NOT_CONFIGURED",
		"payment gateway API key is not configured")
	ErrSyncInProgress = NewCodedError(http.StatusConflict, "SYNC_IN_PROGRESS",
		"a synchronization for this tenant is already running")
)
