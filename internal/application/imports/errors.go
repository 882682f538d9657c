package imports

import (
	"errors"
	"fmt"
)

// Validation error codes, in the order the checks run
const (
	ErrCodeFileRequired      = "ERR_FILE_REQUIRED"
	ErrCodeFileType          = "ERR_FILE_TYPE"
	ErrCodeStoreRequired     = "ERR_STORE_REQUIRED"
	ErrCodeTransferStores    = "ERR_TRANSFER_STORES"
	ErrCodeTransferSameStore = "ERR_TRANSFER_SAME_STORE"
	ErrCodeStockInitialDone  = "ERR_STOCK_INITIAL_DONE"
)

// ErrUnknownKind is returned for a form without a valid flow
var ErrUnknownKind = errors.New("unknown import kind")

// ValidationError is a form problem caught before any upload
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newValidationError(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches any ValidationError with the same code
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

// ValidationCode returns the code of a ValidationError in err's chain, or ""
func ValidationCode(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
