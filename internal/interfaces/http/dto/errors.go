package dto

import "net/http"

// Error codes sent in the "error" field of a structured error body.
// Domain errors keep their own code; these cover transport-level failures.

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request binding fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeRateLimited is used when the client exceeds its request budget
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodeFileTooLarge is used when an upload exceeds the body limit
	ErrCodeFileTooLarge = "FILE_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeFileTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// shared
	"NOT_FOUND":      http.StatusNotFound,
	"ALREADY_EXISTS": http.StatusConflict,
	"INVALID_INPUT":  http.StatusBadRequest,
	"INVALID_STATE":  http.StatusUnprocessableEntity,

	// identity
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"USER_EXISTS":         http.StatusConflict,
	"INVALID_ROLE":        http.StatusBadRequest,

	// imports
	"FILE_REQUIRED":            http.StatusBadRequest,
	"INVALID_FILE_TYPE":        http.StatusBadRequest,
	"STORE_REQUIRED":           http.StatusBadRequest,
	"TRANSFER_STORES_REQUIRED": http.StatusBadRequest,
	"TRANSFER_SAME_STORE":      http.StatusBadRequest,
	"STORE_NOT_FOUND":          http.StatusNotFound,
	"UNKNOWN_JOB_TYPE":         http.StatusNotFound,
	"STOCK_INITIAL_DONE":       http.StatusConflict,

	// reports
	"INVALID_REPORT_TYPE": http.StatusBadRequest,
	"INVALID_FORMAT":      http.StatusBadRequest,
	"INVALID_DATE_RANGE":  http.StatusBadRequest,
	"PDF_UNAVAILABLE":     http.StatusNotImplemented,
}

// errorSuggestions are the hints sent in the "suggestion" field
var errorSuggestions = map[string]string{
	ErrCodeUnauthorized:        "Log in again to obtain a new token",
	ErrCodeTokenExpired:        "Log in again to obtain a new token",
	ErrCodeTokenInvalid:        "Log in again to obtain a new token",
	ErrCodeRateLimited:         "Wait a moment before retrying",
	ErrCodeFileTooLarge:        "Split the workbook into smaller files",
	"INVALID_CREDENTIALS":      "Check the username and password",
	"INVALID_FILE_TYPE":        "Save the workbook as .xlsx and upload it again",
	"FILE_REQUIRED":            "Attach the workbook in the \"file\" field",
	"STORE_REQUIRED":           "Select the store the file belongs to",
	"TRANSFER_STORES_REQUIRED": "Select both the origin and the destination store",
	"TRANSFER_SAME_STORE":      "Pick two different stores",
	"STOCK_INITIAL_DONE":       "Use a stock adjustment or a purchase import instead",
	"PDF_UNAVAILABLE":          "Export the report as Excel",
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// SuggestionFor returns the remediation hint for a code, if any
func SuggestionFor(code string) string {
	return errorSuggestions[code]
}
