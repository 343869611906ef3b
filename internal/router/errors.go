package router

import "fmt"

const (
	CodeNoTabID       = "NO_TAB_ID"
	CodeMissingField  = "MISSING_FIELD"
	CodeUnknownAction = "UNKNOWN_ACTION"
	CodeSendFailed    = "SEND_FAILED"
)

// CodedError is a typed error used for stable API mapping. Routing failures
// are reported this way rather than panicking; the caller decides whether to
// retry or drop.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

func newError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}
