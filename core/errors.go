package core

import (
	"errors"
	"fmt"
	"os"
)

// Error codes of the engine. Configuration errors found while building fonts,
// families or collections carry EINVALID or EMISSING. Failures of external
// collaborators (shapers, font parsers) carry EINTERNAL when they surface at all.
const (
	NOERROR     int = 0
	EMISSING    int = 122 // font, family or resource does not exist
	EINVALID    int = 123 // validation of a configuration failed
	ECONNECTION int = 124 // remote resource not reachable
	EINTERNAL   int = 125 // collaborator or internal failure
	ESTATE      int = 126 // operation called in the wrong processing state
)

var errorTexts = map[int]string{
	NOERROR:     "OK",
	EMISSING:    "not found",
	EINVALID:    "invalid",
	ECONNECTION: "transmission-error",
	EINTERNAL:   "internal error",
	ESTATE:      "wrong state",
}

func errorText(ecode int) string {
	if t, ok := errorTexts[ecode]; ok {
		return t
	}
	return "undefined error"
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() int
	UserMessage() string
}

type codedError struct {
	cause error
	code  int
	msg   string
}

func (e codedError) Unwrap() error {
	return e.cause
}

func (e codedError) Error() string {
	if e.msg == "" || e.msg == e.cause.Error() {
		return fmt.Sprintf("[%d] %v", e.code, e.cause)
	}
	return fmt.Sprintf("[%d] %s: %v", e.code, e.msg, e.cause)
}

func (e codedError) ErrorCode() int {
	return e.code
}

func (e codedError) UserMessage() string {
	return e.msg
}

var _ AppError = codedError{}

// ErrorWithCode adds an error code to err's error chain.
// A nil err is replaced by the generic text of code.
func ErrorWithCode(err error, code int) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	return codedError{cause: err, code: code, msg: errorText(code)}
}

// WrapError wraps an error, attaching an error code and a user message.
// A nil err is replaced by the generic text of code.
func WrapError(err error, code int, format string, v ...interface{}) error {
	if err == nil {
		err = errors.New(errorText(code))
	}
	return codedError{cause: err, code: code, msg: fmt.Sprintf(format, v...)}
}

// Error creates an error with an error code and a user-message.
func Error(code int, format string, v ...interface{}) error {
	return codedError{
		cause: errors.New(errorText(code)),
		code:  code,
		msg:   fmt.Sprintf(format, v...),
	}
}

// Code returns the status code associated with an error.
// If no status code is found, it returns EINTERNAL.
// If err is nil, NOERROR is returned.
func Code(err error) int {
	if err == nil {
		return NOERROR
	}
	var e AppError
	if errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// IsConfigurationError is true for errors which signal an unusable font
// configuration, i.e. errors with code EINVALID or EMISSING.
func IsConfigurationError(err error) bool {
	c := Code(err)
	return c == EINVALID || c == EMISSING
}

// UserMessage returns the user message associated with an error.
// If no message is found, it returns the generic text for the error's code.
// If err is nil, it returns "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e AppError
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return errorText(Code(err))
}

// UserError prints an error to stderr, preferring the user message.
func UserError(err error) {
	var e AppError
	if errors.As(err, &e) {
		fmt.Fprintf(os.Stderr, "[%d] %s\n", e.ErrorCode(), e.UserMessage())
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
}

// Assert panics with a formatted message if cond does not hold.
// It is reserved for violated preconditions, e.g. an invalid text range.
func Assert(cond bool, format string, v ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, v...))
	}
}
