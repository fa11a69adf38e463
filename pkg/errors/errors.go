// Package errors provides the coded errors shared by heightcompare's CLI,
// catalog backends and HTTP API.
//
// Every [Error] carries a [Code]. Codes fall into a [Kind], which is what
// callers usually branch on: the server maps kinds to HTTP statuses and the
// CLI prints the message without the code prefix.
//
//	err := errors.New(errors.ErrCodeInvalidHeight, "height must be positive, got %v", h)
//	if errors.IsInvalid(err) {
//	    // 400
//	}
//
//	err = errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch characters")
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code. It appears verbatim in API
// error bodies.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidHeight Code = "INVALID_HEIGHT"
	ErrCodeInvalidUnit   Code = "INVALID_UNIT"
	ErrCodeInvalidColor  Code = "INVALID_COLOR"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidName   Code = "INVALID_NAME"

	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeBoardNotFound     Code = "BOARD_NOT_FOUND"
	ErrCodePersonNotFound    Code = "PERSON_NOT_FOUND"
	ErrCodeCharacterNotFound Code = "CHARACTER_NOT_FOUND"
	ErrCodeFileNotFound      Code = "FILE_NOT_FOUND"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes by how a caller should react to them.
type Kind int

const (
	KindOther Kind = iota
	KindInvalid
	KindNotFound
	KindTransport
)

var kinds = map[Code]Kind{
	ErrCodeInvalidInput:  KindInvalid,
	ErrCodeInvalidHeight: KindInvalid,
	ErrCodeInvalidUnit:   KindInvalid,
	ErrCodeInvalidColor:  KindInvalid,
	ErrCodeInvalidFormat: KindInvalid,
	ErrCodeInvalidName:   KindInvalid,

	ErrCodeNotFound:          KindNotFound,
	ErrCodeBoardNotFound:     KindNotFound,
	ErrCodePersonNotFound:    KindNotFound,
	ErrCodeCharacterNotFound: KindNotFound,
	ErrCodeFileNotFound:      KindNotFound,

	ErrCodeNetwork:     KindTransport,
	ErrCodeTimeout:     KindTransport,
	ErrCodeRateLimited: KindTransport,
}

// Kind reports the group c belongs to. Unknown codes are KindOther.
func (c Code) Kind() Kind {
	return kinds[c]
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// IsNotFound reports whether err names a missing board, person, character
// or file.
func IsNotFound(err error) bool {
	return GetCode(err).Kind() == KindNotFound
}

// IsInvalid reports whether err is an input validation failure.
func IsInvalid(err error) bool {
	return GetCode(err).Kind() == KindInvalid
}

// IsTransport reports whether err is a catalog network, timeout or
// rate-limit failure.
func IsTransport(err error) bool {
	return GetCode(err).Kind() == KindTransport
}

// UserMessage returns the message of a coded error without its code, or
// err.Error() for anything else.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
