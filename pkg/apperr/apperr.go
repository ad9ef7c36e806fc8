// Package apperr holds the closed set of failure kinds the service reports.
// The HTTP layer is the only place that turns a kind into a status code.
package apperr

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindStore Kind = iota
	KindValidation
	KindMissingAsset
	KindDuplicateUsername
	KindUnknownUser
	KindInvalidCredentials
	KindNotFound
	KindMissingToken
	KindInvalidToken
	KindForbidden
	KindUploadFailed
)

var kindNames = map[Kind]string{
	KindStore:              "store",
	KindValidation:         "validation",
	KindMissingAsset:       "missing asset",
	KindDuplicateUsername:  "duplicate username",
	KindUnknownUser:        "user not found",
	KindInvalidCredentials: "invalid credentials",
	KindNotFound:           "not found",
	KindMissingToken:       "missing token",
	KindInvalidToken:       "invalid token",
	KindForbidden:          "forbidden",
	KindUploadFailed:       "upload failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil && e.Err.Error() != msg {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrStore              = &Error{Kind: KindStore}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrMissingAsset       = &Error{Kind: KindMissingAsset}
	ErrDuplicateUsername  = &Error{Kind: KindDuplicateUsername}
	ErrUnknownUser        = &Error{Kind: KindUnknownUser}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrMissingToken       = &Error{Kind: KindMissingToken}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrUploadFailed       = &Error{Kind: KindUploadFailed}
)

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the kind of the outermost *Error in err's chain.
// Errors that carry no kind are store failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// Message is the caller-facing text for err.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return KindStore.String()
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String()
}
