package services

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation     Kind = "validation"
	KindBusinessRule   Kind = "business_rule"
	KindAuth           Kind = "auth"
	KindChallenge      Kind = "challenge"
	KindInfrastructure Kind = "infrastructure"
	KindThrottled      Kind = "throttled"
)

// Error is what services return for every expected failure.
// Code is the machine-readable kind sent to clients; Message is safe to show.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is compares by Code, so copies with a different Message still match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

var (
	ErrAlreadyExists     = &Error{Kind: KindBusinessRule, Code: "already_exists", Message: "User with this email already exists"}
	ErrNotFound          = &Error{Kind: KindBusinessRule, Code: "not_found", Message: "Not found"}
	ErrDuplicateAccount  = &Error{Kind: KindBusinessRule, Code: "duplicate_account", Message: "User with this email already exists"}
	ErrInvalidCredential = &Error{Kind: KindAuth, Code: "invalid_credential", Message: "Invalid email or password"}
	ErrBanned            = &Error{Kind: KindAuth, Code: "banned", Message: "Your account has been banned by the administrator. Please contact admin for support."}
	ErrForbidden         = &Error{Kind: KindAuth, Code: "forbidden", Message: "You are not allowed to perform this action"}
	ErrChallengeNotFound = &Error{Kind: KindChallenge, Code: "challenge_not_found", Message: "OTP expired or not found. Please request a new OTP."}
	ErrInvalidCode       = &Error{Kind: KindChallenge, Code: "invalid_code", Message: "Invalid OTP. Please try again."}
	ErrTooManyAttempts   = &Error{Kind: KindChallenge, Code: "too_many_attempts", Message: "Too many failed attempts. Please request a new OTP."}
	ErrOTPThrottled      = &Error{Kind: KindThrottled, Code: "throttled", Message: "Too many OTP requests. Please try again later."}
)

// NotFound is ErrNotFound with a specific message.
func NotFound(msg string) *Error {
	return &Error{Kind: KindBusinessRule, Code: ErrNotFound.Code, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Code: "validation", Message: msg}
}

// Infra wraps a storage or delivery failure. The cause stays in Err for logs only.
func Infra(op string, err error) *Error {
	return &Error{
		Kind:    KindInfrastructure,
		Code:    "internal",
		Message: "Something went wrong. Please try again.",
		Err:     fmt.Errorf("%s: %w", op, err),
	}
}

// KindOf returns the kind of err, treating anything unknown as infrastructure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}
