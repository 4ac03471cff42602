package event

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrDependency = errors.New("dependency failure")
)

// Error carries a stable machine-readable code next to its kind.
type Error struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

const (
	CodeInvalidExtension = "XE_2"
	CodeFileTooLarge     = "XE_3"
	CodeWrongURL         = "XE_4"
	CodeURLUnavailable   = "XE_5"
	CodeDependency       = "XE_16"
	CodeNotFound         = "XE_24"
	CodeForbidden        = "XE_30"
	CodeStatusConflict   = "XE_31"
	CodeTimeConflict     = "XE_32"
)

func errNotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Code: CodeNotFound, Message: msg}
}

func errForbidden() error {
	return &Error{Kind: ErrForbidden, Code: CodeForbidden, Message: "caller does not own the event"}
}

func errStatusConflict(msg string) error {
	return &Error{Kind: ErrConflict, Code: CodeStatusConflict, Message: msg}
}

func errTimeConflict(msg string) error {
	return &Error{Kind: ErrConflict, Code: CodeTimeConflict, Message: msg}
}

func errValidation(code, msg string) error {
	return &Error{Kind: ErrValidation, Code: code, Message: msg}
}

func errDependency(msg string, err error) error {
	return &Error{Kind: ErrDependency, Code: CodeDependency, Message: msg, Err: err}
}

// CodeOf returns the code of a domain error, or "" for anything else.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
