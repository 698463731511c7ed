// Package apperr defines the typed outcomes returned by the authorization and
// lifecycle core. Callers branch on Kind; the CLI maps it to an exit code.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind discriminates failure outcomes.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindPermissionDenied
	KindNotFound
	KindPreconditionFailed
	KindInvalidInput
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "AuthError"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindNotFound:
		return "NotFound"
	case KindPreconditionFailed:
		return "PreconditionFailed"
	case KindInvalidInput:
		return "InvalidInput"
	case KindStorage:
		return "StorageError"
	default:
		return "Unknown"
	}
}

// Exit codes for consuming CLIs.
const (
	ExitOK                 = 0
	ExitUnexpected         = 1
	ExitUsage              = 2
	ExitAuth               = 3
	ExitPermissionDenied   = 4
	ExitNotFound           = 5
	ExitPreconditionFailed = 6
	ExitInvalidInput       = 7
	ExitStorage            = 8
)

// ExitCode returns the process exit code associated with the kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindAuth:
		return ExitAuth
	case KindPermissionDenied:
		return ExitPermissionDenied
	case KindNotFound:
		return ExitNotFound
	case KindPreconditionFailed:
		return ExitPreconditionFailed
	case KindInvalidInput:
		return ExitInvalidInput
	case KindStorage:
		return ExitStorage
	default:
		return ExitUnexpected
	}
}

// Error is a typed outcome. Op names the operation that failed; Role is set
// on permission denials for diagnostics.
type Error struct {
	Kind   Kind
	Op     string
	Role   string
	Msg    string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteString(" [" + e.Op + "]")
	}
	if e.Role != "" {
		b.WriteString(" role=" + e.Role)
	}
	if e.Msg != "" {
		b.WriteString(": " + e.Msg)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+e.Fields[k])
		}
		b.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a kind sentinel matching e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrAuth               = &Error{Kind: KindAuth}
	ErrPermissionDenied   = &Error{Kind: KindPermissionDenied}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrPreconditionFailed = &Error{Kind: KindPreconditionFailed}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrStorage            = &Error{Kind: KindStorage}
)

// KindOf extracts the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitCode maps err to a process exit code; nil is success.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return KindOf(err).ExitCode()
}

func Auth(op, msg string) *Error {
	return &Error{Kind: KindAuth, Op: op, Msg: msg}
}

func PermissionDenied(op, role string) *Error {
	return &Error{Kind: KindPermissionDenied, Op: op, Role: role, Msg: "operation not allowed for role"}
}

func NotFound(op, entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf("%s %v does not exist", entity, id)}
}

func PreconditionFailed(op, msg string) *Error {
	return &Error{Kind: KindPreconditionFailed, Op: op, Msg: msg}
}

func InvalidInput(op, msg string, fields map[string]string) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Msg: msg, Fields: fields}
}

func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Msg: "storage failure", Err: err}
}
