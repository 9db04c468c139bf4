package provisioning

import (
	"errors"
	"fmt"
)

// Kind classifies a lifecycle failure.
type Kind int

const (
	// KindConfiguration is an invalid input, template or request.
	KindConfiguration Kind = iota + 1
	// KindTransientProvider is a provider capacity failure worth retrying.
	KindTransientProvider
	// KindFatalProvider is a provider failure that retrying cannot fix.
	KindFatalProvider
	// KindFatalHostingAPI is a GitHub API failure.
	KindFatalHostingAPI
	// KindPollTimeout is a spent attempt budget.
	KindPollTimeout
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransientProvider:
		return "transient provider"
	case KindFatalProvider:
		return "fatal provider"
	case KindFatalHostingAPI:
		return "fatal hosting api"
	case KindPollTimeout:
		return "poll timeout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a classified lifecycle failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
	// Hint tells the operator what to do next, e.g. which resource needs manual cleanup.
	Hint string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err or any Error it wraps has the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

func newError(kind Kind, op string, err error, hint string) *Error {
	return &Error{Kind: kind, Op: op, Err: err, Hint: hint}
}
