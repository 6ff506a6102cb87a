package apperror

import "fmt"

// Kind classifies an application error so callers (the HTTP layer, the
// reconciler) can decide how to react without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidTransition
	KindTransientStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindTransientStorage:
		return "transient_storage"
	default:
		return "unknown"
	}
}

// Error carries a kind, a user-facing message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error        { return New(KindValidation, message) }
func Validationf(f string, a ...any) *Error   { return Newf(KindValidation, f, a...) }
func NotFound(message string) *Error          { return New(KindNotFound, message) }
func NotFoundf(f string, a ...any) *Error     { return Newf(KindNotFound, f, a...) }
func Forbidden(message string) *Error         { return New(KindForbidden, message) }
func Conflict(message string) *Error          { return New(KindConflict, message) }
func Conflictf(f string, a ...any) *Error     { return Newf(KindConflict, f, a...) }
func InvalidTransition(message string) *Error { return New(KindInvalidTransition, message) }
func TransientStorage(err error) *Error {
	return Wrap(err, KindTransientStorage, "storage unavailable")
}

// KindOf returns the kind of err, walking the wrap chain. Errors that are not
// *Error report KindUnknown.
func KindOf(err error) Kind {
	for err != nil {
		if ae, ok := err.(*Error); ok {
			return ae.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return KindUnknown
		}
		err = u.Unwrap()
	}
	return KindUnknown
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
