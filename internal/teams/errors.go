package teams

import "errors"

// Error kinds. Every failure returned by the service unwraps to one of these.
var (
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrExpired          = errors.New("expired")
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrProtectedAccount = errors.New("protected account")
)

// Error pairs a kind with the message shown to the user.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError returns an Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Message extracts the user-facing message from err, or "" if err carries none.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

var (
	errTeamNotFound       = NewError(ErrNotFound, "Team not found")
	errMemberNotFound     = NewError(ErrNotFound, "Member not found")
	errInvitationNotFound = NewError(ErrNotFound, "Invitation not found")
	errNoAccess           = NewError(ErrForbidden, "You do not have access to this team")
	errProtectedAccount   = NewError(ErrProtectedAccount, "Demo accounts cannot be modified.")
)
