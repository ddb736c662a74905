package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInternal        = errors.New("internal error")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidToken    = errors.New("invalid token")

	// Telegram initData rejections. ErrConfiguration is raised only at startup.
	ErrConfiguration         = errors.New("configuration error")
	ErrMalformedPayload      = errors.New("malformed payload")
	ErrMissingAuthParameters = errors.New("missing auth parameters")
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrStaleAuthData         = errors.New("stale auth data")
)

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func NewConfiguration(msg string) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, msg)
}

func NewMalformedPayload(msg string) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, msg)
}

func NewMissingAuthParameters(msg string) error {
	return fmt.Errorf("%w: %s", ErrMissingAuthParameters, msg)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsBadInput reports errors caused by a request the client should not retry as is.
func IsBadInput(err error) bool {
	return errors.Is(err, ErrMalformedPayload) ||
		errors.Is(err, ErrMissingAuthParameters) ||
		errors.Is(err, ErrInvalidArgument)
}

// IsUnauthorized reports well-formed credentials that were refused.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrStaleAuthData)
}

// Kind returns a stable snake_case name for err, used as a log field and
// metrics label. It never contains request data.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, ErrMissingAuthParameters):
		return "missing_auth_parameters"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrStaleAuthData):
		return "stale_auth_data"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	default:
		return "internal"
	}
}
