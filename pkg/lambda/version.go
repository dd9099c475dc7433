package lambda

import (
	"errors"
	"fmt"
)

// InvocationVersion identifies the payload format of an API Gateway event.
type InvocationVersion string

const (
	// VersionREST is the REST-API payload, also used when an event has no
	// version field.
	VersionREST InvocationVersion = "1.0"
	// VersionHTTP is the HTTP-API payload.
	VersionHTTP InvocationVersion = "2.0"
)

var ErrUnsupportedInvocationVersion = errors.New("unsupported invocation version")

// UnsupportedVersionError is returned for events whose version is not one of
// the known invocation versions.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported invocation version %q", e.Version)
}

func (e *UnsupportedVersionError) Unwrap() error {
	return ErrUnsupportedInvocationVersion
}

// ParseVersion validates an event version string.
func ParseVersion(s string) (InvocationVersion, error) {
	switch v := InvocationVersion(s); v {
	case VersionREST, VersionHTTP:
		return v, nil
	default:
		return "", &UnsupportedVersionError{Version: s}
	}
}

// IsUnsupportedVersion returns true if err was caused by an unknown invocation version
func IsUnsupportedVersion(err error) bool {
	return errors.Is(err, ErrUnsupportedInvocationVersion)
}
