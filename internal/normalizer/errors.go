package normalizer

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedEvent         = errors.New("malformed invocation event")
	ErrMalformedQueryEncoding = errors.New("malformed query encoding")
	ErrBodyDecode             = errors.New("body decoding failed")
)

// BodyDecodeError is returned when an event body cannot be decoded with the
// scheme the event declares.
type BodyDecodeError struct {
	Scheme string
	Err    error
}

func (e *BodyDecodeError) Error() string {
	return fmt.Sprintf("decode body as %s: %v", e.Scheme, e.Err)
}

func (e *BodyDecodeError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrBodyDecode.
func (e *BodyDecodeError) Is(target error) bool {
	return target == ErrBodyDecode
}
