package protocol

import (
	"errors"
	"fmt"
)

// ErrInvalidCommand matches every error returned by Decode.
var ErrInvalidCommand = errors.New("protocol: invalid command")

// DecodeError describes why an inbound message was rejected.
// Its message is the cause alone, ready to follow "Invalid JSON format: ".
type DecodeError struct {
	msg string
	err error
}

func (e *DecodeError) Error() string {
	return e.msg
}

// Is makes DecodeError match ErrInvalidCommand.
func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidCommand
}

// Unwrap returns the underlying JSON error, if any.
func (e *DecodeError) Unwrap() error {
	return e.err
}

func decodeErr(err error, msg string) *DecodeError {
	return &DecodeError{msg: msg, err: err}
}

func missingField(name string) *DecodeError {
	return decodeErr(nil, fmt.Sprintf("missing field %q", name))
}
