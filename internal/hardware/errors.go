package hardware

import (
	"errors"
	"fmt"
)

// Error kinds carried by DeviceError.
//
// Check them with errors.Is:
//
//	if errors.Is(err, hardware.ErrIO) {
//	    // connect, open or write failure
//	}
var (
	// ErrIO is the kind for transport connect, open and write failures.
	ErrIO = errors.New("io error")

	// ErrDevice is the kind for native API failures such as the OS spooler.
	ErrDevice = errors.New("device error")
)

// DeviceError is the single error type returned by adapters.
// Its message is what the requesting client sees.
type DeviceError struct {
	Kind  error
	Cause string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
}

func (e *DeviceError) Unwrap() error {
	return e.Kind
}

func ioErrorf(format string, args ...any) error {
	return &DeviceError{Kind: ErrIO, Cause: fmt.Sprintf(format, args...)}
}

func deviceErrorf(format string, args ...any) error {
	return &DeviceError{Kind: ErrDevice, Cause: fmt.Sprintf(format, args...)}
}
