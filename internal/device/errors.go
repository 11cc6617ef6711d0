package device

import "errors"

// Domain errors for the device package.
//
// A lookup miss is not an error: GetPrinter, GetDrawer and GetDisplay
// report it through their boolean result.
var (
	// ErrAlreadyLoaded is returned when Load is called a second time.
	ErrAlreadyLoaded = errors.New("device: registry already loaded")

	// ErrDuplicateID is returned when two devices of the same kind share an id.
	ErrDuplicateID = errors.New("device: duplicate id")

	// ErrMissingConnection is returned when a transport needs a connection string and has none.
	ErrMissingConnection = errors.New("device: missing connection")
)
