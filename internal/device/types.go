package device

// Kind is the capability family of a device.
type Kind string

// Device kinds.
const (
	KindPrinter Kind = "printer"
	KindDrawer  Kind = "drawer"
	KindDisplay Kind = "display"
)

// Recognised device_type values.
const (
	TypeMock          = "mock"
	TypeNetwork       = "network"
	TypeESCPOSNetwork = "esc_pos_network"
	TypeSerial        = "serial"
	TypeWindows       = "windows"
	TypePrinterDriven = "printer_driven"
)

// Info describes one loaded device.
//
// Adapter is the transport actually in use, which differs from DeviceType
// when an unrecognised type or a broken reference fell back to the mock.
type Info struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	DeviceType string `json:"device_type"`
	Adapter    string `json:"adapter"`
	Connection string `json:"connection,omitempty"`
}
