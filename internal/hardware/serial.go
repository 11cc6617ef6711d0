package hardware

import (
	"context"
	"io"
	"strconv"
	"strings"

	"go.bug.st/serial"
)

// DefaultBaudRate is used when a serial connection string has no usable baud rate.
const DefaultBaudRate = 9600

// DefaultDisplayConnection is used for serial displays configured without a connection.
const DefaultDisplayConnection = "COM2:9600"

// portOpener opens a serial port for writing. Swapped out in tests.
type portOpener func(name string, mode *serial.Mode) (io.WriteCloser, error)

func openSerialPort(name string, mode *serial.Mode) (io.WriteCloser, error) {
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// ParseSerialConnection splits a "PORT[:BAUD]" connection string.
//
// The baud rate falls back to DefaultBaudRate when it is missing, not a
// positive integer, or when the string does not have exactly one colon.
//
// Examples:
//
//	ParseSerialConnection("COM3:19200")   // "COM3", 19200
//	ParseSerialConnection("/dev/ttyUSB0") // "/dev/ttyUSB0", 9600
//	ParseSerialConnection("COM1:fast")    // "COM1", 9600
func ParseSerialConnection(conn string) (port string, baud int) {
	parts := strings.Split(conn, ":")
	if len(parts) != 2 {
		return conn, DefaultBaudRate
	}
	baud, err := strconv.Atoi(parts[1])
	if err != nil || baud <= 0 {
		return parts[0], DefaultBaudRate
	}
	return parts[0], baud
}

// ListSerialPorts returns the serial ports present on this host.
func ListSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, ioErrorf("failed to enumerate serial ports: %v", err)
	}
	return ports, nil
}

// serialLink opens a port, writes one payload and closes it again.
type serialLink struct {
	port string
	baud int
	open portOpener
}

func newSerialLink(connection string) serialLink {
	port, baud := ParseSerialConnection(connection)
	return serialLink{port: port, baud: baud, open: openSerialPort}
}

func (l serialLink) send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return ioErrorf("failed to open serial port %s: %v", l.port, err)
	}

	w, err := l.open(l.port, &serial.Mode{BaudRate: l.baud, DataBits: 8})
	if err != nil {
		return ioErrorf("failed to open serial port %s: %v", l.port, err)
	}
	defer w.Close()

	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return ioErrorf("failed to write to serial port %s: %v", l.port, err)
		}
		if n == 0 {
			return ioErrorf("failed to write to serial port %s: %v", l.port, io.ErrShortWrite)
		}
		data = data[n:]
	}
	return nil
}

// SerialPrinter drives an ESC/POS printer on a serial line.
type SerialPrinter struct {
	link serialLink
}

// NewSerialPrinter creates a printer from a "PORT[:BAUD]" connection string.
func NewSerialPrinter(connection string) *SerialPrinter {
	return &SerialPrinter{link: newSerialLink(connection)}
}

// Port returns the serial port name and baud rate in use.
func (p *SerialPrinter) Port() (string, int) {
	return p.link.port, p.link.baud
}

func (p *SerialPrinter) PrintText(ctx context.Context, text string) error {
	return p.link.send(ctx, textJob(text))
}

func (p *SerialPrinter) PrintRaw(ctx context.Context, data []byte) error {
	return p.link.send(ctx, data)
}

func (p *SerialPrinter) CutPaper(ctx context.Context) error {
	return p.link.send(ctx, FeedAndCut)
}

// SerialDisplay drives a two-line pole display on a serial line.
type SerialDisplay struct {
	link serialLink
}

// NewSerialDisplay creates a display from a "PORT[:BAUD]" connection string.
// An empty connection uses DefaultDisplayConnection.
func NewSerialDisplay(connection string) *SerialDisplay {
	if connection == "" {
		connection = DefaultDisplayConnection
	}
	return &SerialDisplay{link: newSerialLink(connection)}
}

// Port returns the serial port name and baud rate in use.
func (d *SerialDisplay) Port() (string, int) {
	return d.link.port, d.link.baud
}

func (d *SerialDisplay) ShowText(ctx context.Context, line1, line2 string) error {
	return d.link.send(ctx, displayFrame(line1, line2))
}

func (d *SerialDisplay) Clear(ctx context.Context) error {
	return d.link.send(ctx, []byte{displayClear})
}
