package hardware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"go.bug.st/serial"
)

func TestParseSerialConnection(t *testing.T) {
	tests := []struct {
		in       string
		wantPort string
		wantBaud int
	}{
		{"COM3:19200", "COM3", 19200},
		{"COM1", "COM1", 9600},
		{"/dev/ttyUSB0:115200", "/dev/ttyUSB0", 115200},
		{"/dev/ttyUSB0", "/dev/ttyUSB0", 9600},
		{"COM1:fast", "COM1", 9600},
		{"COM1:", "COM1", 9600},
		{"COM1:-5", "COM1", 9600},
		{"a:b:c", "a:b:c", 9600},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			port, baud := ParseSerialConnection(tt.in)
			if port != tt.wantPort || baud != tt.wantBaud {
				t.Errorf("ParseSerialConnection(%q) = (%q, %d), want (%q, %d)",
					tt.in, port, baud, tt.wantPort, tt.wantBaud)
			}
		})
	}
}

// fakePort records bytes written, optionally in small chunks.
type fakePort struct {
	buf      bytes.Buffer
	chunk    int
	writeErr error
	closed   bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	if p.chunk > 0 && len(b) > p.chunk {
		b = b[:p.chunk]
	}
	return p.buf.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

type openCall struct {
	name string
	baud int
}

func fakeOpener(port *fakePort, openErr error, calls *[]openCall) portOpener {
	return func(name string, mode *serial.Mode) (io.WriteCloser, error) {
		*calls = append(*calls, openCall{name: name, baud: mode.BaudRate})
		if openErr != nil {
			return nil, openErr
		}
		return port, nil
	}
}

func TestSerialPrinter_Operations(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(p *SerialPrinter) error
		want []byte
	}{
		{"print text", func(p *SerialPrinter) error { return p.PrintText(ctx, "hi") }, []byte("\x1B\x40hi\n")},
		{"cut paper", func(p *SerialPrinter) error { return p.CutPaper(ctx) }, FeedAndCut},
		{"print raw", func(p *SerialPrinter) error { return p.PrintRaw(ctx, DrawerKick) }, DrawerKick},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &fakePort{chunk: 2}
			var calls []openCall
			printer := NewSerialPrinter("COM4:38400")
			printer.link.open = fakeOpener(port, nil, &calls)

			if err := tt.call(printer); err != nil {
				t.Fatalf("error = %v", err)
			}
			if !bytes.Equal(port.buf.Bytes(), tt.want) {
				t.Errorf("written = % X, want % X", port.buf.Bytes(), tt.want)
			}
			if !port.closed {
				t.Error("port was not closed")
			}
			if len(calls) != 1 || calls[0] != (openCall{"COM4", 38400}) {
				t.Errorf("open calls = %+v", calls)
			}
		})
	}
}

func TestSerialPrinter_OpenFailure(t *testing.T) {
	var calls []openCall
	printer := NewSerialPrinter("COM9")
	printer.link.open = fakeOpener(nil, errors.New("no such port"), &calls)

	err := printer.CutPaper(context.Background())
	if !errors.Is(err, ErrIO) {
		t.Fatalf("error = %v, want ErrIO", err)
	}
	if err.Error() != "io error: failed to open serial port COM9: no such port" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestSerialPrinter_WriteFailureClosesPort(t *testing.T) {
	port := &fakePort{writeErr: errors.New("device unplugged")}
	var calls []openCall
	printer := NewSerialPrinter("COM4")
	printer.link.open = fakeOpener(port, nil, &calls)

	if err := printer.PrintText(context.Background(), "x"); !errors.Is(err, ErrIO) {
		t.Errorf("error = %v, want ErrIO", err)
	}
	if !port.closed {
		t.Error("port must be closed after a failed write")
	}
}

func TestSerialDisplay(t *testing.T) {
	ctx := context.Background()
	port := &fakePort{}
	var calls []openCall
	display := NewSerialDisplay("")
	display.link.open = fakeOpener(port, nil, &calls)

	if name, baud := display.Port(); name != "COM2" || baud != 9600 {
		t.Errorf("default port = (%q, %d), want (COM2, 9600)", name, baud)
	}

	if err := display.ShowText(ctx, "Coffee", "2.50"); err != nil {
		t.Fatalf("ShowText() error = %v", err)
	}
	if got, want := port.buf.Bytes(), []byte("\x0CCoffee\r\n2.50"); !bytes.Equal(got, want) {
		t.Errorf("ShowText wrote % X, want % X", got, want)
	}

	port.buf.Reset()
	if err := display.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := port.buf.Bytes(); !bytes.Equal(got, []byte{0x0C}) {
		t.Errorf("Clear wrote % X, want 0C", got)
	}
	if len(calls) != 2 {
		t.Errorf("port opened %d times, want once per operation", len(calls))
	}
}
