package hardware

import (
	"context"
	"net"
)

// NetworkPrinter drives an ESC/POS printer over raw TCP (usually port 9100).
// A new connection is dialled for every operation and closed afterwards.
type NetworkPrinter struct {
	address string
	dialer  net.Dialer
}

// NewNetworkPrinter creates a printer reached at address (host:port).
func NewNetworkPrinter(address string) *NetworkPrinter {
	return &NetworkPrinter{address: address}
}

// Address returns the configured host:port.
func (p *NetworkPrinter) Address() string {
	return p.address
}

func (p *NetworkPrinter) PrintText(ctx context.Context, text string) error {
	return p.send(ctx, textJob(text))
}

func (p *NetworkPrinter) PrintRaw(ctx context.Context, data []byte) error {
	return p.send(ctx, data)
}

func (p *NetworkPrinter) CutPaper(ctx context.Context) error {
	return p.send(ctx, FeedAndCut)
}

func (p *NetworkPrinter) send(ctx context.Context, data []byte) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return ioErrorf("failed to connect to printer at %s: %v", p.address, err)
	}
	defer conn.Close()

	if _, err := conn.Write(data); err != nil {
		return ioErrorf("failed to write to printer: %v", err)
	}
	return nil
}
