package hardware

import (
	"context"
	"errors"
	"runtime"
)

// spoolDocName is the document name shown in the OS print queue.
const spoolDocName = "POS Service Receipt"

var errSpoolerUnsupported = errors.New("OS spooler printing not supported on " + runtime.GOOS)

// spoolerHandle is an opaque native printer handle.
type spoolerHandle uintptr

// spoolerAPI is the subset of the native print spooler used for RAW jobs.
type spoolerAPI interface {
	OpenPrinter(name string) (spoolerHandle, error)
	StartDocPrinter(h spoolerHandle, docName, dataType string) error
	StartPagePrinter(h spoolerHandle) error
	WritePrinter(h spoolerHandle, data []byte) (int, error)
	EndPagePrinter(h spoolerHandle) error
	EndDocPrinter(h spoolerHandle) error
	ClosePrinter(h spoolerHandle) error
}

// SpoolerPrinter submits RAW jobs through the operating system print spooler.
//
// The spooler calls block, so each job runs on its own goroutine and the
// caller waits for it or for ctx. A job whose caller gave up still runs to
// completion and releases its handle.
type SpoolerPrinter struct {
	name   string
	api    spoolerAPI
	logger Logger
}

// NewSpoolerPrinter creates a printer for the OS queue called name.
func NewSpoolerPrinter(name string, logger Logger) *SpoolerPrinter {
	return &SpoolerPrinter{name: name, api: nativeSpooler(), logger: orNoop(logger)}
}

// Name returns the OS printer name.
func (p *SpoolerPrinter) Name() string {
	return p.name
}

func (p *SpoolerPrinter) PrintText(ctx context.Context, text string) error {
	return p.submit(ctx, textJob(text))
}

func (p *SpoolerPrinter) PrintRaw(ctx context.Context, data []byte) error {
	return p.submit(ctx, data)
}

func (p *SpoolerPrinter) CutPaper(ctx context.Context) error {
	return p.submit(ctx, FeedAndCut)
}

func (p *SpoolerPrinter) submit(ctx context.Context, data []byte) error {
	result := make(chan error, 1)
	go func() {
		result <- p.job(data)
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return deviceErrorf("stopped waiting for printer %q: %v", p.name, ctx.Err())
	}
}

// job runs one RAW print job. The handle is released on every path once
// acquired; a release failure is logged so it cannot mask the job's error.
func (p *SpoolerPrinter) job(data []byte) error {
	h, err := p.api.OpenPrinter(p.name)
	if err != nil {
		if errors.Is(err, errSpoolerUnsupported) {
			return deviceErrorf("%v", err)
		}
		return deviceErrorf("failed to open printer %q: %v", p.name, err)
	}
	defer func() {
		if err := p.api.ClosePrinter(h); err != nil {
			p.logger.Warn("failed to release printer handle", "printer", p.name, "error", err)
		}
	}()

	if err := p.api.StartDocPrinter(h, spoolDocName, "RAW"); err != nil {
		return deviceErrorf("failed to start print job on %q: %v", p.name, err)
	}

	if err := p.api.StartPagePrinter(h); err != nil {
		p.endDoc(h)
		return deviceErrorf("failed to start page on %q: %v", p.name, err)
	}

	written, writeErr := p.api.WritePrinter(h, data)

	if err := p.api.EndPagePrinter(h); err != nil {
		p.logger.Warn("failed to end page", "printer", p.name, "error", err)
	}
	p.endDoc(h)

	if writeErr != nil {
		return deviceErrorf("failed to write to printer %q: %v", p.name, writeErr)
	}
	if written != len(data) {
		return deviceErrorf("short write to printer %q: wrote %d of %d bytes", p.name, written, len(data))
	}
	return nil
}

func (p *SpoolerPrinter) endDoc(h spoolerHandle) {
	if err := p.api.EndDocPrinter(h); err != nil {
		p.logger.Warn("failed to end print job", "printer", p.name, "error", err)
	}
}
