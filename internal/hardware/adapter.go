package hardware

import "context"

// Printer is a receipt printer.
type Printer interface {
	// PrintText prints one line of text, initializing the printer first.
	PrintText(ctx context.Context, text string) error
	// PrintRaw sends bytes to the printer unchanged, as a single job.
	PrintRaw(ctx context.Context, data []byte) error
	// CutPaper feeds and cuts the paper.
	CutPaper(ctx context.Context) error
}

// Drawer is a cash drawer.
type Drawer interface {
	Open(ctx context.Context) error
}

// Display is a two-line customer-facing display.
type Display interface {
	ShowText(ctx context.Context, line1, line2 string) error
	Clear(ctx context.Context) error
}

// Logger defines the logging interface used by adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func orNoop(logger Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return logger
}
