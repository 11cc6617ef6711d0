package hardware

import (
	"context"
	"sync"
)

// recordingPrinter captures every call for assertions.
type recordingPrinter struct {
	mu    sync.Mutex
	raw   [][]byte
	texts []string
	cuts  int
	err   error
}

func (p *recordingPrinter) PrintText(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts = append(p.texts, text)
	return p.err
}

func (p *recordingPrinter) PrintRaw(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raw = append(p.raw, append([]byte(nil), data...))
	return p.err
}

func (p *recordingPrinter) CutPaper(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cuts++
	return p.err
}

// recordingLogger keeps warn and error messages.
type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Debug(string, ...any) {}

func (l *recordingLogger) Info(string, ...any) {}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.Warn(msg)
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warnings)
}
