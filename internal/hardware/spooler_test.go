package hardware

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeSpooler records the call sequence and fails on request.
type fakeSpooler struct {
	mu       sync.Mutex
	calls    []string
	written  []byte
	failOn   string
	short    bool
	closeErr error
	block    chan struct{}
	closed   chan struct{}
}

func newFakeSpooler() *fakeSpooler {
	return &fakeSpooler{closed: make(chan struct{}, 1)}
}

func (f *fakeSpooler) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errors.New(name + " failed")
	}
	return nil
}

func (f *fakeSpooler) sequence() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.calls, ",")
}

func (f *fakeSpooler) OpenPrinter(string) (spoolerHandle, error) {
	if err := f.record("open"); err != nil {
		return 0, err
	}
	return 42, nil
}

func (f *fakeSpooler) StartDocPrinter(h spoolerHandle, docName, dataType string) error {
	if h != 42 || docName != "POS Service Receipt" || dataType != "RAW" {
		return errors.New("unexpected StartDocPrinter arguments")
	}
	return f.record("startdoc")
}

func (f *fakeSpooler) StartPagePrinter(spoolerHandle) error {
	return f.record("startpage")
}

func (f *fakeSpooler) WritePrinter(_ spoolerHandle, data []byte) (int, error) {
	if f.block != nil {
		<-f.block
	}
	if err := f.record("write"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	f.written = append(f.written, data...)
	f.mu.Unlock()
	if f.short {
		return len(data) - 1, nil
	}
	return len(data), nil
}

func (f *fakeSpooler) EndPagePrinter(spoolerHandle) error {
	return f.record("endpage")
}

func (f *fakeSpooler) EndDocPrinter(spoolerHandle) error {
	return f.record("enddoc")
}

func (f *fakeSpooler) ClosePrinter(spoolerHandle) error {
	_ = f.record("close")
	f.closed <- struct{}{}
	return f.closeErr
}

func TestSpoolerPrinter_JobSequence(t *testing.T) {
	tests := []struct {
		name    string
		failOn  string
		short   bool
		wantErr bool
		wantSeq string
	}{
		{
			name:    "success",
			wantSeq: "open,startdoc,startpage,write,endpage,enddoc,close",
		},
		{
			name:    "open failure acquires nothing",
			failOn:  "open",
			wantErr: true,
			wantSeq: "open",
		},
		{
			name:    "start doc failure releases handle",
			failOn:  "startdoc",
			wantErr: true,
			wantSeq: "open,startdoc,close",
		},
		{
			name:    "start page failure ends doc and releases handle",
			failOn:  "startpage",
			wantErr: true,
			wantSeq: "open,startdoc,startpage,enddoc,close",
		},
		{
			name:    "write failure still ends job and releases handle",
			failOn:  "write",
			wantErr: true,
			wantSeq: "open,startdoc,startpage,write,endpage,enddoc,close",
		},
		{
			name:    "short write is an error",
			short:   true,
			wantErr: true,
			wantSeq: "open,startdoc,startpage,write,endpage,enddoc,close",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeSpooler()
			api.failOn = tt.failOn
			api.short = tt.short
			printer := &SpoolerPrinter{name: "Receipt", api: api, logger: noopLogger{}}

			err := printer.PrintRaw(context.Background(), []byte("abc"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("PrintRaw() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrDevice) {
				t.Errorf("error = %v, want ErrDevice kind", err)
			}
			if got := api.sequence(); got != tt.wantSeq {
				t.Errorf("call sequence = %s, want %s", got, tt.wantSeq)
			}
		})
	}
}

func TestSpoolerPrinter_ReleaseFailureIsSwallowed(t *testing.T) {
	api := newFakeSpooler()
	api.closeErr = errors.New("invalid handle")
	logger := &recordingLogger{}
	printer := &SpoolerPrinter{name: "Receipt", api: api, logger: logger}

	if err := printer.CutPaper(context.Background()); err != nil {
		t.Fatalf("CutPaper() error = %v, want nil", err)
	}
	if !bytes.Equal(api.written, FeedAndCut) {
		t.Errorf("written = % X, want feed and cut", api.written)
	}
	if logger.count() != 1 {
		t.Errorf("warnings = %d, want 1", logger.count())
	}
}

func TestSpoolerPrinter_ReleaseFailureDoesNotMaskWriteError(t *testing.T) {
	api := newFakeSpooler()
	api.failOn = "write"
	api.closeErr = errors.New("invalid handle")
	printer := &SpoolerPrinter{name: "Receipt", api: api, logger: &recordingLogger{}}

	err := printer.PrintText(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "write failed") {
		t.Errorf("error = %v, want the write failure", err)
	}
}

func TestSpoolerPrinter_CallerCancelStillReleases(t *testing.T) {
	api := newFakeSpooler()
	api.block = make(chan struct{})
	printer := &SpoolerPrinter{name: "Receipt", api: api, logger: noopLogger{}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- printer.PrintRaw(ctx, []byte("x")) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, ErrDevice) {
			t.Errorf("error = %v, want ErrDevice", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("PrintRaw did not return after cancellation")
	}

	close(api.block)
	select {
	case <-api.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("handle was not released after the job finished")
	}
}

func TestSpoolerPrinter_NativeUnsupported(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("native spooler available")
	}

	err := NewSpoolerPrinter("Receipt", nil).PrintText(context.Background(), "x")
	if !errors.Is(err, ErrDevice) {
		t.Fatalf("error = %v, want ErrDevice", err)
	}
	want := "device error: OS spooler printing not supported on " + runtime.GOOS
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}
