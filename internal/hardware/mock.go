package hardware

import "context"

// MockPrinter logs every operation and always succeeds.
type MockPrinter struct {
	id     string
	logger Logger
}

// NewMockPrinter creates a mock printer. A nil logger discards output.
func NewMockPrinter(id string, logger Logger) *MockPrinter {
	return &MockPrinter{id: id, logger: orNoop(logger)}
}

func (m *MockPrinter) PrintText(_ context.Context, text string) error {
	m.logger.Info("mock printer: print text", "device_id", m.id, "text", text)
	return nil
}

func (m *MockPrinter) PrintRaw(_ context.Context, data []byte) error {
	m.logger.Info("mock printer: print raw", "device_id", m.id, "bytes", len(data))
	return nil
}

func (m *MockPrinter) CutPaper(_ context.Context) error {
	m.logger.Info("mock printer: cut paper", "device_id", m.id)
	return nil
}

// MockDrawer logs every operation and always succeeds.
type MockDrawer struct {
	id     string
	logger Logger
}

// NewMockDrawer creates a mock drawer. A nil logger discards output.
func NewMockDrawer(id string, logger Logger) *MockDrawer {
	return &MockDrawer{id: id, logger: orNoop(logger)}
}

func (m *MockDrawer) Open(_ context.Context) error {
	m.logger.Info("mock drawer: open", "device_id", m.id)
	return nil
}

// MockDisplay logs every operation and always succeeds.
type MockDisplay struct {
	id     string
	logger Logger
}

// NewMockDisplay creates a mock display. A nil logger discards output.
func NewMockDisplay(id string, logger Logger) *MockDisplay {
	return &MockDisplay{id: id, logger: orNoop(logger)}
}

func (m *MockDisplay) ShowText(_ context.Context, line1, line2 string) error {
	m.logger.Info("mock display: show text", "device_id", m.id, "line1", line1, "line2", line2)
	return nil
}

func (m *MockDisplay) Clear(_ context.Context) error {
	m.logger.Info("mock display: clear", "device_id", m.id)
	return nil
}
