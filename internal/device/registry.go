package device

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nerrad567/posbridge/internal/hardware"
	"github.com/nerrad567/posbridge/internal/infrastructure/config"
)

// Logger defines the logging interface used by the Registry.
// Adapters created by Load log through the same value.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry holds the configured peripherals, one map per kind.
//
// Load populates the maps exactly once; afterwards the registry is read-only
// and every lookup takes only the read lock. Adapter values are shared by
// all callers.
//
// All public methods are thread-safe.
type Registry struct {
	mu       sync.RWMutex
	printers map[string]hardware.Printer
	drawers  map[string]hardware.Drawer
	displays map[string]hardware.Display
	infos    []Info
	loaded   bool
	logger   Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		printers: make(map[string]hardware.Printer),
		drawers:  make(map[string]hardware.Drawer),
		displays: make(map[string]hardware.Display),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the registry and the adapters it creates.
// Call it before Load.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Load builds an adapter for every configured device.
//
// Printers are loaded first so printer-driven drawers can reference them.
// Unrecognised device types and unresolved printer references fall back to
// mock adapters with a logged warning or error; they do not fail the load.
// A duplicate id or a transport missing its connection string does, and in
// that case nothing is installed.
//
// Load may be called only once.
func (r *Registry) Load(cfg config.DevicesConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return ErrAlreadyLoaded
	}

	printers := make(map[string]hardware.Printer, len(cfg.Printers))
	drawers := make(map[string]hardware.Drawer, len(cfg.Drawers))
	displays := make(map[string]hardware.Display, len(cfg.Displays))
	var infos []Info

	for _, entry := range cfg.Printers {
		if _, exists := printers[entry.ID]; exists {
			return fmt.Errorf("%w: printer %q", ErrDuplicateID, entry.ID)
		}
		printer, adapter, err := r.newPrinter(entry)
		if err != nil {
			return err
		}
		printers[entry.ID] = printer
		infos = append(infos, newInfo(KindPrinter, entry, adapter))
	}

	for _, entry := range cfg.Drawers {
		if _, exists := drawers[entry.ID]; exists {
			return fmt.Errorf("%w: drawer %q", ErrDuplicateID, entry.ID)
		}
		drawer, adapter := r.newDrawer(entry, printers)
		drawers[entry.ID] = drawer
		infos = append(infos, newInfo(KindDrawer, entry, adapter))
	}

	for _, entry := range cfg.Displays {
		if _, exists := displays[entry.ID]; exists {
			return fmt.Errorf("%w: display %q", ErrDuplicateID, entry.ID)
		}
		display, adapter := r.newDisplay(entry)
		displays[entry.ID] = display
		infos = append(infos, newInfo(KindDisplay, entry, adapter))
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Kind != infos[j].Kind {
			return infos[i].Kind < infos[j].Kind
		}
		return infos[i].ID < infos[j].ID
	})

	r.printers = printers
	r.drawers = drawers
	r.displays = displays
	r.infos = infos
	r.loaded = true

	r.logger.Info("devices loaded",
		"printers", len(printers),
		"drawers", len(drawers),
		"displays", len(displays),
	)
	return nil
}

func (r *Registry) newPrinter(entry config.DeviceConfig) (hardware.Printer, string, error) {
	deviceType := normaliseType(entry.DeviceType)

	switch deviceType {
	case TypeMock:
		return hardware.NewMockPrinter(entry.ID, r.logger), TypeMock, nil

	case TypeNetwork, TypeESCPOSNetwork:
		if entry.Connection == "" {
			return nil, "", fmt.Errorf("%w: network printer %q needs host:port", ErrMissingConnection, entry.ID)
		}
		r.logger.Info("network printer configured", "device_id", entry.ID, "address", entry.Connection)
		return hardware.NewNetworkPrinter(entry.Connection), TypeNetwork, nil

	case TypeSerial:
		if entry.Connection == "" {
			return nil, "", fmt.Errorf("%w: serial printer %q needs PORT[:BAUD]", ErrMissingConnection, entry.ID)
		}
		printer := hardware.NewSerialPrinter(entry.Connection)
		port, baud := printer.Port()
		r.logger.Info("serial printer configured", "device_id", entry.ID, "port", port, "baud", baud)
		return printer, TypeSerial, nil

	case TypeWindows:
		if entry.Connection == "" {
			return nil, "", fmt.Errorf("%w: spooler printer %q needs a printer name", ErrMissingConnection, entry.ID)
		}
		r.logger.Info("spooler printer configured", "device_id", entry.ID, "printer", entry.Connection)
		return hardware.NewSpoolerPrinter(entry.Connection, r.logger), TypeWindows, nil

	case TypePrinterDriven:
		// Accepted for printers but carries no transport of its own.
		r.logger.Info("printer_driven printer has no transport, using mock", "device_id", entry.ID)
		return hardware.NewMockPrinter(entry.ID, r.logger), TypeMock, nil

	default:
		r.logger.Warn("unknown printer type, using mock", "device_id", entry.ID, "device_type", entry.DeviceType)
		return hardware.NewMockPrinter(entry.ID, r.logger), TypeMock, nil
	}
}

// newDrawer resolves a drawer against the printers loaded so far.
func (r *Registry) newDrawer(entry config.DeviceConfig, printers map[string]hardware.Printer) (hardware.Drawer, string) {
	switch normaliseType(entry.DeviceType) {
	case TypeMock:
		return hardware.NewMockDrawer(entry.ID, r.logger), TypeMock

	case TypePrinterDriven:
		printer, ok := printers[entry.Connection]
		if !ok {
			r.logger.Error("drawer references unknown printer, using mock",
				"device_id", entry.ID, "printer_id", entry.Connection)
			return hardware.NewMockDrawer(entry.ID, r.logger), TypeMock
		}
		r.logger.Info("printer-driven drawer configured", "device_id", entry.ID, "printer_id", entry.Connection)
		return hardware.NewPrinterDrawer(printer), TypePrinterDriven

	default:
		r.logger.Warn("unknown drawer type, using mock", "device_id", entry.ID, "device_type", entry.DeviceType)
		return hardware.NewMockDrawer(entry.ID, r.logger), TypeMock
	}
}

func (r *Registry) newDisplay(entry config.DeviceConfig) (hardware.Display, string) {
	switch normaliseType(entry.DeviceType) {
	case TypeMock:
		return hardware.NewMockDisplay(entry.ID, r.logger), TypeMock

	case TypeSerial:
		display := hardware.NewSerialDisplay(entry.Connection)
		port, baud := display.Port()
		r.logger.Info("serial display configured", "device_id", entry.ID, "port", port, "baud", baud)
		return display, TypeSerial

	default:
		r.logger.Warn("unknown display type, using mock", "device_id", entry.ID, "device_type", entry.DeviceType)
		return hardware.NewMockDisplay(entry.ID, r.logger), TypeMock
	}
}

// GetPrinter returns the printer with the given id.
func (r *Registry) GetPrinter(id string) (hardware.Printer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.printers[id]
	return p, ok
}

// GetDrawer returns the drawer with the given id.
func (r *Registry) GetDrawer(id string) (hardware.Drawer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drawers[id]
	return d, ok
}

// GetDisplay returns the display with the given id.
func (r *Registry) GetDisplay(id string) (hardware.Display, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.displays[id]
	return d, ok
}

// Summary lists every loaded device ordered by kind then id.
func (r *Registry) Summary() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, len(r.infos))
	copy(out, r.infos)
	return out
}

// Counts returns the number of loaded devices per kind.
func (r *Registry) Counts() map[Kind]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[Kind]int{
		KindPrinter: len(r.printers),
		KindDrawer:  len(r.drawers),
		KindDisplay: len(r.displays),
	}
}

func newInfo(kind Kind, entry config.DeviceConfig, adapter string) Info {
	return Info{
		ID:         entry.ID,
		Kind:       kind,
		DeviceType: entry.DeviceType,
		Adapter:    adapter,
		Connection: entry.Connection,
	}
}

func normaliseType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
