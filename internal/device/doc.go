// Package device provides the Device Registry for the POS bridge.
//
// The registry is the catalogue of configured peripherals. It keeps three
// kind-specific maps (printers, drawers, displays) keyed by logical id and
// resolves ids to the hardware adapters that drive them.
//
// # Lifecycle
//
//	registry := device.NewRegistry()
//	registry.SetLogger(logger.With("component", "devices"))
//	if err := registry.Load(cfg.Devices); err != nil {
//	    return err // duplicate id or missing connection string
//	}
//
//	printer, ok := registry.GetPrinter("front-counter")
//	if !ok {
//	    // unknown id: not a transport failure
//	}
//
// # Device types
//
//	printers: mock, network, esc_pos_network, serial, windows
//	drawers:  mock, printer_driven (connection = printer id)
//	displays: mock, serial (connection defaults to COM2:9600)
//
// Any other device_type is loaded as a mock with a warning, and a
// printer_driven drawer whose printer is missing becomes a mock drawer.
package device
