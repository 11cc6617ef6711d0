// Package hardware contains the transport adapters that drive POS peripherals.
//
// Every adapter satisfies one of three small interfaces:
//
//   - Printer: PrintText, PrintRaw, CutPaper
//   - Drawer: Open
//   - Display: ShowText, Clear
//
// Concrete variants:
//
//   - Mock adapters log the operation and always succeed
//   - NetworkPrinter dials a fresh TCP connection per operation
//   - SerialPrinter and SerialDisplay open the serial port per operation
//     (go.bug.st/serial)
//   - SpoolerPrinter submits a RAW job through the OS print spooler
//     (winspool.drv on Windows, unsupported elsewhere)
//   - PrinterDrawer kicks a cash drawer through a printer's auxiliary port
//
// Adapters hold no mutable state between calls, so one value may be shared
// by any number of goroutines. Concurrent operations on the same device are
// not serialised and may interleave on the wire.
//
// Every transport failure is returned as a *DeviceError. Nothing is retried.
package hardware
