package hardware

import "context"

// PrinterDrawer is a cash drawer wired to a receipt printer's drawer port.
// It has no transport of its own.
type PrinterDrawer struct {
	printer Printer
}

// NewPrinterDrawer creates a drawer that kicks through printer.
func NewPrinterDrawer(printer Printer) *PrinterDrawer {
	return &PrinterDrawer{printer: printer}
}

// Open sends the drawer kick sequence through the printer.
func (d *PrinterDrawer) Open(ctx context.Context) error {
	return d.printer.PrintRaw(ctx, DrawerKick)
}
