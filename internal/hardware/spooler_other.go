//go:build !windows

package hardware

type unsupportedSpooler struct{}

func nativeSpooler() spoolerAPI {
	return unsupportedSpooler{}
}

func (unsupportedSpooler) OpenPrinter(string) (spoolerHandle, error) {
	return 0, errSpoolerUnsupported
}

func (unsupportedSpooler) StartDocPrinter(spoolerHandle, string, string) error {
	return errSpoolerUnsupported
}

func (unsupportedSpooler) StartPagePrinter(spoolerHandle) error {
	return errSpoolerUnsupported
}

func (unsupportedSpooler) WritePrinter(spoolerHandle, []byte) (int, error) {
	return 0, errSpoolerUnsupported
}

func (unsupportedSpooler) EndPagePrinter(spoolerHandle) error {
	return errSpoolerUnsupported
}

func (unsupportedSpooler) EndDocPrinter(spoolerHandle) error {
	return errSpoolerUnsupported
}

func (unsupportedSpooler) ClosePrinter(spoolerHandle) error {
	return errSpoolerUnsupported
}
