//go:build windows

package hardware

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	winspool = windows.NewLazySystemDLL("winspool.drv")

	procOpenPrinterW     = winspool.NewProc("OpenPrinterW")
	procStartDocPrinterW = winspool.NewProc("StartDocPrinterW")
	procStartPagePrinter = winspool.NewProc("StartPagePrinter")
	procWritePrinter     = winspool.NewProc("WritePrinter")
	procEndPagePrinter   = winspool.NewProc("EndPagePrinter")
	procEndDocPrinter    = winspool.NewProc("EndDocPrinter")
	procClosePrinter     = winspool.NewProc("ClosePrinter")
)

// docInfo1 mirrors DOC_INFO_1W.
type docInfo1 struct {
	DocName    *uint16
	OutputFile *uint16
	Datatype   *uint16
}

type winSpooler struct{}

func nativeSpooler() spoolerAPI {
	return winSpooler{}
}

func (winSpooler) OpenPrinter(name string) (spoolerHandle, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	var h windows.Handle
	r, _, callErr := procOpenPrinterW.Call(uintptr(unsafe.Pointer(namePtr)), uintptr(unsafe.Pointer(&h)), 0)
	if r == 0 {
		return 0, callErr
	}
	return spoolerHandle(h), nil
}

func (winSpooler) StartDocPrinter(h spoolerHandle, docName, dataType string) error {
	docPtr, err := windows.UTF16PtrFromString(docName)
	if err != nil {
		return err
	}
	typePtr, err := windows.UTF16PtrFromString(dataType)
	if err != nil {
		return err
	}
	info := docInfo1{DocName: docPtr, Datatype: typePtr}
	r, _, callErr := procStartDocPrinterW.Call(uintptr(h), 1, uintptr(unsafe.Pointer(&info)))
	if r == 0 {
		return callErr
	}
	return nil
}

func (winSpooler) StartPagePrinter(h spoolerHandle) error {
	return boolCall(procStartPagePrinter, h)
}

func (winSpooler) WritePrinter(h spoolerHandle, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	var written uint32
	r, _, callErr := procWritePrinter.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		uintptr(unsafe.Pointer(&written)),
	)
	if r == 0 {
		return int(written), callErr
	}
	return int(written), nil
}

func (winSpooler) EndPagePrinter(h spoolerHandle) error {
	return boolCall(procEndPagePrinter, h)
}

func (winSpooler) EndDocPrinter(h spoolerHandle) error {
	return boolCall(procEndDocPrinter, h)
}

func (winSpooler) ClosePrinter(h spoolerHandle) error {
	return boolCall(procClosePrinter, h)
}

// boolCall invokes a spooler function taking only a handle and returning BOOL.
func boolCall(proc *windows.LazyProc, h spoolerHandle) error {
	r, _, callErr := proc.Call(uintptr(h))
	if r == 0 {
		return callErr
	}
	return nil
}
