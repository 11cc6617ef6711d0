package hardware

// ESC/POS byte sequences.
var (
	// Initialize resets the printer (ESC @).
	Initialize = []byte{0x1B, 0x40}

	// FeedAndCut feeds three lines (ESC d 3) then performs a partial cut
	// with zero feed (GS V 66 0).
	FeedAndCut = []byte{0x1B, 0x64, 0x03, 0x1D, 0x56, 0x42, 0x00}

	// DrawerKick pulses drawer pin 2 for 50ms on, 500ms off (ESC p 0 25 250).
	DrawerKick = []byte{0x1B, 0x70, 0x00, 0x19, 0xFA}
)

// Customer display control bytes.
const (
	displayClear   byte = 0x0C
	carriageReturn byte = 0x0D
	lineFeed       byte = 0x0A
)

// BuildPrintJob assembles a complete receipt as one buffer: initialize, the
// text (newline-terminated), then the feed and cut sequence when autoCut is set.
//
// A nil text prints nothing but still initializes. Sending the whole job in
// one write keeps spoolers from splitting text and cut into separate jobs.
func BuildPrintJob(text *string, autoCut bool) []byte {
	buf := make([]byte, 0, len(Initialize)+len(FeedAndCut)+64)
	buf = append(buf, Initialize...)
	if text != nil {
		buf = append(buf, *text...)
		if len(*text) == 0 || (*text)[len(*text)-1] != '\n' {
			buf = append(buf, lineFeed)
		}
	}
	if autoCut {
		buf = append(buf, FeedAndCut...)
	}
	return buf
}

// textJob is the payload sent by PrintText: initialize, text, newline.
func textJob(text string) []byte {
	buf := make([]byte, 0, len(Initialize)+len(text)+1)
	buf = append(buf, Initialize...)
	buf = append(buf, text...)
	return append(buf, lineFeed)
}

// displayFrame clears a two-line customer display and writes both lines.
func displayFrame(line1, line2 string) []byte {
	buf := make([]byte, 0, len(line1)+len(line2)+3)
	buf = append(buf, displayClear)
	buf = append(buf, line1...)
	buf = append(buf, carriageReturn, lineFeed)
	return append(buf, line2...)
}
