// Package luhn redacts possible credit card numbers from text streams.
//
// Input is processed one line at a time. Any run of 14 to 16 digits, possibly
// broken up by spaces or hyphens, that passes the Luhn checksum has each of
// its digits replaced with 'X'. Every other byte is copied through unchanged,
// so output lines always have the same length as their input.
//
// # Scanning
//
// A Scanner walks a line once, feeding digits into a DigitWindow. The window
// keeps dual running checksums for its last 16 digits, so every new digit is
// checked against all candidate widths ending at it without rescanning:
//
//	masked := luhn.MaskLine("card 4111 1111 1111 1111 on file")
//	// "card XXXX XXXX XXXX XXXX on file"
//
// # Pipelines
//
// Pipeline spreads lines over a pool of workers and writes results in input
// order. A bounded queue of pending results provides backpressure:
//
//	p := luhn.NewPipeline(luhn.WithWorkers(4), luhn.WithQueueCapacity(20))
//	err := p.Run(ctx, luhn.NewReaderSource(os.Stdin), luhn.NewWriterSink(os.Stdout))
//
// RunSerial processes the same stream on the calling goroutine and always
// produces identical output.
//
// # Struct Redaction
//
// Fields tagged luhn:"mask" are scrubbed by a Redactor:
//
//	type Payment struct {
//	    ID   string `json:"id"`
//	    Memo string `json:"memo" luhn:"mask"`
//	}
//
//	func (p Payment) Clone() Payment { return p }
//
//	r, _ := luhn.NewRedactor[Payment]()
//	clean, _ := r.Redact(ctx, &payment)
//
// # Events
//
// Pipelines and redactors emit capitan signals (see signals.go) for run start,
// completion and failures.
package luhn

// Fixed parameters of the card number heuristic.
const (
	// MaskChar replaces every digit of a detected number.
	MaskChar = 'X'

	// MinDigits is the shortest run that can be a card number.
	MinDigits = 14

	// MaxDigits is the longest run considered at a single right edge.
	MaxDigits = 16
)

// LineSource yields input lines without their trailing newline.
type LineSource interface {
	// Next returns the next line. ok is false once the input is exhausted.
	Next() (line string, ok bool, err error)
}

// LineSink receives completed output lines in order.
type LineSink interface {
	// WriteLine writes line followed by a newline and flushes it.
	WriteLine(line []byte) error
}
