package luhn

// Scanner masks card numbers in single lines. It owns one DigitWindow that is
// reset at the start of every line, so a Scanner can be reused for many lines
// but must not be shared between goroutines.
type Scanner struct {
	window *DigitWindow
}

// NewScanner returns a Scanner with a MaxDigits window.
func NewScanner() *Scanner {
	return &Scanner{window: NewDigitWindow(MaxDigits)}
}

// MaskBytes masks buf in place and returns the number of digits it masked.
func (s *Scanner) MaskBytes(buf []byte) int {
	w := s.window
	w.Reset()

	masked := 0
	for i, c := range buf {
		switch {
		case isDigit(c):
			w.Add(c, i)
			if w.Len() >= MinDigits {
				masked += w.Mask(buf)
			}
		case isSeparator(c):
		default:
			w.Reset()
		}
	}
	return masked
}

// MaskLine returns a copy of line with detected card numbers masked.
func (s *Scanner) MaskLine(line string) string {
	buf := []byte(line)
	if s.MaskBytes(buf) == 0 {
		return line
	}
	return string(buf)
}

// MaskLine masks line with a fresh Scanner.
func MaskLine(line string) string {
	return NewScanner().MaskLine(line)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSeparator(c byte) bool {
	return c == ' ' || c == '-'
}
