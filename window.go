package luhn

// doubled holds the Luhn digit sum of 2*d for each digit d.
var doubled = [10]int{0, 2, 4, 6, 8, 1, 3, 5, 7, 9}

// DigitWindow is a bounded circular buffer of the most recent digits of a
// candidate run. For every buffered digit it keeps two running checksums so
// that the Luhn sum of any suffix ending at the newest digit can be recovered
// in constant time.
//
// even[i] is the checksum of all digits since the last Reset, up to and
// including slot i, assuming slot i is undoubled (rightmost). odd[i] is the
// same sum assuming slot i is doubled. Sums are stored mod 10.
//
// The arrays hold capacity+1 slots. The slot just before start always carries
// the sums of the digit preceding the window, or zero after a Reset, so the
// suffix formula needs no special case for the oldest digit.
//
// A DigitWindow is not safe for concurrent use.
type DigitWindow struct {
	even  []int
	odd   []int
	index []int

	capacity int
	start    int
	end      int
	length   int
}

// NewDigitWindow returns an empty window holding at most capacity digits.
// Capacities below MinDigits fall back to MaxDigits.
func NewDigitWindow(capacity int) *DigitWindow {
	if capacity < MinDigits {
		capacity = MaxDigits
	}
	slots := capacity + 1
	return &DigitWindow{
		even:     make([]int, slots),
		odd:      make([]int, slots),
		index:    make([]int, slots),
		capacity: capacity,
	}
}

// Len returns the number of buffered digits.
func (w *DigitWindow) Len() int {
	return w.length
}

// Cap returns the maximum number of buffered digits.
func (w *DigitWindow) Cap() int {
	return w.capacity
}

// Add appends a digit found at sourceIndex in the line being scanned. When the
// window is full the oldest digit is dropped.
func (w *DigitWindow) Add(digit byte, sourceIndex int) {
	d := int(digit - '0')
	prev := w.prev(w.end)

	w.even[w.end] = (d + w.odd[prev]) % 10
	w.odd[w.end] = (doubled[d] + w.even[prev]) % 10
	w.index[w.end] = sourceIndex
	w.end = w.next(w.end)

	if w.length == w.capacity {
		w.start = w.next(w.start)
	} else {
		w.length++
	}
}

// Reset empties the window. The slot before the new start is zeroed so the
// next digit starts a fresh checksum.
func (w *DigitWindow) Reset() {
	w.length = 0
	w.start = w.end
	before := w.prev(w.start)
	w.even[before] = 0
	w.odd[before] = 0
}

// Mask searches for the widest Luhn-valid suffix of at least MinDigits digits
// ending at the newest digit and replaces its digits in buf with MaskChar.
// Masking walks inward from both edges and stops at the first position that is
// already masked. The window itself is left unchanged. Mask returns the number
// of positions it changed.
func (w *DigitWindow) Mask(buf []byte) int {
	if w.length < MinDigits {
		return 0
	}

	last := w.prev(w.end)
	start, length := w.start, w.length
	for length >= MinDigits {
		if w.checksum(start, length, last) == 0 {
			return w.maskSpan(buf, start, last, length)
		}
		start = w.next(start)
		length--
	}
	return 0
}

// checksum returns the Luhn sum mod 10 of the length digits from start to last.
func (w *DigitWindow) checksum(start, length, last int) int {
	before := w.prev(start)
	var prefix int
	if length%2 == 0 {
		prefix = w.even[before]
	} else {
		prefix = w.odd[before]
	}
	return (w.even[last] - prefix + 10) % 10
}

func (w *DigitWindow) maskSpan(buf []byte, start, last, length int) int {
	masked := 0
	for i, n := start, 0; n < length; i, n = w.next(i), n+1 {
		if !maskAt(buf, w.index[i]) {
			break
		}
		masked++
	}
	for i, n := last, 0; n < length; i, n = w.prev(i), n+1 {
		if !maskAt(buf, w.index[i]) {
			break
		}
		masked++
	}
	return masked
}

// maskAt masks buf[pos] and reports whether it was not masked before.
func maskAt(buf []byte, pos int) bool {
	if buf[pos] == MaskChar {
		return false
	}
	buf[pos] = MaskChar
	return true
}

func (w *DigitWindow) next(i int) int {
	i++
	if i == len(w.even) {
		return 0
	}
	return i
}

func (w *DigitWindow) prev(i int) int {
	if i == 0 {
		return len(w.even) - 1
	}
	return i - 1
}
