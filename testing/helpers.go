// Package testing provides test utilities for luhn.
package testing

import (
	"math/rand/v2"
	"strings"
)

// Known fixtures. Each valid entry passes the Luhn check as a whole.
// TooLong17 also passes as a whole, but no 14 to 16 digit suffix of it does,
// so a line holding only this run is left unmasked.
const (
	Valid14      = "56613959932537"
	Valid16      = "6853371389452376"
	Visa16       = "4111111111111111"
	TooLong17    = "99929316122852072"
	Flanked22    = "9875610591081018250321"
	Flanked22Out = "987XXXXXXXXXXXXXXXX321"
)

// IsValid reports whether digits passes the Luhn check. Non-digits are ignored.
func IsValid(digits string) bool {
	sum, double := 0, false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			continue
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidNumber returns a Luhn-valid number of the given length that starts
// with prefix. Missing middle digits are filled from r.
func ValidNumber(r *rand.Rand, prefix string, length int) string {
	var b strings.Builder
	b.WriteString(prefix)
	for b.Len() < length-1 {
		b.WriteByte(byte('0' + r.IntN(10)))
	}
	body := b.String()
	for c := byte('0'); c <= '9'; c++ {
		if IsValid(body + string(c)) {
			return body + string(c)
		}
	}
	panic("unreachable: some check digit always satisfies the Luhn sum")
}

// InvalidNumber returns a number of the given length that fails the Luhn check.
func InvalidNumber(r *rand.Rand, prefix string, length int) string {
	valid := ValidNumber(r, prefix, length)
	last := valid[len(valid)-1]
	return valid[:len(valid)-1] + string('0'+(last-'0'+1)%10)
}

// Group inserts sep after every size digits: Group("41111111", 4, " ") is
// "4111 1111".
func Group(digits string, size int, sep string) string {
	var b strings.Builder
	for i := 0; i < len(digits); i++ {
		if i > 0 && i%size == 0 {
			b.WriteString(sep)
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

// NewRand returns a deterministic generator for reproducible fixtures.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

var fillers = []string{
	"order ", "card: ", " ref#", "tel ", "-", " ", "LF only ->", "<- LF only",
	"x", "\t", "déjà vu ", "→ ", "id=", "1234", "42-17", "",
}

// Lines returns n pseudo-random lines mixing plain text, short digit runs and
// valid or invalid 14-16 digit numbers with and without separators.
func Lines(r *rand.Rand, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		var b strings.Builder
		parts := r.IntN(6)
		for j := 0; j < parts; j++ {
			switch r.IntN(5) {
			case 0, 1:
				b.WriteString(fillers[r.IntN(len(fillers))])
			case 2:
				b.WriteString(ValidNumber(r, "", 14+r.IntN(3)))
			case 3:
				num := ValidNumber(r, "", 14+r.IntN(3))
				seps := []string{" ", "-"}
				b.WriteString(Group(num, 4, seps[r.IntN(2)]))
			default:
				b.WriteString(InvalidNumber(r, "", 10+r.IntN(8)))
			}
		}
		lines[i] = b.String()
	}
	return lines
}

// ReferenceMask masks line by recomputing every candidate checksum from
// scratch. It is slow but follows the same policy as the windowed scanner:
// at every digit, the widest Luhn-valid run of 14 to 16 digits ending there
// is masked from both ends until an already-masked digit is reached.
func ReferenceMask(line string) string {
	buf := []byte(line)
	var positions []int
	for i := 0; i < len(buf); i++ {
		c := line[i]
		switch {
		case c >= '0' && c <= '9':
			positions = append(positions, i)
			if len(positions) > 16 {
				positions = positions[1:]
			}
			for width := len(positions); width >= 14; width-- {
				span := positions[len(positions)-width:]
				var digits strings.Builder
				for _, p := range span {
					digits.WriteByte(line[p])
				}
				if !IsValid(digits.String()) {
					continue
				}
				for _, p := range span {
					if buf[p] == 'X' {
						break
					}
					buf[p] = 'X'
				}
				for k := len(span) - 1; k >= 0; k-- {
					if buf[span[k]] == 'X' {
						break
					}
					buf[span[k]] = 'X'
				}
				break
			}
		case c == ' ' || c == '-':
		default:
			positions = positions[:0]
		}
	}
	return string(buf)
}
