package testing

import (
	"strings"
	"testing"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		digits string
		want   bool
	}{
		{Valid14, true},
		{Valid16, true},
		{Visa16, true},
		{"4111 1111 1111 1111", true},
		{TooLong17, true},
		{"4111111111111112", false},
		{"0", true},
	}

	for _, tt := range tests {
		if got := IsValid(tt.digits); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.digits, got, tt.want)
		}
	}
}

func TestValidNumber(t *testing.T) {
	r := NewRand(1)
	for length := 2; length <= 19; length++ {
		n := ValidNumber(r, "4", length)
		if len(n) != length {
			t.Errorf("ValidNumber(%d) length = %d", length, len(n))
		}
		if !strings.HasPrefix(n, "4") {
			t.Errorf("ValidNumber(%d) = %q, missing prefix", length, n)
		}
		if !IsValid(n) {
			t.Errorf("ValidNumber(%d) = %q is not Luhn-valid", length, n)
		}
	}
}

func TestInvalidNumber(t *testing.T) {
	r := NewRand(2)
	for i := 0; i < 100; i++ {
		if n := InvalidNumber(r, "", 16); IsValid(n) {
			t.Fatalf("InvalidNumber() = %q is Luhn-valid", n)
		}
	}
}

func TestGroup(t *testing.T) {
	if got := Group(Visa16, 4, " "); got != "4111 1111 1111 1111" {
		t.Errorf("Group() = %q", got)
	}
	if got := Group("12345", 2, "-"); got != "12-34-5" {
		t.Errorf("Group() = %q", got)
	}
}

func TestLines_Deterministic(t *testing.T) {
	a := Lines(NewRand(9), 50)
	b := Lines(NewRand(9), 50)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("line %d differs: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestReferenceMask(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{Valid14, strings.Repeat("X", 14)},
		{"12" + Valid14, "12" + strings.Repeat("X", 14)},
		{Flanked22, Flanked22Out},
		{TooLong17, TooLong17},
		{"LF only ->", "LF only ->"},
	}

	for _, tt := range tests {
		if got := ReferenceMask(tt.input); got != tt.want {
			t.Errorf("ReferenceMask(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTooLong17_NoValidSuffix(t *testing.T) {
	for width := 14; width <= 16; width++ {
		suffix := TooLong17[len(TooLong17)-width:]
		if IsValid(suffix) {
			t.Errorf("suffix %q of width %d is Luhn-valid", suffix, width)
		}
	}
}
