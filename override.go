package luhn

// Scrubbable bypasses reflection in Redactor.Redact.
// Implement this to control exactly which fields are masked, or to mask
// fields of types the reflection path does not support.
type Scrubbable interface {
	// Scrub masks card numbers in the receiver's fields by passing each
	// value through mask. The receiver is a clone, so mutations are safe.
	Scrub(mask func(string) string) error
}
