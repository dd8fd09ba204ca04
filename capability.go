package luhn

// Mode selects how a stream is processed.
type Mode string

const (
	// ModeSerial scans every line on the calling goroutine.
	ModeSerial Mode = "serial"

	// ModeParallel spreads lines over a worker pool and reorders results.
	ModeParallel Mode = "parallel"
)

// validModes contains all valid modes for config validation.
var validModes = map[Mode]bool{
	ModeSerial:   true,
	ModeParallel: true,
}

// IsValidMode returns true if the mode is a known execution mode.
func IsValidMode(m Mode) bool {
	return validModes[m]
}

// RedactAction represents a supported struct tag value.
// Use these constants in struct tags: `luhn:"mask"`
type RedactAction string

const (
	// RedactMask masks card numbers found in the field.
	RedactMask RedactAction = "mask"
)

// validRedactActions contains all valid tag values for tag validation.
var validRedactActions = map[RedactAction]bool{
	RedactMask: true,
}

// IsValidRedactAction returns true if the value is a known tag action.
func IsValidRedactAction(a RedactAction) bool {
	return validRedactActions[a]
}
