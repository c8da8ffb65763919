package gt

import "errors"

var (
	// ErrInvalidSlot is returned for expedition slots outside 1..5.
	ErrInvalidSlot = errors.New("invalid expedition slot")

	// ErrInvalidDuration is returned for expedition lengths other than
	// 4, 8, 12 or 20 hours.
	ErrInvalidDuration = errors.New("invalid expedition duration")

	// ErrUnsupported is returned when an operation does not apply to a
	// tracker, such as toggling the weekly boss counter.
	ErrUnsupported = errors.New("operation not supported by tracker")

	// ErrUnknownCategory is returned when a notification category name
	// does not match any known category.
	ErrUnknownCategory = errors.New("unknown notification category")
)
