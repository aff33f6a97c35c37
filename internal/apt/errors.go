package apt

import (
	"errors"
	"fmt"
)

// Kind classifies a failure that aborts an analysis run.
type Kind int

const (
	// KindInvalidInput marks an unparsable or out-of-range selection token,
	// or a configuration value outside its domain.
	KindInvalidInput Kind = iota + 1
	// KindConfigurationTooFine marks a grid whose cell count would exceed
	// the allocation safety threshold.
	KindConfigurationTooFine
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindConfigurationTooFine:
		return "configuration too fine"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrConfigurationTooFine = errors.New("configuration too fine")
)

// Error is the single descriptive failure returned from a run.
type Error struct {
	Kind Kind
	Op   string // operation that rejected the input, e.g. "resolve selection"
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel matching e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrConfigurationTooFine:
		return e.Kind == KindConfigurationTooFine
	}
	return false
}

// InvalidInput builds a KindInvalidInput error.
func InvalidInput(op, format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: fmt.Errorf(format, args...)}
}

// ConfigurationTooFine builds a KindConfigurationTooFine error.
func ConfigurationTooFine(op, format string, args ...interface{}) error {
	return &Error{Kind: KindConfigurationTooFine, Op: op, Err: fmt.Errorf(format, args...)}
}

// WarningKind classifies a non-fatal finding reported with a result.
type WarningKind int

const (
	// WarnConsistency marks a negative composition residual or coincident
	// selected atoms.
	WarnConsistency WarningKind = iota + 1
	// WarnArithmeticGuard marks a division that was replaced by a sentinel.
	WarnArithmeticGuard
)

func (k WarningKind) String() string {
	switch k {
	case WarnConsistency:
		return "consistency"
	case WarnArithmeticGuard:
		return "arithmetic guard"
	default:
		return fmt.Sprintf("warning(%d)", int(k))
	}
}

// Warning is a finding that does not abort the run.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
}

// Warnf builds a Warning with a formatted message.
func Warnf(kind WarningKind, format string, args ...interface{}) Warning {
	return Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
