package probfilter

import (
	"errors"
	"fmt"
)

// Kind classifies the failure modes this package can return, per spec.md §7.
type Kind int

const (
	// KindInvalidArgument covers non-positive sizes, rates outside (0,1),
	// count > size in distinct-index generation, and fingerprints wider
	// than the hash that must supply them.
	KindInvalidArgument Kind = iota
	// KindFilterFull is returned by Cuckoo.Add when throwOnFull is true
	// and maxKicks evictions were exhausted; a non-destructive call has
	// rolled back its evictions by then, a destructive one has not.
	KindFilterFull
	// KindImportError covers malformed or version-incompatible exported records.
	KindImportError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindFilterFull:
		return "FilterFull"
	case KindImportError:
		return "ImportError"
	default:
		return "Unknown"
	}
}

// Error is the typed error this package raises. Use IsKind (or errors.As
// and the Kind field) to branch on it; FilterFull is the only recoverable kind (spec.md §7).
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...interface{}) *Error {
	return newError(KindInvalidArgument, format, args...)
}

func filterFull(format string, args ...interface{}) *Error {
	return newError(KindFilterFull, format, args...)
}

func importError(format string, args ...interface{}) *Error {
	return newError(KindImportError, format, args...)
}

// IsKind reports whether err wraps a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
