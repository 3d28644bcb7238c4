package observe

import (
	"errors"
	"fmt"
)

// ErrNoNotificationSupport is returned when a type along the path has no
// classifiable change-notification mechanism for the requested mode. It is
// raised at subscription setup, never at first-notification time.
var ErrNoNotificationSupport = errors.New("no supported change-notification mechanism")

// ErrEmptyPath is returned when a chain expression contains no segments.
var ErrEmptyPath = errors.New("empty property path")

// SegmentKind identifies why a path segment cannot be observed.
type SegmentKind int

const (
	// SegmentIndexer marks an index expression like Items[0].
	SegmentIndexer SegmentKind = iota
	// SegmentMethodCall marks a method invocation in the chain.
	SegmentMethodCall
	// SegmentField marks access to a plain data field that has no
	// accessor pair and therefore no change notification.
	SegmentField
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentIndexer:
		return "indexer"
	case SegmentMethodCall:
		return "method call"
	case SegmentField:
		return "field"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// UnsupportedSegmentError reports a chain segment the engine cannot observe.
// Decomposition fails fast on the first such segment and produces no
// partial path.
type UnsupportedSegmentError struct {
	Kind    SegmentKind
	Segment string
	Expr    string
}

func (e *UnsupportedSegmentError) Error() string {
	if e.Expr != "" {
		return fmt.Sprintf("unsupported %s segment %q in %q", e.Kind, e.Segment, e.Expr)
	}

	return fmt.Sprintf("unsupported %s segment %q", e.Kind, e.Segment)
}

// FindingClass categorizes non-fatal observations surfaced during
// decomposition and classification.
type FindingClass int

const (
	// PrivateMemberAccess flags a segment whose accessor is unexported.
	// Generated code cannot reference it; a reflection-capable engine
	// must serve the call site instead.
	PrivateMemberAccess FindingClass = iota
	// ValidationMechanismMismatch flags a bound type that exposes a
	// validation mechanism statically generated observers cannot honor.
	ValidationMechanismMismatch
)

func (c FindingClass) String() string {
	switch c {
	case PrivateMemberAccess:
		return "private member access"
	case ValidationMechanismMismatch:
		return "validation mechanism mismatch"
	default:
		return fmt.Sprintf("FindingClass(%d)", int(c))
	}
}

// Finding is a warning- or info-level observation that does not abort
// decomposition. The engine has no notion of source locations; static
// callers attach positions on their side.
type Finding struct {
	Class   FindingClass
	Segment string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Class, f.Message)
}
