package observe

//go:generate go tool stringer -type=NotificationKind

// NotificationKind is the closed set of change-notification mechanisms a
// type can expose.
type NotificationKind int

const (
	// None means no mechanism applies; the type cannot be observed.
	None NotificationKind = iota
	// InterfaceAfterChange: the type implements notify.Observable.
	InterfaceAfterChange
	// InterfaceBeforeAndAfter: the type implements notify.PreObservable.
	InterfaceBeforeAndAfter
	// PlatformAfterOnly: the type embeds notify.WidgetBase.
	PlatformAfterOnly
	// PlatformBeforeAndAfter: the type embeds notify.KVOBase. Ranked to
	// support before-change despite being a base-type check rather than
	// an interface check.
	PlatformBeforeAndAfter
)

// Affinity constants strictly order the mechanisms. Interface-based
// mechanisms outrank platform bases; when a type satisfies several, the
// highest affinity wins and equal scores fall back to provider registration
// order.
const (
	affinityInterfaceBeforeAndAfter = 25
	affinityInterfaceAfterChange    = 24
	affinityPlatformBeforeAndAfter  = 23
	affinityPlatformAfterOnly       = 20
)

// Affinity returns the built-in priority score of a mechanism. The static
// analyzer and the runtime providers rank mechanisms with the same table.
func Affinity(k NotificationKind) int {
	switch k {
	case InterfaceBeforeAndAfter:
		return affinityInterfaceBeforeAndAfter
	case InterfaceAfterChange:
		return affinityInterfaceAfterChange
	case PlatformBeforeAndAfter:
		return affinityPlatformBeforeAndAfter
	case PlatformAfterOnly:
		return affinityPlatformAfterOnly
	default:
		return 0
	}
}

// Mode selects whether a subscription observes values before or after they
// change.
type Mode int

const (
	// AfterChange delivers the new value once assignment completed.
	AfterChange Mode = iota
	// BeforeChange delivers the value that is about to be replaced.
	BeforeChange
)

func (m Mode) String() string {
	if m == BeforeChange {
		return "before-change"
	}

	return "after-change"
}
