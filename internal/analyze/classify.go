package analyze

import (
	"binding-generator/observe"
)

// NotifyPkgPath is the import path of the notification contracts package.
// Platform bases are matched against it by identity.
const NotifyPkgPath = "binding-generator/notify"

var (
	kvoBaseID    = TypeID{PkgPath: NotifyPkgPath, Name: "KVOBase"}
	widgetBaseID = TypeID{PkgPath: NotifyPkgPath, Name: "WidgetBase"}
)

// StaticDescriptor is the compile-time analog of observe.Descriptor: the
// winning mechanism for a type as determined from its declaration alone.
type StaticDescriptor struct {
	Kind                 observe.NotificationKind
	Affinity             int
	SupportsBeforeChange bool
	HasValidation        bool
}

// Supported reports whether any mechanism applies.
func (d StaticDescriptor) Supported() bool { return d.Kind != observe.None }

// Classify determines the notification mechanism of a type from its method
// set and embedded bases, mirroring the runtime registry's priority order.
// Interface mechanisms are detected by accessor shape: OnChanged and
// OnChanging taking a listener func and returning a remove func.
func Classify(t *TypeInfo) StaticDescriptor {
	if t == nil {
		return StaticDescriptor{Kind: observe.None}
	}

	if t.Kind == TypeKindPointer && t.ElemType != nil {
		t = t.ElemType
	}

	var d StaticDescriptor

	hasChanged := hasObserverHook(t, "OnChanged")
	hasChanging := hasObserverHook(t, "OnChanging")

	switch {
	case hasChanged && hasChanging:
		d.Kind = observe.InterfaceBeforeAndAfter
		d.SupportsBeforeChange = true
	case hasChanged:
		d.Kind = observe.InterfaceAfterChange
	case t.Embeds(kvoBaseID):
		d.Kind = observe.PlatformBeforeAndAfter
		d.SupportsBeforeChange = true
	case t.Embeds(widgetBaseID):
		d.Kind = observe.PlatformAfterOnly
	default:
		d.Kind = observe.None
	}

	// A lower-ranked mechanism can still provide before-change support when
	// the winner cannot, matching how the runtime registry resolves per mode.
	if !d.SupportsBeforeChange && d.Kind != observe.None && t.Embeds(kvoBaseID) {
		d.SupportsBeforeChange = true
	}

	d.Affinity = observe.Affinity(d.Kind)
	d.HasValidation = hasValidationHook(t)

	return d
}

// hasObserverHook checks for name(fn) returning a remove func.
func hasObserverHook(t *TypeInfo, name string) bool {
	m, ok := t.Method(name)
	if !ok || len(m.Params) != 1 || len(m.Results) != 1 {
		return false
	}

	return m.Params[0] != nil && m.Params[0].Kind == TypeKindFunc &&
		m.Results[0] != nil && m.Results[0].Kind == TypeKindFunc
}

// hasValidationHook checks for ErrorsFor(member) returning a slice.
func hasValidationHook(t *TypeInfo) bool {
	m, ok := t.Method("ErrorsFor")
	if !ok || len(m.Params) != 1 || len(m.Results) != 1 {
		return false
	}

	return m.Params[0] != nil && m.Params[0].Kind == TypeKindBasic &&
		m.Results[0] != nil && m.Results[0].Kind == TypeKindSlice
}
