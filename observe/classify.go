package observe

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/muir/reflectutils"

	"binding-generator/notify"
)

// Descriptor is the classification result for one type: the winning
// notification mechanism, its affinity, and whether any registered mechanism
// can deliver before-change notifications for the type.
type Descriptor struct {
	Type                 TypeRef
	Kind                 NotificationKind
	Affinity             int
	SupportsBeforeChange bool
	// HasValidation marks types exposing validation errors; informational
	// only, surfaced as a ValidationMechanismMismatch finding by callers.
	HasValidation bool
}

// Supported reports whether any mechanism applies.
func (d Descriptor) Supported() bool { return d.Kind != None }

// Provider supplies change-notification streams for one mechanism. Multiple
// providers may claim support for the same type; the registry selects the
// one with the highest positive affinity.
type Provider interface {
	// Kind identifies the mechanism this provider implements.
	Kind() NotificationKind

	// Affinity scores support for observing member on t in the given
	// mode. Zero or negative means unsupported.
	Affinity(t reflect.Type, member string, beforeChange bool) int

	// Observe subscribes fn to changes of member on instance. The
	// returned remove function is idempotent.
	Observe(instance any, member string, beforeChange bool, fn notify.Listener) (remove func(), err error)
}

// Registry holds an ordered provider table. It is populated at construction
// and never mutated afterwards; classification results are cached by type
// identity and safe for concurrent lookup.
type Registry struct {
	providers []Provider
	cache     sync.Map // reflect.Type -> Descriptor
}

// NewRegistry builds a registry from providers in priority order. Equal
// affinity scores resolve to the earlier-registered provider.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// DefaultRegistry carries the built-in mechanisms in descending affinity
// order: interface checks first, then platform base walks.
var DefaultRegistry = NewRegistry(
	preInterfaceProvider{},
	interfaceProvider{},
	kvoProvider{},
	widgetProvider{},
)

// Resolve picks the provider with the highest positive affinity for
// observing member on t, or nil when none applies. Ties resolve to
// registration order.
func (r *Registry) Resolve(t reflect.Type, member string, beforeChange bool) Provider {
	var (
		best  Provider
		score int
	)

	for _, p := range r.providers {
		if a := p.Affinity(t, member, beforeChange); a > score {
			best, score = p, a
		}
	}

	return best
}

// Classify determines the notification mechanism descriptor for a type.
// Pure and deterministic; results are cached by type identity. Unsupported
// types yield the None descriptor, never an error.
func (r *Registry) Classify(t reflect.Type) Descriptor {
	if t == nil {
		return Descriptor{Kind: None}
	}

	if cached, ok := r.cache.Load(t); ok {
		return cached.(Descriptor)
	}

	d := Descriptor{
		Type: typeRefOf(t),
		Kind: None,
	}

	if p := r.Resolve(t, "", false); p != nil {
		d.Kind = p.Kind()
		d.Affinity = p.Affinity(t, "", false)
	}

	if p := r.Resolve(t, "", true); p != nil {
		d.SupportsBeforeChange = true
	}

	d.HasValidation = t.Implements(errorNotifierType)

	r.cache.Store(t, d)

	return d
}

// Classify classifies t against the default registry.
func Classify(t reflect.Type) Descriptor {
	return DefaultRegistry.Classify(t)
}

var (
	observableType    = reflect.TypeOf((*notify.Observable)(nil)).Elem()
	preObservableType = reflect.TypeOf((*notify.PreObservable)(nil)).Elem()
	kvoBaseType       = reflect.TypeOf(notify.KVOBase{})
	widgetBaseType    = reflect.TypeOf(notify.WidgetBase{})
)

// notSupportedError wraps ErrNoNotificationSupport with the offending
// instance type and mechanism.
func notSupportedError(instance any, kind NotificationKind) error {
	return fmt.Errorf("%w: %s cannot serve %s",
		ErrNoNotificationSupport, reflectutils.TypeName(reflect.TypeOf(instance)), kind)
}

// memberFilter narrows a listener to events for one member.
func memberFilter(member string, fn notify.Listener) notify.Listener {
	return func(ev notify.ChangeEvent) {
		if ev.Member == member {
			fn(ev)
		}
	}
}

// preInterfaceProvider serves types implementing notify.PreObservable:
// before and after change, highest affinity.
type preInterfaceProvider struct{}

func (preInterfaceProvider) Kind() NotificationKind { return InterfaceBeforeAndAfter }

func (preInterfaceProvider) Affinity(t reflect.Type, _ string, _ bool) int {
	if t != nil && t.Implements(preObservableType) {
		return affinityInterfaceBeforeAndAfter
	}

	return 0
}

func (preInterfaceProvider) Observe(instance any, member string, beforeChange bool, fn notify.Listener) (func(), error) {
	o, ok := instance.(notify.PreObservable)
	if !ok {
		return nil, notSupportedError(instance, InterfaceBeforeAndAfter)
	}

	if beforeChange {
		return o.OnChanging(memberFilter(member, fn)), nil
	}

	return o.OnChanged(memberFilter(member, fn)), nil
}

// interfaceProvider serves types implementing notify.Observable:
// after-change only.
type interfaceProvider struct{}

func (interfaceProvider) Kind() NotificationKind { return InterfaceAfterChange }

func (interfaceProvider) Affinity(t reflect.Type, _ string, beforeChange bool) int {
	if beforeChange {
		return 0
	}

	if t != nil && t.Implements(observableType) {
		return affinityInterfaceAfterChange
	}

	return 0
}

func (interfaceProvider) Observe(instance any, member string, beforeChange bool, fn notify.Listener) (func(), error) {
	if beforeChange {
		return nil, notSupportedError(instance, InterfaceAfterChange)
	}

	o, ok := instance.(notify.Observable)
	if !ok {
		return nil, notSupportedError(instance, InterfaceAfterChange)
	}

	return o.OnChanged(memberFilter(member, fn)), nil
}

// kvoProvider serves types embedding notify.KVOBase, discovered by walking
// embedded fields. Supports before and after change.
type kvoProvider struct{}

func (kvoProvider) Kind() NotificationKind { return PlatformBeforeAndAfter }

func (kvoProvider) Affinity(t reflect.Type, _ string, _ bool) int {
	if embedsBase(t, kvoBaseType) {
		return affinityPlatformBeforeAndAfter
	}

	return 0
}

func (kvoProvider) Observe(instance any, member string, beforeChange bool, fn notify.Listener) (func(), error) {
	base, ok := findBase(instance, kvoBaseType)
	if !ok {
		return nil, notSupportedError(instance, PlatformBeforeAndAfter)
	}

	return base.Addr().Interface().(*notify.KVOBase).ObserveKV(beforeChange, memberFilter(member, fn)), nil
}

// widgetProvider serves types embedding notify.WidgetBase: after-change
// only, lowest built-in affinity.
type widgetProvider struct{}

func (widgetProvider) Kind() NotificationKind { return PlatformAfterOnly }

func (widgetProvider) Affinity(t reflect.Type, _ string, beforeChange bool) int {
	if beforeChange {
		return 0
	}

	if embedsBase(t, widgetBaseType) {
		return affinityPlatformAfterOnly
	}

	return 0
}

func (widgetProvider) Observe(instance any, member string, beforeChange bool, fn notify.Listener) (func(), error) {
	if beforeChange {
		return nil, notSupportedError(instance, PlatformAfterOnly)
	}

	base, ok := findBase(instance, widgetBaseType)
	if !ok {
		return nil, notSupportedError(instance, PlatformAfterOnly)
	}

	return base.Addr().Interface().(*notify.WidgetBase).ObserveWidget(memberFilter(member, fn)), nil
}

// embedsBase walks the embedded-field chain of t (dereferencing pointers)
// looking for the given base type.
func embedsBase(t reflect.Type, base reflect.Type) bool {
	if t == nil {
		return false
	}

	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}

		ft := f.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}

		if ft == base || embedsBase(ft, base) {
			return true
		}
	}

	return false
}

// findBase locates the embedded base value inside instance, returning an
// addressable reflect.Value of the base type.
func findBase(instance any, base reflect.Type) (reflect.Value, bool) {
	v := reflect.ValueOf(instance)

	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, false
		}

		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}

		fv := v.Field(i)
		for fv.Kind() == reflect.Ptr && !fv.IsNil() {
			fv = fv.Elem()
		}

		if !fv.CanAddr() {
			continue
		}

		if fv.Type() == base {
			return fv, true
		}

		if fv.Kind() == reflect.Struct {
			if inner, ok := findBase(fv.Addr().Interface(), base); ok {
				return inner, true
			}
		}
	}

	return reflect.Value{}, false
}
