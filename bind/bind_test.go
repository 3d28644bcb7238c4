package bind

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binding-generator/examples/contacts"
	"binding-generator/notify"
	"binding-generator/observe"
)

func TestOneWayInitializesAndPropagates(t *testing.T) {
	source := &contacts.Person{}
	source.SetName("Source")

	target := &contacts.Person{}

	b, err := Bind(source, "Name", target, "Name", Options{})
	require.NoError(t, err)
	defer b.Dispose()

	assert.Equal(t, "Source", target.Name())

	source.SetName("Updated")
	assert.Equal(t, "Updated", target.Name())

	// One-way: target edits do not flow back.
	target.SetName("Local")
	assert.Equal(t, "Updated", source.Name())
}

func TestOneWayWithConverter(t *testing.T) {
	source := &contacts.Person{}
	source.SetName("quiet")

	target := &contacts.Person{}

	b, err := Bind(source, "Name", target, "Name", Options{
		Convert: func(v any) any { return strings.ToUpper(v.(string)) },
	})
	require.NoError(t, err)
	defer b.Dispose()

	assert.Equal(t, "QUIET", target.Name())

	source.SetName("loud")
	assert.Equal(t, "LOUD", target.Name())
}

func TestOneWayDeepPaths(t *testing.T) {
	source := &contacts.Person{}
	source.SetAddress(&contacts.Address{})
	source.Address().SetCity("Eugene")

	target := &contacts.Person{}
	target.SetAddress(&contacts.Address{})

	b, err := Bind(source, "Address.City", target, "Address.City", Options{})
	require.NoError(t, err)
	defer b.Dispose()

	assert.Equal(t, "Eugene", target.Address().City())

	next := &contacts.Address{}
	next.SetCity("Bend")
	source.SetAddress(next)

	assert.Equal(t, "Bend", target.Address().City())
}

func TestOneWayIntoUnobservableTargetIsFine(t *testing.T) {
	source := &contacts.Person{}
	source.SetName("Seen")

	target := &contacts.PlainBox{}

	b, err := Bind(source, "Name", target, "Value", Options{})
	require.NoError(t, err)
	defer b.Dispose()

	assert.Equal(t, "Seen", target.Value())
}

func TestTwoWayEndToEnd(t *testing.T) {
	source := &contacts.Person{}
	source.SetName("Source")

	target := &contacts.Person{}

	b, err := Bind(source, "Name", target, "Name", Options{Direction: TwoWay})
	require.NoError(t, err)
	defer b.Dispose()

	assert.Equal(t, "Source", target.Name())

	source.SetName("FromSource")
	assert.Equal(t, "FromSource", target.Name())

	target.SetName("FromTarget")
	assert.Equal(t, "FromTarget", source.Name())
}

func TestTwoWayNoPingPong(t *testing.T) {
	source := &contacts.Person{}
	source.SetName("Init")

	target := &contacts.Person{}

	b, err := Bind(source, "Name", target, "Name", Options{Direction: TwoWay})
	require.NoError(t, err)
	defer b.Dispose()

	sourceChanges, targetChanges := 0, 0
	source.OnChanged(func(notify.ChangeEvent) { sourceChanges++ })
	target.OnChanged(func(notify.ChangeEvent) { targetChanges++ })

	// One edit on the source yields exactly one change on the target,
	// and the echo does not bounce back to the source.
	source.SetName("Once")

	assert.Equal(t, 1, sourceChanges)
	assert.Equal(t, 1, targetChanges)

	target.SetName("Back")

	assert.Equal(t, 2, sourceChanges)
	assert.Equal(t, 2, targetChanges)
}

func TestTwoWayConverterPair(t *testing.T) {
	source := &contacts.Person{}
	source.SetName("source")

	target := &contacts.Person{}

	b, err := Bind(source, "Name", target, "Name", Options{
		Direction:   TwoWay,
		Convert:     func(v any) any { return strings.ToUpper(v.(string)) },
		ConvertBack: func(v any) any { return strings.ToLower(v.(string)) },
	})
	require.NoError(t, err)
	defer b.Dispose()

	assert.Equal(t, "SOURCE", target.Name())

	target.SetName("SHOUTED")
	assert.Equal(t, "shouted", source.Name())
	// The upstream write echoes back through Convert; the values agree
	// so the cascade stops.
	assert.Equal(t, "SHOUTED", target.Name())
}

func TestBindFailsOnUndecomposablePath(t *testing.T) {
	source := &contacts.Person{}
	target := &contacts.Person{}

	_, err := Bind(source, "Items[0].Name", target, "Name", Options{})

	var segErr *observe.UnsupportedSegmentError
	require.ErrorAs(t, err, &segErr)
	assert.Equal(t, observe.SegmentIndexer, segErr.Kind)
}

func TestBindFailsOnUnsupportedSource(t *testing.T) {
	source := &contacts.PlainBox{}
	target := &contacts.Person{}

	_, err := Bind(source, "Value", target, "Name", Options{})
	assert.ErrorIs(t, err, observe.ErrNoNotificationSupport)
}

func TestBindFailsOnMissingTargetProperty(t *testing.T) {
	source := &contacts.Person{}
	target := &contacts.Account{}

	_, err := Bind(source, "Name", target, "Name", Options{})
	assert.Error(t, err)
}

func TestTwoWayPartialFailureDisposesForwardSubscription(t *testing.T) {
	source := &contacts.Person{}
	source.SetName("Source")

	target := &contacts.PlainBox{}

	_, err := Bind(source, "Name", target, "Value", Options{Direction: TwoWay})
	require.ErrorIs(t, err, observe.ErrNoNotificationSupport)

	// The forward pass ran before the failure surfaced, but the
	// subscription must not stay live.
	source.SetName("AfterFailure")
	assert.NotEqual(t, "AfterFailure", target.Value())
}

func TestSchedulerDefersAndOrdersWrites(t *testing.T) {
	source := &contacts.Person{}
	source.SetName("first")

	target := &contacts.Person{}

	sched := NewQueueScheduler()

	b, err := Bind(source, "Name", target, "Name", Options{Scheduler: sched})
	require.NoError(t, err)
	defer b.Dispose()

	// Initial emission is queued, not applied inline.
	assert.Equal(t, "", target.Name())
	require.Equal(t, 1, sched.Pending())

	source.SetName("second")
	require.Equal(t, 2, sched.Pending())

	ran := sched.Flush()
	assert.Equal(t, 2, ran)
	assert.Equal(t, "second", target.Name())
}

func TestDisposeCancelsPendingScheduledWrites(t *testing.T) {
	source := &contacts.Person{}
	source.SetName("pending")

	target := &contacts.Person{}

	sched := NewQueueScheduler()

	b, err := Bind(source, "Name", target, "Name", Options{Scheduler: sched})
	require.NoError(t, err)

	require.Equal(t, 1, sched.Pending())

	b.Dispose()

	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0, sched.Flush())
	assert.Equal(t, "", target.Name())
}

func TestBindingDisposeIsIdempotent(t *testing.T) {
	source := &contacts.Person{}
	target := &contacts.Person{}

	b, err := Bind(source, "Name", target, "Name", Options{Direction: TwoWay})
	require.NoError(t, err)

	b.Dispose()
	assert.NotPanics(t, b.Dispose)

	source.SetName("silent")
	assert.Equal(t, "", target.Name())
}
