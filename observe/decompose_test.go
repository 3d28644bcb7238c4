package observe

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binding-generator/examples/contacts"
)

func TestParseChainSimple(t *testing.T) {
	names, findings, err := ParseChain("Name")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name"}, names)
	assert.Empty(t, findings)
}

func TestParseChainDeep(t *testing.T) {
	names, findings, err := ParseChain("Address.City")
	require.NoError(t, err)
	assert.Equal(t, []string{"Address", "City"}, names)
	assert.Empty(t, findings)
}

func TestParseChainIndexerFailsWithoutPartialPath(t *testing.T) {
	names, _, err := ParseChain("Items[0].Name")

	var segErr *UnsupportedSegmentError
	require.ErrorAs(t, err, &segErr)
	assert.Equal(t, SegmentIndexer, segErr.Kind)
	assert.Equal(t, "Items", segErr.Segment)
	assert.Nil(t, names)
}

func TestParseChainMethodCallFails(t *testing.T) {
	names, _, err := ParseChain("Employer().Name")

	var segErr *UnsupportedSegmentError
	require.ErrorAs(t, err, &segErr)
	assert.Equal(t, SegmentMethodCall, segErr.Kind)
	assert.Nil(t, names)
}

func TestParseChainUnexportedSegmentIsNonFatal(t *testing.T) {
	names, findings, err := ParseChain("address.City")
	require.NoError(t, err)
	assert.Equal(t, []string{"address", "City"}, names)

	require.Len(t, findings, 1)
	assert.Equal(t, PrivateMemberAccess, findings[0].Class)
	assert.Equal(t, "address", findings[0].Segment)
}

func TestParseChainRejectsGarbage(t *testing.T) {
	_, _, err := ParseChain("")
	assert.Error(t, err)

	_, _, err = ParseChain("a + b")
	assert.Error(t, err)
}

func TestResolveBuildsTypedPath(t *testing.T) {
	rp, findings, err := Resolve(reflect.TypeOf(&contacts.Person{}), []string{"Address", "City"})
	require.NoError(t, err)
	assert.Empty(t, findings)

	path := rp.Path()
	require.Len(t, path, 2)

	assert.Equal(t, "Address", path[0].Name)
	assert.Equal(t, "*Person", path[0].DeclaringType.Name)
	assert.Equal(t, "binding-generator/examples/contacts", path[0].DeclaringType.PkgPath)
	assert.Equal(t, "*Address", path[0].PropertyType.Name)

	assert.Equal(t, "City", path[1].Name)
	assert.Equal(t, "*Address", path[1].DeclaringType.Name)
	assert.Equal(t, TypeRef{Name: "string"}, path[1].PropertyType)

	assert.True(t, rp.CanWriteLeaf())
}

func TestResolvePlainFieldFails(t *testing.T) {
	_, _, err := Resolve(reflect.TypeOf(&contacts.Person{}), []string{"Tags"})

	var segErr *UnsupportedSegmentError
	require.ErrorAs(t, err, &segErr)
	assert.Equal(t, SegmentField, segErr.Kind)
}

func TestResolveMissingPropertyFails(t *testing.T) {
	_, _, err := Resolve(reflect.TypeOf(&contacts.Person{}), []string{"Nope"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyPath)
}

func TestResolveValidationMechanismFinding(t *testing.T) {
	_, findings, err := Resolve(reflect.TypeOf(&contacts.Form{}), []string{"Email"})
	require.NoError(t, err)

	require.Len(t, findings, 1)
	assert.Equal(t, ValidationMechanismMismatch, findings[0].Class)
}

func TestResolveEmptyPath(t *testing.T) {
	_, _, err := Resolve(reflect.TypeOf(&contacts.Person{}), nil)
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestPropertyPathEqualAndSignature(t *testing.T) {
	a, _, err := ResolveExpr(reflect.TypeOf(&contacts.Person{}), "Address.City")
	require.NoError(t, err)

	b, _, err := ResolveExpr(reflect.TypeOf(&contacts.Person{}), "Address.City")
	require.NoError(t, err)

	c, _, err := ResolveExpr(reflect.TypeOf(&contacts.Person{}), "Address.Street")
	require.NoError(t, err)

	assert.True(t, a.Path().Equal(b.Path()))
	assert.False(t, a.Path().Equal(c.Path()))
	assert.Equal(t, a.Path().Signature(), b.Path().Signature())
	assert.NotEqual(t, a.Path().Signature(), c.Path().Signature())
	assert.Equal(t, "Address.City", a.Path().String())
}

func TestReadAndWriteLeaf(t *testing.T) {
	person := &contacts.Person{}
	person.SetAddress(&contacts.Address{})
	person.Address().SetCity("Salem")

	rp, _, err := ResolveExpr(reflect.TypeOf(person), "Address.City")
	require.NoError(t, err)

	v, ok := rp.ReadLeaf(person)
	require.True(t, ok)
	assert.Equal(t, "Salem", v)

	written, err := rp.WriteLeaf(person, "Eugene")
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "Eugene", person.Address().City())

	// Nil intermediate: read and write both report the gap.
	person.SetAddress(nil)

	_, ok = rp.ReadLeaf(person)
	assert.False(t, ok)

	written, err = rp.WriteLeaf(person, "Bend")
	require.NoError(t, err)
	assert.False(t, written)
}

func TestResolveUnexportedSegmentFails(t *testing.T) {
	_, _, err := Resolve(reflect.TypeOf(&contacts.Person{}), []string{"name"})
	require.Error(t, err)

	ok := errors.As(err, new(*UnsupportedSegmentError))
	assert.False(t, ok, "unexported accessors are a reflection limitation, not an unsupported segment")
}
