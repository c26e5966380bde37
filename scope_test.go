package quill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarSetGet(t *testing.T) {
	i := New()
	defer i.Close()

	require.Nil(t, i.setVar("x", NewString("1")))
	v, flow := i.getVar("x")
	require.Nil(t, flow)
	assert.Equal(t, "1", v.String())

	_, flow = i.getVar("missing")
	require.NotNil(t, flow)
	assert.Contains(t, flow.Error(), "no such variable")
}

func TestArrayElements(t *testing.T) {
	i := New()
	defer i.Close()

	require.Nil(t, i.setVar("a(one)", NewInt(1)))
	require.Nil(t, i.setElem("a", "two", NewInt(2)))

	v, flow := i.getVar("a(one)")
	require.Nil(t, flow)
	assert.Equal(t, "1", v.String())

	v, flow = i.getElem("a", "two")
	require.Nil(t, flow)
	assert.Equal(t, "2", v.String())

	_, flow = i.getElem("a", "three")
	require.NotNil(t, flow)
	assert.Contains(t, flow.Error(), "no such element")

	// Reading a whole array as a scalar is an error.
	_, flow = i.getVar("a")
	require.NotNil(t, flow)
	assert.Contains(t, flow.Error(), "variable is array")
}

func TestScalarArrayConflict(t *testing.T) {
	i := New()
	defer i.Close()

	require.Nil(t, i.setVar("s", NewString("scalar")))
	flow := i.setElem("s", "k", NewString("v"))
	require.NotNil(t, flow)
	assert.Contains(t, flow.Error(), "isn't array")

	require.Nil(t, i.setElem("a", "k", NewString("v")))
	flow = i.setVar("a", NewString("scalar"))
	require.NotNil(t, flow)
	assert.Contains(t, flow.Error(), "variable is array")
}

func TestUnset(t *testing.T) {
	i := New()
	defer i.Close()

	i.setVar("x", NewString("1"))
	require.Nil(t, i.unsetVar("x"))
	assert.False(t, i.varExists("x"))

	flow := i.unsetVar("x")
	require.NotNil(t, flow)
	assert.Contains(t, flow.Error(), "can't unset")

	i.setElem("a", "k", NewString("v"))
	require.Nil(t, i.unsetVar("a(k)"))
	assert.False(t, i.varExists("a(k)"))
	assert.True(t, i.varExists("a"), "array survives removing an element")
}

func TestFrames(t *testing.T) {
	i := New()
	defer i.Close()

	i.setVar("g", NewString("global"))
	i.pushFrame("p")

	// Frame variables are isolated.
	assert.False(t, i.varExists("g"))
	i.setVar("local", NewString("1"))

	i.popFrame()
	assert.False(t, i.varExists("local"))
	assert.True(t, i.varExists("g"))
}

func TestUpvarLink(t *testing.T) {
	i := New()
	defer i.Close()

	i.setVar("target", NewString("before"))
	i.pushFrame("p")

	require.Nil(t, i.linkVar(i.globalFrame(), "target", "local"))
	require.Nil(t, i.setVar("local", NewString("after")))

	i.popFrame()
	v, flow := i.getVar("target")
	require.Nil(t, flow)
	assert.Equal(t, "after", v.String())
}

func TestUpvarLinkToMissing(t *testing.T) {
	i := New()
	defer i.Close()

	i.pushFrame("p")
	require.Nil(t, i.linkVar(i.globalFrame(), "created", "local"))

	// Writing through the link creates the target in the global frame.
	require.Nil(t, i.setVar("local", NewString("v")))
	i.popFrame()

	v, flow := i.getVar("created")
	require.Nil(t, flow)
	assert.Equal(t, "v", v.String())
}

func TestSelfLinkRejected(t *testing.T) {
	i := New()
	defer i.Close()

	flow := i.linkVar(i.globalFrame(), "x", "x")
	require.NotNil(t, flow)
	assert.Contains(t, flow.Error(), "upvar")
}

func TestFrameAt(t *testing.T) {
	i := New()
	defer i.Close()

	i.pushFrame("a")
	i.pushFrame("b")

	f, flow := i.frameAt("1")
	require.Nil(t, flow)
	assert.Equal(t, 1, f.level)

	f, flow = i.frameAt("#0")
	require.Nil(t, flow)
	assert.Equal(t, 0, f.level)

	f, flow = i.frameAt("")
	require.Nil(t, flow)
	assert.Equal(t, 1, f.level)

	_, flow = i.frameAt("9")
	require.NotNil(t, flow)
	_, flow = i.frameAt("#9")
	require.NotNil(t, flow)
	_, flow = i.frameAt("bogus")
	require.NotNil(t, flow)
}
