package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumDefinition(t *testing.T) {
	reg := NewRegistry()
	e := defineColor(reg)

	assert.Equal(t, 3, e.NumEntries())
	assert.Equal(t, "green", e.EntryNameAt(1))
	assert.Equal(t, int64(2), e.EntryValueAt(2))

	name, ok := e.EntryName(int64(Blue))
	require.True(t, ok)
	assert.Equal(t, "blue", name)

	v, ok := e.EntryValue("red")
	require.True(t, ok)
	assert.Equal(t, int64(Red), v)

	_, ok = e.EntryValue("purple")
	assert.False(t, ok)

	assert.Equal(t, "green", e.Format(1))
	assert.Equal(t, "9", e.Format(9))

	got, ok := reg.EnumByName(TypeName[Color]())
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.Same(t, e, defineColor(reg), "identical copy returns the registered enum")
}

func TestEnumAliasesAndDuplicates(t *testing.T) {
	reg := NewRegistry()
	e := DefineEnum[Layer](reg).
		Entry("ground", 0).
		Entry("floor", 0).
		Entry("sky", 1).
		Finish()

	name, _ := e.EntryName(0)
	assert.Equal(t, "ground", name)
	v, _ := e.EntryValue("floor")
	assert.Equal(t, int64(0), v)

	requirePanicKind(t, CapabilityMismatch, func() {
		DefineEnum[Layer](NewRegistry()).Entry("a", 0).Entry("a", 1)
	})
}

func TestEnumSaveFallsBackToNumber(t *testing.T) {
	reg := NewRegistry()
	e := defineColor(reg)

	c := Color(7)
	assert.Equal(t, `7`, saveJSON(t, e, &c))
	c = Blue
	assert.Equal(t, `"blue"`, saveJSON(t, e, &c))
	assert.NotEqual(t, e.InstanceHash(&c, InitHash), e.InstanceHash(new(Color), InitHash))
}

func TestEnumDrift(t *testing.T) {
	reg := NewRegistry()
	defineColor(reg)

	requirePanicKind(t, SchemaDrift, func() {
		DefineEnum[Color](reg).Entry("red", Red).Finish()
	})
}

func TestEnumAttributes(t *testing.T) {
	reg := NewRegistry()
	e := DefineEnum[Color](reg).
		Entry("red", Red).
		Attrs(DisplayName{Name: "Color"}).
		Finish()

	assert.True(t, e.HasAttr(HandleOf[DisplayName]()))
	assert.Equal(t, DisplayName{Name: "Color"}, e.Attr(HandleOf[DisplayName]()))
	assert.Len(t, e.Attrs(), 1)
	assert.Equal(t, []*EnumDefinition{e}, reg.Enums())
}
