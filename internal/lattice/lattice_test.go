package lattice

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/309746069/enumanalysis/internal/ir"
)

func TestEnumTypesBottomIsIdentityForJoin(t *testing.T) {
	a := Of(ir.TypeId(1))
	require.True(t, Equal(Join(Bottom(), a), a))
	require.True(t, Equal(Join(a, Bottom()), a))
}

func TestEnumTypesTopAbsorbs(t *testing.T) {
	a := Of(ir.TypeId(1))
	require.True(t, Join(Top(), a).IsTop())
	require.True(t, Join(a, Top()).IsTop())
}

func TestEnumTypesJoinIsUnion(t *testing.T) {
	a := OfAll(ir.TypeId(1), ir.TypeId(2))
	b := OfAll(ir.TypeId(2), ir.TypeId(3))
	joined := Join(a, b)
	require.ElementsMatch(t, []ir.TypeId{1, 2, 3}, joined.Elements())
}

func TestEnumTypesLessEqual(t *testing.T) {
	sub := Of(ir.TypeId(1))
	super := OfAll(ir.TypeId(1), ir.TypeId(2))
	require.True(t, LessEqual(Bottom(), sub))
	require.True(t, LessEqual(sub, super))
	require.False(t, LessEqual(super, sub))
	require.True(t, LessEqual(super, Top()))
}

func TestEnumTypesAdd(t *testing.T) {
	require.True(t, Equal(Bottom().Add(ir.TypeId(1)), Of(ir.TypeId(1))))
	require.True(t, Top().Add(ir.TypeId(1)).IsTop())
	set := Of(ir.TypeId(1)).Add(ir.TypeId(2))
	require.ElementsMatch(t, []ir.TypeId{1, 2}, set.Elements())
}

func TestEnumTypesOfAllEmptyIsBottom(t *testing.T) {
	require.True(t, OfAll().IsBottom())
}

func TestEnumTypesContains(t *testing.T) {
	set := OfAll(ir.TypeId(1), ir.TypeId(2))
	require.True(t, set.Contains(ir.TypeId(1)))
	require.False(t, set.Contains(ir.TypeId(3)))
	require.False(t, Bottom().Contains(ir.TypeId(1)))
}

func TestEnumTypesDiscardPrimitives(t *testing.T) {
	isPrimitive := func(t ir.TypeId) bool { return t == 1 }
	set := OfAll(ir.TypeId(1), ir.TypeId(2))
	filtered := set.DiscardPrimitives(isPrimitive)
	require.ElementsMatch(t, []ir.TypeId{2}, filtered.Elements())

	allPrimitive := Of(ir.TypeId(1)).DiscardPrimitives(isPrimitive)
	require.True(t, allPrimitive.IsBottom())
}

func TestEnumTypesEqualReflexive(t *testing.T) {
	require.True(t, Equal(Bottom(), Bottom()))
	require.True(t, Equal(Top(), Top()))
	require.False(t, Equal(Bottom(), Top()))
}
