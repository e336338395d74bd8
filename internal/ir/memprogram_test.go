package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMemProgramSeedsWellKnownTypes(t *testing.T) {
	p := NewMemProgram()
	require.Equal(t, "java.lang.Enum", p.TypeName(p.EnumTypeID()))
	require.Equal(t, "java.lang.Class", p.TypeName(p.ClassTypeID()))
	require.Equal(t, "java.lang.String", p.TypeName(p.StringTypeID()))
}

func TestTypeInterningIsIdempotent(t *testing.T) {
	p := NewMemProgram()
	a := p.Type("com.example.Foo")
	b := p.Type("com.example.Foo")
	require.Equal(t, a, b)
}

func TestArrayTypeComponentRoundTrips(t *testing.T) {
	p := NewMemProgram()
	elem := p.Type("com.example.Foo")
	arr := p.ArrayType(elem)

	require.True(t, p.IsArray(arr))
	comp, ok := p.ComponentType(arr)
	require.True(t, ok)
	require.Equal(t, elem, comp)
}

func TestArrayTypeInterningIsIdempotent(t *testing.T) {
	p := NewMemProgram()
	elem := p.Type("com.example.Foo")
	a := p.ArrayType(elem)
	b := p.ArrayType(elem)
	require.Equal(t, a, b)
}

func TestClassTypeIsInverseOfClassOf(t *testing.T) {
	p := NewMemProgram()
	c := p.AddClass("com.example.Foo", false)
	typ, ok := p.ClassType(c)
	require.True(t, ok)

	back, ok := p.ClassOf(typ)
	require.True(t, ok)
	require.Equal(t, c, back)
}

func TestClassTypeInvalidClassIdReturnsFalse(t *testing.T) {
	p := NewMemProgram()
	_, ok := p.ClassType(ClassId(999))
	require.False(t, ok)
}

func TestIsEnumClass(t *testing.T) {
	p := NewMemProgram()
	enumClass := p.AddClass("com.example.Color", true)
	plainClass := p.AddClass("com.example.Other", false)

	require.True(t, p.IsEnumClass(enumClass))
	require.False(t, p.IsEnumClass(plainClass))
}

func TestFieldAccessors(t *testing.T) {
	p := NewMemProgram()
	c := p.AddClass("com.example.Foo", false)
	ft := p.Type("com.example.Bar")
	f := p.AddField(c, ft, false)

	require.Equal(t, ft, p.FieldType(f))
	require.Equal(t, c, p.FieldDeclaringClass(f))
	require.False(t, p.CanRenameField(f))
	require.Contains(t, p.Fields(c), f)
}

func TestMethodBuilderDefaultsRenameableTrue(t *testing.T) {
	p := NewMemProgram()
	c := p.AddClass("com.example.Foo", false)
	m := p.AddMethod(c, "bar", p.StringTypeID(), nil, false).Build()

	require.True(t, p.CanRenameMethod(m))
	require.False(t, p.IsInit(m))
	require.False(t, p.IsClinit(m))
	require.Contains(t, p.Methods(c), m)
}

func TestMethodBuilderNotRenameable(t *testing.T) {
	p := NewMemProgram()
	c := p.AddClass("com.example.Foo", false)
	m := p.AddMethod(c, "bar", p.StringTypeID(), nil, false).NotRenameable().Build()

	require.False(t, p.CanRenameMethod(m))
}

func TestMethodBuilderClinitForcesStatic(t *testing.T) {
	p := NewMemProgram()
	c := p.AddClass("com.example.Foo", false)
	m := p.AddMethod(c, "<clinit>", p.StringTypeID(), nil, false).Clinit().Build()

	require.True(t, p.IsStatic(m))
	require.True(t, p.IsClinit(m))
}

func TestMethodWithoutBlocksHasNoCode(t *testing.T) {
	p := NewMemProgram()
	c := p.AddClass("com.example.Foo", false)
	m := p.AddMethod(c, "bar", p.StringTypeID(), nil, false).Build()

	_, err := p.Code(m)
	require.ErrorIs(t, err, ErrNoCode)
}

func TestMethodWithBlocksBuildsCFGWithFirstBlockAsEntry(t *testing.T) {
	p := NewMemProgram()
	c := p.AddClass("com.example.Foo", false)
	m := p.AddMethod(c, "bar", p.StringTypeID(), nil, false).
		Block(5, []BlockId{7}).
		Block(7, nil).
		Build()

	cfg, err := p.Code(m)
	require.NoError(t, err)
	require.Equal(t, BlockId(5), cfg.Entry)
	require.ElementsMatch(t, []BlockId{5, 7}, cfg.BlockIDs())
}

func TestGatherTypesCollectsProtoAndBodyOperands(t *testing.T) {
	p := NewMemProgram()
	c := p.AddClass("com.example.Foo", false)
	argType := p.Type("com.example.Arg")
	fieldType := p.Type("com.example.FieldType")
	fieldClass := p.AddClass("com.example.FieldOwner", false)
	f := p.AddField(fieldClass, fieldType, true)

	m := p.AddMethod(c, "bar", p.StringTypeID(), []TypeId{argType}, false).
		Block(0, nil, Instruction{Op: OpIGetObject, HasDest: true, Dest: 0, HasField: true, Field: f, Srcs: []Register{1}}).
		Build()

	gathered := p.GatherTypes(m)
	require.Contains(t, gathered, argType)
	require.Contains(t, gathered, fieldType)
	require.Contains(t, gathered, p.StringTypeID())
}

func TestGatherTypesDeduplicates(t *testing.T) {
	p := NewMemProgram()
	c := p.AddClass("com.example.Foo", false)
	argType := p.Type("com.example.Arg")

	m := p.AddMethod(c, "bar", argType, []TypeId{argType, argType}, false).Build()

	gathered := p.GatherTypes(m)
	count := 0
	for _, t := range gathered {
		if t == argType {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestBlockIDsAreSortedAscending(t *testing.T) {
	cfg := &CFG{Blocks: map[BlockId]*Block{
		3: {ID: 3}, 1: {ID: 1}, 2: {ID: 2},
	}}
	require.Equal(t, []BlockId{1, 2, 3}, cfg.BlockIDs())
}

func TestOpcodeIsInvoke(t *testing.T) {
	require.True(t, OpInvokeStatic.IsInvoke())
	require.True(t, OpInvokeVirtual.IsInvoke())
	require.False(t, OpCheckCast.IsInvoke())
}
