package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/309746069/enumanalysis/internal/ir"
)

func TestIsEnumValuesRecognizesGeneratedMethod(t *testing.T) {
	p := ir.NewMemProgram()
	colorClass := p.AddClass("com.example.Color", true)
	colorType, _ := p.ClassType(colorClass)
	arrType := p.ArrayType(colorType)
	m := p.AddMethod(colorClass, "values", arrType, nil, true).Build()

	require.True(t, isEnumValues(p, m))
	require.False(t, isEnumValueOf(p, m))
}

func TestIsEnumValuesRejectsWrongComponentType(t *testing.T) {
	p := ir.NewMemProgram()
	colorClass := p.AddClass("com.example.Color", true)
	otherClass := p.AddClass("com.example.Other", false)
	otherType, _ := p.ClassType(otherClass)
	arrType := p.ArrayType(otherType)
	m := p.AddMethod(colorClass, "values", arrType, nil, true).Build()

	require.False(t, isEnumValues(p, m))
}

func TestIsEnumValueOfRecognizesGeneratedMethod(t *testing.T) {
	p := ir.NewMemProgram()
	colorClass := p.AddClass("com.example.Color", true)
	colorType, _ := p.ClassType(colorClass)
	m := p.AddMethod(colorClass, "valueOf", colorType, []ir.TypeId{p.StringTypeID()}, true).Build()

	require.True(t, isEnumValueOf(p, m))
	require.False(t, isEnumValues(p, m))
}

func TestIsEnumValueOfRejectsNonStringArg(t *testing.T) {
	p := ir.NewMemProgram()
	colorClass := p.AddClass("com.example.Color", true)
	colorType, _ := p.ClassType(colorClass)
	intType := p.PrimitiveType("int")
	m := p.AddMethod(colorClass, "valueOf", colorType, []ir.TypeId{intType}, true).Build()

	require.False(t, isEnumValueOf(p, m))
}

func TestIsStaticMethodOnEnumClassRejectsNonStatic(t *testing.T) {
	p := ir.NewMemProgram()
	colorClass := p.AddClass("com.example.Color", true)
	colorType, _ := p.ClassType(colorClass)
	m := p.AddMethod(colorClass, "values", p.ArrayType(colorType), nil, false).Build()

	require.False(t, isStaticMethodOnEnumClass(p, m))
	require.False(t, isEnumValues(p, m))
}

func TestIsStaticMethodOnEnumClassRejectsNonEnumClass(t *testing.T) {
	p := ir.NewMemProgram()
	otherClass := p.AddClass("com.example.Other", false)
	m := p.AddMethod(otherClass, "values", p.StringTypeID(), nil, true).Build()

	require.False(t, isStaticMethodOnEnumClass(p, m))
}
