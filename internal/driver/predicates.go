package driver

import "github.com/309746069/enumanalysis/internal/ir"

// isStaticMethodOnEnumClass reports whether m resolves to a defined static
// method whose declaring class is an enum.
func isStaticMethodOnEnumClass(prog ir.Program, m ir.MethodId) bool {
	if !prog.IsStatic(m) {
		return false
	}
	return prog.IsEnumClass(prog.MethodProto(m).DeclaringClass)
}

// isEnumValues implements is_enum_values: a static, no-arg method named
// "values" on an enum class, returning an array of that class.
func isEnumValues(prog ir.Program, m ir.MethodId) bool {
	if !isStaticMethodOnEnumClass(prog, m) {
		return false
	}
	proto := prog.MethodProto(m)
	if proto.Name != "values" || len(proto.ArgTypes) != 0 {
		return false
	}
	component, ok := prog.ComponentType(proto.ReturnType)
	if !ok {
		return false
	}
	classType, ok := prog.ClassType(proto.DeclaringClass)
	return ok && component == classType
}

// isEnumValueOf implements is_enum_valueof: a static method named "valueOf"
// on an enum class, taking one java.lang.String argument and returning the
// declaring class.
func isEnumValueOf(prog ir.Program, m ir.MethodId) bool {
	if !isStaticMethodOnEnumClass(prog, m) {
		return false
	}
	proto := prog.MethodProto(m)
	if proto.Name != "valueOf" || len(proto.ArgTypes) != 1 {
		return false
	}
	if proto.ArgTypes[0] != prog.StringTypeID() {
		return false
	}
	classType, ok := prog.ClassType(proto.DeclaringClass)
	return ok && proto.ReturnType == classType
}
