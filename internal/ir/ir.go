// Package ir defines the external program-representation facade the enum
// analysis is built against: types, classes, methods, fields, instructions
// and control-flow graphs. Per the analysis' design, construction of this
// representation (parsing a dex/class file, building a CFG from raw
// bytecode) is the job of a surrounding shrinker/optimizer; this package
// only declares the facade and, in [NewMemProgram], a reference in-memory
// implementation suitable for tests and the offline CLI mode.
package ir

import "fmt"

// TypeId is an opaque interned identifier for a reference or primitive
// Java/Dalvik type.
type TypeId int32

// Invalid (-1) is the "no entity" sentinel shared by every opaque id type;
// it never identifies a real entity.
const Invalid = -1

// ClassId identifies a class.
type ClassId int32

// MethodId identifies a method.
type MethodId int32

// FieldId identifies a field.
type FieldId int32

// Register identifies a virtual register in a method.
type Register int32

// ResultRegister is the reserved pseudo-register used to pass a value from
// an invocation (or *get-object) to its immediately following
// move-result(-pseudo)-object.
const ResultRegister Register = -1

// BlockId identifies a basic block within a method's CFG.
type BlockId int32

// Opcode enumerates the bytecode operations the transfer function and
// detector understand. Only the opcodes referenced by spec are modeled;
// everything else is represented as OpOther and falls through to the
// generic "unknown dest" and "no rejection effect" rules.
type Opcode int

const (
	OpOther Opcode = iota
	OpLoadParam
	OpMoveObject
	OpInvokeStatic
	OpInvokeSuper
	OpInvokeDirect
	OpInvokeInterface
	OpInvokeVirtual
	OpConstClass
	OpCheckCast
	OpMoveResultObject
	OpMoveResultPseudoObject
	OpSGetObject
	OpIGetObject
	OpAGetObject
	OpAPutObject
	OpIPutObject
	OpSPutObject
	OpReturnObject
)

func (op Opcode) String() string {
	switch op {
	case OpLoadParam:
		return "load-param"
	case OpMoveObject:
		return "move-object"
	case OpInvokeStatic:
		return "invoke-static"
	case OpInvokeSuper:
		return "invoke-super"
	case OpInvokeDirect:
		return "invoke-direct"
	case OpInvokeInterface:
		return "invoke-interface"
	case OpInvokeVirtual:
		return "invoke-virtual"
	case OpConstClass:
		return "const-class"
	case OpCheckCast:
		return "check-cast"
	case OpMoveResultObject:
		return "move-result-object"
	case OpMoveResultPseudoObject:
		return "move-result-pseudo-object"
	case OpSGetObject:
		return "sget-object"
	case OpIGetObject:
		return "iget-object"
	case OpAGetObject:
		return "aget-object"
	case OpAPutObject:
		return "aput-object"
	case OpIPutObject:
		return "iput-object"
	case OpSPutObject:
		return "sput-object"
	case OpReturnObject:
		return "return-object"
	default:
		return "other"
	}
}

// IsInvoke reports whether op is one of the five invoke-* opcodes.
func (op Opcode) IsInvoke() bool {
	switch op {
	case OpInvokeStatic, OpInvokeSuper, OpInvokeDirect, OpInvokeInterface, OpInvokeVirtual:
		return true
	default:
		return false
	}
}

// Instruction is a single bytecode instruction. Fields are populated
// according to the opcode; Has* accessors mirror the external facade
// described by the analysis (hasType, hasField, hasMethod, ...).
type Instruction struct {
	Op Opcode

	// Dest is the declared destination register, valid when HasDest is true.
	Dest    Register
	HasDest bool

	// DestWide marks dest as a wide register pair (dest, dest+1).
	DestWide bool

	// Srcs lists source registers in operand order. For invocations with a
	// receiver, Srcs[0] is the receiver.
	Srcs []Register

	// HasType / Type hold a type operand for check-cast, const-class,
	// new-instance and similar opcodes.
	HasType bool
	Type    TypeId

	// HasField / Field hold a field operand for *get*/*put* opcodes.
	HasField bool
	Field    FieldId

	// HasMethod / MethodOp hold a method operand for invoke-* opcodes.
	HasMethod  bool
	MethodOp   MethodId
	HasMoveRes bool // followed immediately by a move-result-pseudo-object
}

// Block is one basic block of a method's control-flow graph.
type Block struct {
	ID           BlockId
	Instructions []Instruction
	Successors   []BlockId
}

// CFG is a method's (already constructed, non-editable) control-flow graph.
type CFG struct {
	Method MethodId
	Entry  BlockId
	Blocks map[BlockId]*Block
}

// Block looks up a block by id.
func (c *CFG) Block(id BlockId) *Block {
	return c.Blocks[id]
}

// BlockIDs returns the block ids of the CFG in a stable order (ascending id),
// which callers use for deterministic chaotic iteration.
func (c *CFG) BlockIDs() []BlockId {
	ids := make([]BlockId, 0, len(c.Blocks))
	for id := range c.Blocks {
		ids = append(ids, id)
	}
	// Simple insertion sort: CFGs are small (one method's blocks).
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

// MethodProto describes a method's static signature.
type MethodProto struct {
	DeclaringClass ClassId
	Name           string
	ReturnType     TypeId
	ArgTypes       []TypeId
}

// Program is the facade the analysis is built against. One reference
// implementation, [*MemProgram], is provided for tests and the CLI's
// offline mode; a real shrinker would adapt its own class/method/field/type
// tables to this interface instead.
type Program interface {
	// Type queries.
	IsPrimitive(t TypeId) bool
	IsArray(t TypeId) bool
	ComponentType(t TypeId) (TypeId, bool)
	EnumTypeID() TypeId
	ClassTypeID() TypeId
	StringTypeID() TypeId
	ObjectTypeID() TypeId
	TypeName(t TypeId) string

	// Class/member queries.
	ClassOf(t TypeId) (ClassId, bool)
	// ClassType returns the TypeId that names class c (the inverse of
	// ClassOf), used to recognize e.g. "values() returns an array of the
	// declaring class" without the caller needing its own type table.
	ClassType(c ClassId) (TypeId, bool)
	IsEnumClass(c ClassId) bool
	IsStatic(m MethodId) bool
	IsInit(m MethodId) bool
	IsClinit(m MethodId) bool
	CanRenameField(f FieldId) bool
	CanRenameMethod(m MethodId) bool

	// Method queries.
	MethodProto(m MethodId) MethodProto
	GatherTypes(m MethodId) []TypeId
	Code(m MethodId) (*CFG, error)
	ParamInstructions(m MethodId) []Instruction

	// Field queries.
	FieldType(f FieldId) TypeId
	FieldDeclaringClass(f FieldId) ClassId

	// Program-wide enumeration, used by the driver.
	Classes() []ClassId
	Fields(c ClassId) []FieldId
	Methods(c ClassId) []MethodId
	MethodName(m MethodId) string
}

// ErrNoCode is returned by Code when a method has no body (abstract,
// native) and thus no CFG to analyze.
var ErrNoCode = fmt.Errorf("ir: method has no code")
