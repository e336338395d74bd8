package ir

import "fmt"

// classInfo/fieldInfo/methodInfo are the MemProgram's private bookkeeping.
// Builders (AddClass, AddField, AddMethod) populate these; the Program
// interface methods only ever read them.
type classInfo struct {
	name      string
	isEnum    bool
	fields    []FieldId
	methods   []MethodId
}

type fieldInfo struct {
	declaringClass ClassId
	typ            TypeId
	renameable     bool
}

type methodInfo struct {
	proto      MethodProto
	static     bool
	isInit     bool
	isClinit   bool
	renameable bool
	params     []Instruction
	code       *CFG
}

type typeInfo struct {
	name      string
	primitive bool
	// component is the element type for array types (Invalid otherwise);
	// isArray is true when this type is itself an array of component.
	component TypeId
	isArray   bool
}

// MemProgram is a small, fully in-memory [Program] used by tests and the
// enumanalyze CLI's offline (--program file.yaml) mode. Real integration
// with a shrinker would supply its own Program backed by the shrinker's
// own class/method/field tables instead of this type.
type MemProgram struct {
	types   []typeInfo
	classes []classInfo
	fields  []fieldInfo
	methods []methodInfo

	enumType   TypeId
	classType  TypeId
	stringType TypeId
	objectType TypeId
}

// NewMemProgram creates an empty program seeded with the well-known types
// every analysis needs: java.lang.Enum, java.lang.Class, java.lang.String
// and java.lang.Object.
func NewMemProgram() *MemProgram {
	p := &MemProgram{}
	p.enumType = p.internType("java.lang.Enum", false)
	p.classType = p.internType("java.lang.Class", false)
	p.stringType = p.internType("java.lang.String", false)
	p.objectType = p.internType("java.lang.Object", false)
	return p
}

func (p *MemProgram) internType(name string, primitive bool) TypeId {
	for i, t := range p.types {
		if t.name == name {
			return TypeId(i)
		}
	}
	p.types = append(p.types, typeInfo{name: name, primitive: primitive, component: Invalid})
	return TypeId(len(p.types) - 1)
}

// Type interns (or looks up) a named reference type and returns its id.
func (p *MemProgram) Type(name string) TypeId {
	return p.internType(name, false)
}

// PrimitiveType interns a primitive type (int, boolean, ...).
func (p *MemProgram) PrimitiveType(name string) TypeId {
	return p.internType(name, true)
}

// ArrayType interns an array type whose element type is component and
// returns its id; component must already be a valid TypeId in this program.
func (p *MemProgram) ArrayType(component TypeId) TypeId {
	name := "[" + p.types[component].name
	for i, t := range p.types {
		if t.isArray && t.component == component {
			_ = name
			return TypeId(i)
		}
	}
	p.types = append(p.types, typeInfo{name: name, isArray: true, component: component})
	return TypeId(len(p.types) - 1)
}

// AddClass registers a new class, optionally as an enum, and returns its id.
func (p *MemProgram) AddClass(name string, isEnum bool) ClassId {
	p.classes = append(p.classes, classInfo{name: name, isEnum: isEnum})
	id := ClassId(len(p.classes) - 1)
	// Every class is also a TypeId naming it, so check-cast/instanceof-style
	// operands can refer to it directly.
	p.internType(name, false)
	return id
}

// classTypeUnchecked returns the TypeId naming class c (the class must have
// been created via AddClass, which interns a same-named type), for
// internal bookkeeping that already knows c is valid.
func (p *MemProgram) classTypeUnchecked(c ClassId) TypeId {
	return TypeId(indexOfTypeName(p.types, p.classes[c].name))
}

// ClassType implements Program.ClassType.
func (p *MemProgram) ClassType(c ClassId) (TypeId, bool) {
	if int(c) < 0 || int(c) >= len(p.classes) {
		return Invalid, false
	}
	idx := indexOfTypeName(p.types, p.classes[c].name)
	if idx < 0 {
		return Invalid, false
	}
	return TypeId(idx), true
}

func indexOfTypeName(types []typeInfo, name string) int {
	for i, t := range types {
		if t.name == name {
			return i
		}
	}
	return -1
}

// AddField registers a field of the given declaring class and type.
func (p *MemProgram) AddField(declaring ClassId, typ TypeId, renameable bool) FieldId {
	p.fields = append(p.fields, fieldInfo{declaringClass: declaring, typ: typ, renameable: renameable})
	id := FieldId(len(p.fields) - 1)
	p.classes[declaring].fields = append(p.classes[declaring].fields, id)
	return id
}

// MethodBuilder accumulates a method's body before it is sealed with Build.
type MethodBuilder struct {
	p          *MemProgram
	declaring  ClassId
	name       string
	ret        TypeId
	args       []TypeId
	static     bool
	isInit     bool
	isClinit   bool
	renameable bool
	params     []Instruction
	blocks     map[BlockId]*Block
	entry      BlockId
}

// AddMethod begins building a method on class declaring.
func (p *MemProgram) AddMethod(declaring ClassId, name string, ret TypeId, args []TypeId, static bool) *MethodBuilder {
	return &MethodBuilder{
		p:          p,
		declaring:  declaring,
		name:       name,
		ret:        ret,
		args:       args,
		static:     static,
		renameable: true,
		blocks:     make(map[BlockId]*Block),
	}
}

// Init marks the method under construction as <init>.
func (b *MethodBuilder) Init() *MethodBuilder { b.isInit = true; return b }

// Clinit marks the method under construction as <clinit>.
func (b *MethodBuilder) Clinit() *MethodBuilder { b.isClinit = true; b.static = true; return b }

// NotRenameable marks the method as not safely renameable (can_rename ==
// false), e.g. because it is kept by a reflection/serialization rule.
func (b *MethodBuilder) NotRenameable() *MethodBuilder { b.renameable = false; return b }

// Params sets the method's load-param instructions, in order: the receiver
// (if non-static) followed by each formal argument.
func (b *MethodBuilder) Params(params ...Instruction) *MethodBuilder {
	b.params = params
	return b
}

// Block appends a basic block to the method body. The first block added
// becomes the CFG's entry block.
func (b *MethodBuilder) Block(id BlockId, successors []BlockId, instrs ...Instruction) *MethodBuilder {
	if len(b.blocks) == 0 {
		b.entry = id
	}
	b.blocks[id] = &Block{ID: id, Instructions: instrs, Successors: successors}
	return b
}

// Build seals the method and registers it on its declaring class.
func (b *MethodBuilder) Build() MethodId {
	var cfg *CFG
	if len(b.blocks) > 0 {
		cfg = &CFG{Method: MethodId(len(b.p.methods)), Entry: b.entry, Blocks: b.blocks}
	}
	mi := methodInfo{
		proto: MethodProto{
			DeclaringClass: b.declaring,
			Name:           b.name,
			ReturnType:     b.ret,
			ArgTypes:       b.args,
		},
		static:     b.static,
		isInit:     b.isInit,
		isClinit:   b.isClinit,
		renameable: b.renameable,
		params:     b.params,
		code:       cfg,
	}
	b.p.methods = append(b.p.methods, mi)
	id := MethodId(len(b.p.methods) - 1)
	b.p.classes[b.declaring].methods = append(b.p.classes[b.declaring].methods, id)
	return id
}

// --- Program interface ---

func (p *MemProgram) IsPrimitive(t TypeId) bool {
	if int(t) < 0 || int(t) >= len(p.types) {
		return false
	}
	return p.types[t].primitive
}

func (p *MemProgram) IsArray(t TypeId) bool {
	if int(t) < 0 || int(t) >= len(p.types) {
		return false
	}
	return p.types[t].isArray
}

func (p *MemProgram) ComponentType(t TypeId) (TypeId, bool) {
	if int(t) < 0 || int(t) >= len(p.types) || !p.types[t].isArray {
		return Invalid, false
	}
	return p.types[t].component, true
}

func (p *MemProgram) EnumTypeID() TypeId   { return p.enumType }
func (p *MemProgram) ClassTypeID() TypeId  { return p.classType }
func (p *MemProgram) StringTypeID() TypeId { return p.stringType }
func (p *MemProgram) ObjectTypeID() TypeId { return p.objectType }

func (p *MemProgram) TypeName(t TypeId) string {
	if int(t) < 0 || int(t) >= len(p.types) {
		return fmt.Sprintf("<invalid type %d>", t)
	}
	return p.types[t].name
}

func (p *MemProgram) ClassOf(t TypeId) (ClassId, bool) {
	name := p.TypeName(t)
	for i, c := range p.classes {
		if c.name == name {
			return ClassId(i), true
		}
	}
	return Invalid, false
}

func (p *MemProgram) IsEnumClass(c ClassId) bool {
	if int(c) < 0 || int(c) >= len(p.classes) {
		return false
	}
	return p.classes[c].isEnum
}

func (p *MemProgram) IsStatic(m MethodId) bool  { return p.methods[m].static }
func (p *MemProgram) IsInit(m MethodId) bool    { return p.methods[m].isInit }
func (p *MemProgram) IsClinit(m MethodId) bool  { return p.methods[m].isClinit }

func (p *MemProgram) CanRenameField(f FieldId) bool  { return p.fields[f].renameable }
func (p *MemProgram) CanRenameMethod(m MethodId) bool { return p.methods[m].renameable }

func (p *MemProgram) MethodProto(m MethodId) MethodProto { return p.methods[m].proto }

// GatherTypes collects every TypeId named by the method's proto and its
// instructions (type/field/method operands' declaring/return/arg types),
// matching the "proto+body" description in spec.
func (p *MemProgram) GatherTypes(m MethodId) []TypeId {
	seen := make(map[TypeId]struct{})
	var out []TypeId
	add := func(t TypeId) {
		if t == Invalid {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	proto := p.methods[m].proto
	add(proto.ReturnType)
	for _, a := range proto.ArgTypes {
		add(a)
	}
	add(p.classTypeUnchecked(proto.DeclaringClass))

	walk := func(instrs []Instruction) {
		for _, insn := range instrs {
			if insn.HasType {
				add(insn.Type)
			}
			if insn.HasField {
				add(p.fields[insn.Field].typ)
				add(p.classTypeUnchecked(p.fields[insn.Field].declaringClass))
			}
			if insn.HasMethod {
				mp := p.methods[insn.MethodOp].proto
				add(mp.ReturnType)
				for _, a := range mp.ArgTypes {
					add(a)
				}
				add(p.classTypeUnchecked(mp.DeclaringClass))
			}
		}
	}
	walk(p.methods[m].params)
	if cfg := p.methods[m].code; cfg != nil {
		for _, id := range cfg.BlockIDs() {
			walk(cfg.Blocks[id].Instructions)
		}
	}
	return out
}

func (p *MemProgram) Code(m MethodId) (*CFG, error) {
	cfg := p.methods[m].code
	if cfg == nil {
		return nil, ErrNoCode
	}
	return cfg, nil
}

func (p *MemProgram) ParamInstructions(m MethodId) []Instruction {
	return p.methods[m].params
}

func (p *MemProgram) FieldType(f FieldId) TypeId              { return p.fields[f].typ }
func (p *MemProgram) FieldDeclaringClass(f FieldId) ClassId    { return p.fields[f].declaringClass }

func (p *MemProgram) Classes() []ClassId {
	ids := make([]ClassId, len(p.classes))
	for i := range p.classes {
		ids[i] = ClassId(i)
	}
	return ids
}

func (p *MemProgram) Fields(c ClassId) []FieldId   { return p.classes[c].fields }
func (p *MemProgram) Methods(c ClassId) []MethodId { return p.classes[c].methods }

func (p *MemProgram) MethodName(m MethodId) string { return p.methods[m].proto.Name }

var _ Program = (*MemProgram)(nil)
