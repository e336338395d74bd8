// Package yamlprogram loads an [ir.Program] from an on-disk YAML
// description, the offline fixture format enumanalyze's CLI (and its
// tests) use in place of a real shrinker's class/method/field tables. It
// is grounded on the teacher's internal/harness/loader.go, which uses
// yaml.v3 to unmarshal fixture descriptions (there, expected.yaml test
// cases; here, whole programs) straight into Go structs.
package yamlprogram

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/309746069/enumanalysis/internal/ir"
)

// Doc is the root of a program description file.
type Doc struct {
	Types   []TypeDoc   `yaml:"types"`
	Classes []ClassDoc  `yaml:"classes"`
}

// TypeDoc declares a named type. Exactly one of Primitive or Component
// should be set; a type with neither is an ordinary reference type.
type TypeDoc struct {
	Name      string `yaml:"name"`
	Primitive bool   `yaml:"primitive,omitempty"`
	Component string `yaml:"component,omitempty"` // non-empty: this type is an array of Component.
}

// ClassDoc declares a class and its members.
type ClassDoc struct {
	Name    string      `yaml:"name"`
	Enum    bool        `yaml:"enum,omitempty"`
	Fields  []FieldDoc  `yaml:"fields,omitempty"`
	Methods []MethodDoc `yaml:"methods,omitempty"`
}

// FieldDoc declares a field of its enclosing class.
type FieldDoc struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Renameable *bool  `yaml:"renameable,omitempty"` // defaults to true when nil.
}

// MethodDoc declares a method of its enclosing class.
type MethodDoc struct {
	Name       string         `yaml:"name"`
	Return     string         `yaml:"return"`
	Args       []string       `yaml:"args,omitempty"`
	Static     bool           `yaml:"static,omitempty"`
	Init       bool           `yaml:"init,omitempty"`
	Clinit     bool           `yaml:"clinit,omitempty"`
	Renameable *bool          `yaml:"renameable,omitempty"`
	Params     []InstrDoc     `yaml:"params,omitempty"`
	Blocks     []BlockDoc     `yaml:"blocks,omitempty"`
}

// BlockDoc declares one basic block. The first block listed is the CFG's
// entry block.
type BlockDoc struct {
	ID           int32      `yaml:"id"`
	Successors   []int32    `yaml:"successors,omitempty"`
	Instructions []InstrDoc `yaml:"instructions,omitempty"`
}

// InstrDoc declares a single instruction. Dest/Src registers are plain
// ints; -1 names the reserved result pseudo-register.
type InstrDoc struct {
	Op         string `yaml:"op"`
	Dest       *int32 `yaml:"dest,omitempty"`
	DestWide   bool   `yaml:"dest_wide,omitempty"`
	Srcs       []int32 `yaml:"srcs,omitempty"`
	Type       string `yaml:"type,omitempty"`
	Field      string `yaml:"field,omitempty"` // "ClassName.fieldName"
	Method     string `yaml:"method,omitempty"` // "ClassName.methodName"
	HasMoveRes bool   `yaml:"has_move_result,omitempty"`
}

var opcodes = map[string]ir.Opcode{
	"load-param":               ir.OpLoadParam,
	"move-object":              ir.OpMoveObject,
	"invoke-static":            ir.OpInvokeStatic,
	"invoke-super":             ir.OpInvokeSuper,
	"invoke-direct":            ir.OpInvokeDirect,
	"invoke-interface":         ir.OpInvokeInterface,
	"invoke-virtual":           ir.OpInvokeVirtual,
	"const-class":              ir.OpConstClass,
	"check-cast":               ir.OpCheckCast,
	"move-result-object":       ir.OpMoveResultObject,
	"move-result-pseudo-object": ir.OpMoveResultPseudoObject,
	"sget-object":              ir.OpSGetObject,
	"iget-object":              ir.OpIGetObject,
	"aget-object":              ir.OpAGetObject,
	"aput-object":              ir.OpAPutObject,
	"iput-object":              ir.OpIPutObject,
	"sput-object":              ir.OpSPutObject,
	"return-object":            ir.OpReturnObject,
}

// Load reads path, parses it as YAML, and builds the described
// [ir.Program]. It returns the program plus the TypeIds of every type
// named in the document's top-level `candidates:` list, for convenience of
// callers (like the CLI) that want those types as their initial candidate
// set.
func Load(path string) (*ir.MemProgram, []ir.TypeId, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc struct {
		Doc        `yaml:",inline"`
		Candidates []string `yaml:"candidates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	b := newBuilder()
	if err := b.buildTypes(doc.Types); err != nil {
		return nil, nil, err
	}
	if err := b.buildClasses(doc.Classes); err != nil {
		return nil, nil, err
	}
	if err := b.buildMembers(doc.Classes); err != nil {
		return nil, nil, err
	}

	var candidates []ir.TypeId
	for _, name := range doc.Candidates {
		t, ok := b.types[name]
		if !ok {
			return nil, nil, fmt.Errorf("candidate %q names an undeclared type", name)
		}
		candidates = append(candidates, t)
	}

	return b.prog, candidates, nil
}

// builder resolves the document's string-named cross references (type
// names, "Class.member" field/method references) into the opaque ids
// MemProgram's builder API expects. It proceeds in three passes: types,
// then classes (so every class has a ClassId before any field/method
// references it), then fields+methods+code.
type builder struct {
	prog    *ir.MemProgram
	types   map[string]ir.TypeId
	classes map[string]ir.ClassId
	fields  map[string]ir.FieldId  // "Class.field" -> id
	methods map[string]ir.MethodId // "Class.method" -> id, last one wins for overloads
}

func newBuilder() *builder {
	p := ir.NewMemProgram()
	b := &builder{
		prog:    p,
		types:   make(map[string]ir.TypeId),
		classes: make(map[string]ir.ClassId),
		fields:  make(map[string]ir.FieldId),
		methods: make(map[string]ir.MethodId),
	}
	b.types["java.lang.Enum"] = p.EnumTypeID()
	b.types["java.lang.Class"] = p.ClassTypeID()
	b.types["java.lang.String"] = p.StringTypeID()
	return b
}

func (b *builder) buildTypes(docs []TypeDoc) error {
	// Two passes: plain/primitive types first, array types second, so an
	// array's Component is always already interned.
	for _, t := range docs {
		if t.Component != "" {
			continue
		}
		if _, ok := b.types[t.Name]; ok {
			continue
		}
		if t.Primitive {
			b.types[t.Name] = b.prog.PrimitiveType(t.Name)
		} else {
			b.types[t.Name] = b.prog.Type(t.Name)
		}
	}
	for _, t := range docs {
		if t.Component == "" {
			continue
		}
		comp, ok := b.types[t.Component]
		if !ok {
			return fmt.Errorf("array type %q names undeclared component %q", t.Name, t.Component)
		}
		b.types[t.Name] = b.prog.ArrayType(comp)
	}
	return nil
}

func (b *builder) buildClasses(docs []ClassDoc) error {
	for _, c := range docs {
		id := b.prog.AddClass(c.Name, c.Enum)
		b.classes[c.Name] = id
		// AddClass interns a same-named type; make it resolvable too.
		if t, ok := b.prog.ClassType(id); ok {
			b.types[c.Name] = t
		}
	}
	return nil
}

func (b *builder) buildMembers(docs []ClassDoc) error {
	for _, c := range docs {
		classID := b.classes[c.Name]
		for _, f := range c.Fields {
			ft, ok := b.types[f.Type]
			if !ok {
				return fmt.Errorf("field %s.%s names undeclared type %q", c.Name, f.Name, f.Type)
			}
			renameable := f.Renameable == nil || *f.Renameable
			fid := b.prog.AddField(classID, ft, renameable)
			b.fields[c.Name+"."+f.Name] = fid
		}
	}
	// Methods are built after every class's fields exist (so a method's
	// body can reference a field on any class, not only its own).
	for _, c := range docs {
		classID := b.classes[c.Name]
		for _, m := range c.Methods {
			if err := b.buildMethod(classID, c.Name, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) buildMethod(classID ir.ClassId, className string, m MethodDoc) error {
	ret, ok := b.types[m.Return]
	if !ok {
		return fmt.Errorf("method %s.%s names undeclared return type %q", className, m.Name, m.Return)
	}
	args := make([]ir.TypeId, len(m.Args))
	for i, a := range m.Args {
		t, ok := b.types[a]
		if !ok {
			return fmt.Errorf("method %s.%s names undeclared arg type %q", className, m.Name, a)
		}
		args[i] = t
	}

	mb := b.prog.AddMethod(classID, m.Name, ret, args, m.Static)
	if m.Init {
		mb = mb.Init()
	}
	if m.Clinit {
		mb = mb.Clinit()
	}
	if m.Renameable != nil && !*m.Renameable {
		mb = mb.NotRenameable()
	}

	params, err := b.instructions(m.Params)
	if err != nil {
		return fmt.Errorf("method %s.%s params: %w", className, m.Name, err)
	}
	mb = mb.Params(params...)

	for _, blk := range m.Blocks {
		instrs, err := b.instructions(blk.Instructions)
		if err != nil {
			return fmt.Errorf("method %s.%s block %d: %w", className, m.Name, blk.ID, err)
		}
		succs := make([]ir.BlockId, len(blk.Successors))
		for i, s := range blk.Successors {
			succs[i] = ir.BlockId(s)
		}
		mb = mb.Block(ir.BlockId(blk.ID), succs, instrs...)
	}

	id := mb.Build()
	b.methods[className+"."+m.Name] = id
	return nil
}

func (b *builder) instructions(docs []InstrDoc) ([]ir.Instruction, error) {
	out := make([]ir.Instruction, len(docs))
	for i, d := range docs {
		insn, err := b.instruction(d)
		if err != nil {
			return nil, err
		}
		out[i] = insn
	}
	return out, nil
}

func (b *builder) instruction(d InstrDoc) (ir.Instruction, error) {
	op, ok := opcodes[d.Op]
	if !ok {
		return ir.Instruction{}, fmt.Errorf("unknown opcode %q", d.Op)
	}
	insn := ir.Instruction{Op: op, HasMoveRes: d.HasMoveRes}

	if d.Dest != nil {
		insn.HasDest = true
		insn.Dest = ir.Register(*d.Dest)
		insn.DestWide = d.DestWide
	}
	insn.Srcs = make([]ir.Register, len(d.Srcs))
	for i, s := range d.Srcs {
		insn.Srcs[i] = ir.Register(s)
	}

	if d.Type != "" {
		t, ok := b.types[d.Type]
		if !ok {
			return ir.Instruction{}, fmt.Errorf("instruction %s names undeclared type %q", d.Op, d.Type)
		}
		insn.HasType = true
		insn.Type = t
	}
	if d.Field != "" {
		f, ok := b.fields[d.Field]
		if !ok {
			return ir.Instruction{}, fmt.Errorf("instruction %s names undeclared field %q", d.Op, d.Field)
		}
		insn.HasField = true
		insn.Field = f
	}
	if d.Method != "" {
		m, ok := b.methods[d.Method]
		if !ok {
			return ir.Instruction{}, fmt.Errorf("instruction %s names undeclared method %q", d.Op, d.Method)
		}
		insn.HasMethod = true
		insn.MethodOp = m
	}
	return insn, nil
}
