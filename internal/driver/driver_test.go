package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/309746069/enumanalysis/internal/ir"
)

// buildFixtureProgram builds a two-enum, one-client-class program: Color is
// upcast to Object by an unsafe method and must be rejected; Season is only
// ever returned as its own declared type and must survive.
func buildFixtureProgram(t *testing.T) (*ir.MemProgram, ir.TypeId, ir.TypeId) {
	t.Helper()
	p := ir.NewMemProgram()
	objectType := p.Type("java.lang.Object")

	colorClass := p.AddClass("com.example.Color", true)
	colorType, ok := p.ClassType(colorClass)
	require.True(t, ok)

	seasonClass := p.AddClass("com.example.Season", true)
	seasonType, ok := p.ClassType(seasonClass)
	require.True(t, ok)

	clientClass := p.AddClass("com.example.Client", false)

	// Generated methods; the driver's skip list must never analyze these.
	p.AddMethod(colorClass, "values", p.ArrayType(colorType), nil, true).Build()
	p.AddMethod(colorClass, "valueOf", colorType, []ir.TypeId{p.StringTypeID()}, true).Build()
	p.AddMethod(seasonClass, "values", p.ArrayType(seasonType), nil, true).Build()
	p.AddMethod(seasonClass, "valueOf", seasonType, []ir.TypeId{p.StringTypeID()}, true).Build()

	p.AddMethod(clientClass, "unsafe", objectType, []ir.TypeId{colorType}, true).
		Params(ir.Instruction{Op: ir.OpLoadParam, HasDest: true, Dest: 0}).
		Block(0, nil,
			ir.Instruction{Op: ir.OpCheckCast, HasDest: true, Dest: 1, HasType: true, Type: objectType, Srcs: []ir.Register{0}},
		).
		Build()

	p.AddMethod(clientClass, "safe", seasonType, []ir.TypeId{seasonType}, true).
		Params(ir.Instruction{Op: ir.OpLoadParam, HasDest: true, Dest: 0}).
		Block(0, nil,
			ir.Instruction{Op: ir.OpReturnObject, Srcs: []ir.Register{0}},
		).
		Build()

	return p, colorType, seasonType
}

func TestRunRejectsUpcastCandidateAndKeepsSafeOne(t *testing.T) {
	p, colorType, seasonType := buildFixtureProgram(t)

	survived, err := Run(p, []ir.TypeId{colorType, seasonType})
	require.NoError(t, err)
	require.ElementsMatch(t, []ir.TypeId{seasonType}, survived)
}

func TestRunSkipsGeneratedMethodsOfCandidates(t *testing.T) {
	// values()/valueOf() here carry no load-params and no body. If the
	// driver did not skip them, building valueOf's initial environment
	// (one argument, zero load-params) would trip the load-param arity
	// invariant and Run would panic instead of keeping Color.
	p := ir.NewMemProgram()
	colorClass := p.AddClass("com.example.Color", true)
	colorType, _ := p.ClassType(colorClass)
	p.AddMethod(colorClass, "values", p.ArrayType(colorType), nil, true).Build()
	p.AddMethod(colorClass, "valueOf", colorType, []ir.TypeId{p.StringTypeID()}, true).Build()

	survived, err := Run(p, []ir.TypeId{colorType})
	require.NoError(t, err)
	require.ElementsMatch(t, []ir.TypeId{colorType}, survived)
}

func TestRunIsIdempotentOnItsOwnSurvivedSet(t *testing.T) {
	p, colorType, seasonType := buildFixtureProgram(t)

	first, err := Run(p, []ir.TypeId{colorType, seasonType})
	require.NoError(t, err)

	second, err := Run(p, first)
	require.NoError(t, err)
	require.ElementsMatch(t, first, second)
}

func TestRunNeverRejectsBeyondTheGivenCandidateSet(t *testing.T) {
	p, colorType, seasonType := buildFixtureProgram(t)

	survived, err := Run(p, []ir.TypeId{seasonType})
	require.NoError(t, err)
	// colorType was never a candidate; it must not spuriously appear.
	require.NotContains(t, survived, colorType)
}

func TestFieldPreFilterRejectsCandidateHeldByNonRenameableField(t *testing.T) {
	p := ir.NewMemProgram()
	colorClass := p.AddClass("com.example.Color", true)
	colorType, _ := p.ClassType(colorClass)
	holderClass := p.AddClass("com.example.Holder", false)
	p.AddField(holderClass, colorType, false) // not renameable: a keep rule pins it.

	survived, err := Run(p, []ir.TypeId{colorType})
	require.NoError(t, err)
	require.Empty(t, survived)
}

func TestFieldPreFilterKeepsCandidateHeldByRenameableField(t *testing.T) {
	p := ir.NewMemProgram()
	colorClass := p.AddClass("com.example.Color", true)
	colorType, _ := p.ClassType(colorClass)
	holderClass := p.AddClass("com.example.Holder", false)
	p.AddField(holderClass, colorType, true)

	survived, err := Run(p, []ir.TypeId{colorType})
	require.NoError(t, err)
	require.ElementsMatch(t, []ir.TypeId{colorType}, survived)
}

func TestMethodPreFilterRejectsCandidateNamedByNonRenameableMethod(t *testing.T) {
	p := ir.NewMemProgram()
	colorClass := p.AddClass("com.example.Color", true)
	colorType, _ := p.ClassType(colorClass)
	clientClass := p.AddClass("com.example.Client", false)
	p.AddMethod(clientClass, "keepMe", colorType, nil, true).NotRenameable().Build()

	survived, err := Run(p, []ir.TypeId{colorType})
	require.NoError(t, err)
	require.Empty(t, survived)
}
