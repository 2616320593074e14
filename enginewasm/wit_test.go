package enginewasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

func TestParseWitShared(t *testing.T) {
	sigs, err := parseWitFunctions(witShared)
	require.NoError(t, err)

	for name, arity := range map[string]int{
		expCompile:     2,
		expCheckStatus: 1,
		expDefineRegs:  1,
		expRun:         3,
		expFinalize:    1,
	} {
		sig, ok := sigs[name]
		require.True(t, ok, "missing %s", name)
		assert.Len(t, sig.params, arity, name)
	}

	assert.Empty(t, sigs[expFinalize].results)
	assert.Empty(t, sigs[expRun].results)
}

func TestParseWitDiscrete(t *testing.T) {
	sigs, err := parseWitFunctions(witDiscrete)
	require.NoError(t, err)

	run, ok := sigs[expRun]
	require.True(t, ok)
	require.Len(t, run.params, 8)
	require.Len(t, run.results, 1)

	// Everything is a pointer or count except the trailing time value.
	for i := 0; i < 7; i++ {
		assert.Equal(t, api.ValueTypeI32, coreType(run.params[i]), "param %d", i)
	}
	assert.Equal(t, api.ValueTypeF64, coreType(run.params[7]))
}

func TestParseWitRejectsEmpty(t *testing.T) {
	_, err := parseWitFunctions("just a comment, no functions")
	require.Error(t, err)
}

func TestCoreTypeFlattening(t *testing.T) {
	assert.Equal(t, api.ValueTypeI32, coreType(wit.S32{}))
	assert.Equal(t, api.ValueTypeI32, coreType(wit.U32{}))
	assert.Equal(t, api.ValueTypeI64, coreType(wit.S64{}))
	assert.Equal(t, api.ValueTypeF32, coreType(wit.F32{}))
	assert.Equal(t, api.ValueTypeF64, coreType(wit.F64{}))
}
