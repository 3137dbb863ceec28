package intrinsics_test

import (
	"testing"

	"github.com/dfranx/hlslparser/internal/intrinsics"
	"github.com/dfranx/hlslparser/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIntrinsic(t *testing.T) {
	assert.True(t, intrinsics.IsIntrinsic("abs"))
	assert.True(t, intrinsics.IsIntrinsic("mul"))
	assert.False(t, intrinsics.IsIntrinsic("not_a_builtin"))
}

func TestAbsHasFloatAndHalfVariantsPerWidth(t *testing.T) {
	overloads, ok := intrinsics.Lookup("abs")
	require.True(t, ok)
	assert.Len(t, overloads, 8) // 4 widths x 2 families

	found := map[types.BaseType]bool{}
	for _, o := range overloads {
		require.Len(t, o.Params, 1)
		assert.Equal(t, o.Params[0], o.Return)
		found[o.Params[0]] = true
	}
	assert.True(t, found[types.Float4])
	assert.True(t, found[types.Half4])
}

func TestDotReturnsScalarOfOperandFamily(t *testing.T) {
	overloads, ok := intrinsics.Lookup("dot")
	require.True(t, ok)
	for _, o := range overloads {
		if o.Params[0] == types.Float3 {
			assert.Equal(t, types.Float, o.Return)
		}
		if o.Params[0] == types.Half3 {
			assert.Equal(t, types.Half, o.Return)
		}
	}
}

func TestCrossOnlyDefinedForVec3(t *testing.T) {
	overloads, ok := intrinsics.Lookup("cross")
	require.True(t, ok)
	for _, o := range overloads {
		assert.Contains(t, []types.BaseType{types.Float3, types.Half3}, o.Params[0])
	}
}

func TestMulCoversVectorMatrixAndMatrixMatrix(t *testing.T) {
	overloads, ok := intrinsics.Lookup("mul")
	require.True(t, ok)

	var sawVecMat, sawMatVec, sawMatMat bool
	for _, o := range overloads {
		if o.Params[0] == types.Float4 && o.Params[1] == types.Float4x4 {
			sawVecMat = true
		}
		if o.Params[0] == types.Float4x4 && o.Params[1] == types.Float4 {
			sawMatVec = true
		}
		if o.Params[0] == types.Float4x4 && o.Params[1] == types.Float4x4 {
			sawMatMat = true
		}
	}
	assert.True(t, sawVecMat)
	assert.True(t, sawMatVec)
	assert.True(t, sawMatMat)
}

func TestMethodsNamedSpansSelfTypes(t *testing.T) {
	all := intrinsics.MethodsNamed("Sample")
	require.NotEmpty(t, all)

	for _, m := range all {
		assert.Equal(t, "Sample", m.Name)
	}

	var sawTexture2D bool
	for _, m := range all {
		if m.SelfType == types.Texture2DType {
			sawTexture2D = true
		}
	}
	assert.True(t, sawTexture2D)
}

func TestMethodsNamedUnknownReturnsEmpty(t *testing.T) {
	assert.Empty(t, intrinsics.MethodsNamed("NotAMethod"))
}
