package types_test

import (
	"testing"

	"github.com/dfranx/hlslparser/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCastRankIdentity(t *testing.T) {
	assert.Equal(t, 0, types.CastRank(types.Float, types.Float))
	assert.Equal(t, 0, types.CastRank(types.Float4, types.Float4))
}

func TestCastRankScalarPromotion(t *testing.T) {
	rank := types.CastRank(types.Float, types.Float4)
	assert.NotEqual(t, types.NoConversion, rank)
	assert.Equal(t, 1, rank&1) // promotion bit set
}

func TestCastRankTruncation(t *testing.T) {
	rank := types.CastRank(types.Float4, types.Float)
	assert.NotEqual(t, types.NoConversion, rank)
	assert.Equal(t, 1<<4, rank&(1<<4))
}

func TestCastRankDimensionMismatchWithoutPromotionFails(t *testing.T) {
	assert.Equal(t, types.NoConversion, types.CastRank(types.Float2, types.Float3))
}

func TestCastRankHalfToFloatCheaperThanFloatToHalf(t *testing.T) {
	halfToFloat := types.CastRank(types.Half, types.Float)
	floatToHalf := types.CastRank(types.Float, types.Half)
	assert.Less(t, halfToFloat, floatToHalf)
}

func TestCastRankUintToIntCheaperThanIntToUint(t *testing.T) {
	uintToInt := types.CastRank(types.Uint, types.Int)
	intToUint := types.CastRank(types.Int, types.Uint)
	assert.Less(t, uintToInt, intToUint)
}

func TestCastRankOpaqueTypesNeverConvert(t *testing.T) {
	assert.Equal(t, types.NoConversion, types.CastRank(types.Texture2DType, types.Float4))
}

func TestUserCastRank(t *testing.T) {
	assert.Equal(t, 0, types.UserCastRank("Light", "Light"))
	assert.Equal(t, types.NoConversion, types.UserCastRank("Light", "Camera"))
}

func TestBinaryOpResultTypeScalarTimesMatrix(t *testing.T) {
	result, ok := types.BinaryOpResultType(types.OpMul, types.Float, types.Float4x4)
	assert.True(t, ok)
	assert.Equal(t, types.Float4x4, result)
}

func TestBinaryOpResultTypeVectorTimesMatrixIsUnresolved(t *testing.T) {
	_, ok := types.BinaryOpResultType(types.OpMul, types.Float4, types.Float4x4)
	assert.False(t, ok)
}

func TestBinaryOpResultTypeMismatchedMatricesUnknown(t *testing.T) {
	_, ok := types.BinaryOpResultType(types.OpAdd, types.Float2x2, types.Float3x3)
	assert.False(t, ok)
}

func TestBinaryOpResultTypeBitwiseRejectsFloat(t *testing.T) {
	_, ok := types.BinaryOpResultType(types.OpBitAnd, types.Float, types.Int)
	assert.False(t, ok)
}

func TestBinaryOpResultTypeBitwiseAcceptsIntegers(t *testing.T) {
	result, ok := types.BinaryOpResultType(types.OpBitAnd, types.Int, types.Int)
	assert.True(t, ok)
	assert.Equal(t, types.Int, result)
}

func TestBinaryOpResultTypeComparisonCollapsesToBoolVector(t *testing.T) {
	result, ok := types.BinaryOpResultType(types.OpLess, types.Int3, types.Int3)
	assert.True(t, ok)
	assert.Equal(t, types.Bool3, result)
}

func TestImageFormatByName(t *testing.T) {
	elem, ok := types.ImageFormatByName("RGBA32F")
	assert.True(t, ok)
	assert.Equal(t, types.NumericFloat, elem.Numeric)
	assert.Equal(t, 4, elem.NumComponents)

	_, ok = types.ImageFormatByName("NotAFormat")
	assert.False(t, ok)
}

func TestElementBaseTypeFromImageFormat(t *testing.T) {
	elem, _ := types.ImageFormatByName("R32UI")
	base, ok := types.ElementBaseType(elem)
	assert.True(t, ok)
	assert.Equal(t, types.Uint, base)
}

func TestDescribeKnownsHaveSpellings(t *testing.T) {
	assert.Equal(t, "float4x4", types.Describe(types.Float4x4).Name)
	assert.Equal(t, "SamplerState", types.Describe(types.SamplerStateType).Name)
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, types.Float4.IsNumeric())
	assert.False(t, types.Texture2DType.IsNumeric())
	assert.False(t, types.Void.IsNumeric())
}
