// Package types describes SL's concrete type system: the fixed table of
// built-in scalar/vector/matrix/texture types, the conversion-rank
// algorithm used for implicit casts and overload resolution, and the
// binary-operator result-type lookup.
//
// The data here mirrors a hand-written table in the source compiler
// rather than anything derivable from the grammar, so it is kept in its
// own package instead of folded into lexer or parser.
package types

import "fmt"

// BaseType enumerates every concrete type recognized by the compiler.
// The numeric entries form one contiguous block, Float through Uint4,
// ending at numericCount.
type BaseType int32

const (
	Unknown BaseType = iota
	Void
	UserDefined
	Buffer

	Float
	Float2
	Float3
	Float4
	Float2x2
	Float3x3
	Float4x4
	Float4x3
	Float4x2

	Half
	Half2
	Half3
	Half4
	Half2x2
	Half3x3
	Half4x4
	Half4x3
	Half4x2

	Bool
	Bool2
	Bool3
	Bool4

	Int
	Int2
	Int3
	Int4

	Uint
	Uint2
	Uint3
	Uint4

	// numericCount marks the end of the numeric block; every BaseType
	// before it has an entry in the binary-op result table.
	numericCount
)

// The non-numeric (opaque) types start right after the numeric block.
const (
	texture1D BaseType = numericCount + iota
	texture2D
	texture3D
	textureCube
	textureCubeArray
	texture2DMS
	texture1DArray
	texture2DArray
	texture2DMSArray
	rwTexture1D
	rwTexture2D
	rwTexture3D
	samplerState

	typeCount
)

// Re-export the opaque types under their canonical public names. HLSL
// style capitalizes texture type names, so these mirror that rather
// than Go's usual exported-identifier casing rules for constants.
const (
	Texture1DType        = texture1D
	Texture2DType        = texture2D
	Texture3DType        = texture3D
	TextureCubeType      = textureCube
	TextureCubeArrayType = textureCubeArray
	Texture2DMSType      = texture2DMS
	Texture1DArrayType   = texture1DArray
	Texture2DArrayType   = texture2DArray
	Texture2DMSArrayType = texture2DMSArray
	RWTexture1DType      = rwTexture1D
	RWTexture2DType      = rwTexture2D
	RWTexture3DType      = rwTexture3D
	SamplerStateType     = samplerState
)

// NumericFamily groups base types that participate in implicit numeric
// conversion. NaN means "not a number" -- the type never converts.
type NumericFamily int8

const (
	NumericNaN NumericFamily = iota
	NumericFloat
	NumericHalf
	NumericBool
	NumericInt
	NumericUint

	numericFamilyCount
)

// Description holds the static facts about one BaseType needed by the
// type checker: its spelling, numeric family, component/dimension
// shape, and binary-op rank bucket.
type Description struct {
	Name          string
	Numeric       NumericFamily
	NumComponents int // vector/matrix column width; 1 for scalars
	NumDimensions int // 0 scalar, 1 vector, 2 matrix
	Height        int // matrix row count; 1 for scalar/vector
	BinaryOpRank  int // bucket used by the legacy comparison table, -1 if n/a
}

// descriptions is indexed by BaseType and mirrors the source compiler's
// per-type metadata table component-for-component, except the half2x2
// row (see DESIGN.md).
var descriptions = map[BaseType]Description{
	Unknown:     {"unknown type", NumericNaN, 0, 0, 0, -1},
	Void:        {"void", NumericNaN, 0, 0, 0, -1},
	UserDefined: {"user-defined type", NumericNaN, 0, 0, 0, -1},
	Buffer:      {"buffer", NumericNaN, 0, 0, 0, -1},

	Float:    {"float", NumericFloat, 1, 0, 1, 0},
	Float2:   {"float2", NumericFloat, 2, 1, 1, 0},
	Float3:   {"float3", NumericFloat, 3, 1, 1, 0},
	Float4:   {"float4", NumericFloat, 4, 1, 1, 0},
	Float2x2: {"float2x2", NumericFloat, 2, 2, 2, 0},
	Float3x3: {"float3x3", NumericFloat, 3, 2, 3, 0},
	Float4x4: {"float4x4", NumericFloat, 4, 2, 4, 0},
	Float4x3: {"float4x3", NumericFloat, 4, 2, 3, 0},
	Float4x2: {"float4x2", NumericFloat, 4, 2, 2, 0},

	Half:    {"half", NumericHalf, 1, 0, 1, 1},
	Half2:   {"half2", NumericHalf, 2, 1, 1, 1},
	Half3:   {"half3", NumericHalf, 3, 1, 1, 1},
	Half4:   {"half4", NumericHalf, 4, 1, 1, 1},
	Half2x2: {"half2x2", NumericHalf, 2, 2, 2, 1},
	Half3x3: {"half3x3", NumericHalf, 3, 2, 3, 1},
	Half4x4: {"half4x4", NumericHalf, 4, 2, 4, 1},
	Half4x3: {"half4x3", NumericHalf, 4, 2, 3, 1},
	Half4x2: {"half4x2", NumericHalf, 4, 2, 2, 1},

	Bool:  {"bool", NumericBool, 1, 0, 1, 4},
	Bool2: {"bool2", NumericBool, 2, 1, 1, 4},
	Bool3: {"bool3", NumericBool, 3, 1, 1, 4},
	Bool4: {"bool4", NumericBool, 4, 1, 1, 4},

	Int:  {"int", NumericInt, 1, 0, 1, 3},
	Int2: {"int2", NumericInt, 2, 1, 1, 3},
	Int3: {"int3", NumericInt, 3, 1, 1, 3},
	Int4: {"int4", NumericInt, 4, 1, 1, 3},

	Uint:  {"uint", NumericUint, 1, 0, 1, 2},
	Uint2: {"uint2", NumericUint, 2, 1, 1, 2},
	Uint3: {"uint3", NumericUint, 3, 1, 1, 2},
	Uint4: {"uint4", NumericUint, 4, 1, 1, 2},

	texture1D:        {"Texture1D", NumericNaN, 1, 0, 0, -1},
	texture2D:        {"Texture2D", NumericNaN, 1, 0, 0, -1},
	texture3D:        {"Texture3D", NumericNaN, 1, 0, 0, -1},
	textureCube:      {"TextureCube", NumericNaN, 1, 0, 0, -1},
	textureCubeArray: {"TextureCubeArray", NumericNaN, 1, 0, 0, -1},
	texture2DMS:      {"Texture2DMS", NumericNaN, 1, 0, 0, -1},
	texture1DArray:   {"Texture1DArray", NumericNaN, 1, 0, 0, -1},
	texture2DArray:   {"Texture2DArray", NumericNaN, 1, 0, 0, -1},
	texture2DMSArray: {"Texture2DMSArray", NumericNaN, 1, 0, 0, -1},
	rwTexture1D:      {"RWTexture1D", NumericNaN, 1, 0, 0, -1},
	rwTexture2D:      {"RWTexture2D", NumericNaN, 1, 0, 0, -1},
	rwTexture3D:      {"RWTexture3D", NumericNaN, 1, 0, 0, -1},
	samplerState:     {"SamplerState", NumericNaN, 1, 0, 0, -1},
}

// Describe returns the static Description for b. It panics for a
// BaseType outside the known table, which only happens on a compiler
// bug (an out-of-range value never reaches here through normal parsing).
func Describe(b BaseType) Description {
	d, ok := descriptions[b]
	if !ok {
		panic(fmt.Sprintf("types: no description for BaseType(%d)", int(b)))
	}
	return d
}

func (b BaseType) String() string {
	if d, ok := descriptions[b]; ok {
		return d.Name
	}
	return fmt.Sprintf("BaseType(%d)", int(b))
}

// IsNumeric reports whether b participates in the numeric conversion
// lattice (as opposed to being an opaque resource type or void).
func (b BaseType) IsNumeric() bool {
	d, ok := descriptions[b]
	return ok && d.Numeric != NumericNaN
}

// IsReadTexture reports whether b is one of the read-only Texture* types.
func IsReadTexture(b BaseType) bool {
	switch b {
	case texture1D, texture2D, texture3D, textureCube, textureCubeArray,
		texture2DMS, texture1DArray, texture2DArray, texture2DMSArray:
		return true
	}
	return false
}

// IsWriteTexture reports whether b is one of the RWTexture* types.
func IsWriteTexture(b BaseType) bool {
	switch b {
	case rwTexture1D, rwTexture2D, rwTexture3D:
		return true
	}
	return false
}

// numberTypeRank[src][dst] is the base conversion-family rank used by
// GetTypeCastRank, indexed by NumericFamily. 0 means identical family
// (still shifted by promotion/truncation bits by the caller); higher
// values mean a "farther" implicit conversion. Row/column order is
// Float, Half, Bool, Int, Uint -- the family ordering is meaningful and
// must not be changed without re-deriving every entry.
var numberTypeRank = [numericFamilyCount][numericFamilyCount]int{
	// unused NaN row/col kept so the matrix can be indexed directly by
	// NumericFamily without an off-by-one translation.
	NumericNaN: {},
	NumericFloat: {NumericNaN: 5, NumericFloat: 0, NumericHalf: 4, NumericBool: 4, NumericInt: 4, NumericUint: 4},
	NumericHalf:  {NumericNaN: 5, NumericFloat: 1, NumericHalf: 0, NumericBool: 4, NumericInt: 4, NumericUint: 4},
	NumericBool:  {NumericNaN: 5, NumericFloat: 5, NumericHalf: 5, NumericBool: 0, NumericInt: 5, NumericUint: 5},
	NumericInt:   {NumericNaN: 5, NumericFloat: 5, NumericHalf: 5, NumericBool: 4, NumericInt: 0, NumericUint: 3},
	NumericUint:  {NumericNaN: 5, NumericFloat: 5, NumericHalf: 5, NumericBool: 4, NumericInt: 2, NumericUint: 0},
}

// Cast rank result bits, matching the source compiler's comment:
// "Result bits: T R R R P (T = truncation, R = conversion rank, P =
// dimension promotion)".
const (
	castPromotionBit  = 1 << 0
	castTruncationBit = 1 << 4
)

// NoConversion is returned by CastRank when src cannot implicitly
// convert to dst.
const NoConversion = -1

// CastRank computes the implicit-conversion rank from src to dst,
// following the source compiler's GetTypeCastRank: lower is a closer
// match, NoConversion means the cast is illegal. UserDefined types
// (structs) are compared by name at the caller, since BaseType alone
// can't express "same struct" -- see UserCastRank.
func CastRank(src, dst BaseType) int {
	if src == dst {
		return 0
	}

	srcDesc, srcOK := descriptions[src]
	dstDesc, dstOK := descriptions[dst]
	if !srcOK || !dstOK || srcDesc.Numeric == NumericNaN || dstDesc.Numeric == NumericNaN {
		return NoConversion
	}

	result := numberTypeRank[srcDesc.Numeric][dstDesc.Numeric] << 1

	switch {
	case srcDesc.NumDimensions == 0 && dstDesc.NumDimensions > 0:
		result |= castPromotionBit
	case (srcDesc.NumDimensions == dstDesc.NumDimensions &&
		(srcDesc.NumComponents > dstDesc.NumComponents || srcDesc.Height > dstDesc.Height)) ||
		(srcDesc.NumDimensions > 0 && dstDesc.NumDimensions == 0):
		result |= castTruncationBit
	case srcDesc.NumDimensions != dstDesc.NumDimensions ||
		srcDesc.NumComponents != dstDesc.NumComponents ||
		srcDesc.Height != dstDesc.Height:
		return NoConversion
	}

	return result
}

// UserCastRank compares two user-defined (struct) type names, mirroring
// the strcmp branch GetTypeCastRank takes before ever consulting the
// BaseType tables.
func UserCastRank(srcName, dstName string) int {
	if srcName == dstName {
		return 0
	}
	return NoConversion
}

// binaryOpTypeLookup[a][b] is the result BaseType of a numeric binary
// operator applied to operands of base type a and b, keyed by the
// pair [2]BaseType{a, b} over the numeric types. Unknown marks a combination the legacy table refuses to
// resolve (e.g. two same-dimension matrices of different shape); the
// caller treats that as a type error.
var binaryOpTypeLookup = buildBinaryOpTypeLookup()

// numericOrder lists every numeric BaseType in the exact row/column
// order the source compiler's _binaryOpTypeLookup table uses.
var numericOrder = []BaseType{
	Float, Float2, Float3, Float4, Float2x2, Float3x3, Float4x4, Float4x3, Float4x2,
	Half, Half2, Half3, Half4, Half2x2, Half3x3, Half4x4, Half4x3, Half4x2,
	Bool, Bool2, Bool3, Bool4,
	Int, Int2, Int3, Int4,
	Uint, Uint2, Uint3, Uint4,
}

func buildBinaryOpTypeLookup() map[[2]BaseType]BaseType {
	// Each row below is one operand-A type; its 30 entries are the
	// result type paired with every operand-B type in numericOrder.
	// float/half rows promote vectors toward float; matrices combine
	// with scalars and with same-shape float or half matrices.
	F, F2, F3, F4 := Float, Float2, Float3, Float4
	F22, F33, F44, F43, F42 := Float2x2, Float3x3, Float4x4, Float4x3, Float4x2
	H, H2, H3, H4 := Half, Half2, Half3, Half4
	H22, H33, H44, H43, H42 := Half2x2, Half3x3, Half4x4, Half4x3, Half4x2
	I, I2, I3, I4 := Int, Int2, Int3, Int4
	U, U2, U3, U4 := Uint, Uint2, Uint3, Uint4
	U_ := Unknown

	rows := [][]BaseType{
		// float
		{F, F2, F3, F4, F22, F33, F44, F43, F42,
			F, F2, F3, F4, F22, F33, F44, F43, F42,
			F, F2, F3, F4,
			F, F2, F3, F4,
			F, F2, F3, F4},
		// float2
		{F2, F2, F2, F2, U_, U_, U_, U_, U_,
			F2, F2, F2, F2, U_, U_, U_, U_, U_,
			F2, F2, F2, F2,
			F2, F2, F2, F2,
			F2, F2, F2, F2},
		// float3
		{F3, F2, F3, F3, U_, U_, U_, U_, U_,
			F3, F2, F3, F3, U_, U_, U_, U_, U_,
			F3, F2, F3, F3,
			F3, F2, F3, F3,
			F3, F2, F3, F3},
		// float4
		{F4, F2, F3, F4, U_, U_, U_, U_, U_,
			F4, F2, F3, F4, U_, U_, U_, U_, U_,
			F4, F2, F3, F4,
			F4, F2, F3, F4,
			F4, F2, F3, F4},
		// float2x2
		{F22, U_, U_, U_, F22, U_, U_, U_, U_,
			F22, U_, U_, U_, F22, U_, U_, U_, U_,
			F22, U_, U_, U_,
			F22, U_, U_, U_,
			F22, U_, U_, U_},
		// float3x3
		{F33, U_, U_, U_, U_, F33, U_, U_, U_,
			F33, U_, U_, U_, U_, F33, U_, U_, U_,
			F33, U_, U_, U_,
			F33, U_, U_, U_,
			F33, U_, U_, U_},
		// float4x4
		{F44, U_, U_, U_, U_, U_, F44, U_, U_,
			F44, U_, U_, U_, U_, U_, F44, U_, U_,
			F44, U_, U_, U_,
			F44, U_, U_, U_,
			F44, U_, U_, U_},
		// float4x3
		{F43, U_, U_, U_, U_, U_, U_, F43, U_,
			F43, U_, U_, U_, U_, U_, U_, F43, U_,
			F43, U_, U_, U_,
			F43, U_, U_, U_,
			F43, U_, U_, U_},
		// float4x2
		{F42, U_, U_, U_, U_, U_, U_, U_, F42,
			F42, U_, U_, U_, U_, U_, U_, U_, F42,
			F42, U_, U_, U_,
			F42, U_, U_, U_,
			F42, U_, U_, U_},
		// half
		{F, F2, F3, F4, F22, F33, F44, F43, F42,
			H, H2, H3, H4, H22, H33, H44, H43, H42,
			H, H2, H3, H4,
			H, H2, H3, H4,
			H, H2, H3, H4},
		// half2
		{F2, F2, F2, F2, U_, U_, U_, U_, U_,
			H2, H2, H2, H2, U_, U_, U_, U_, U_,
			H2, H2, H2, H2,
			H2, H2, H2, H2,
			H2, H2, H2, H2},
		// half3
		{F3, F2, F3, F3, U_, U_, U_, U_, U_,
			H3, H2, H3, H3, U_, U_, U_, U_, U_,
			H3, H2, H3, H3,
			H3, H2, H3, H3,
			H3, H2, H3, H3},
		// half4
		{F4, F2, F3, F4, U_, U_, U_, U_, U_,
			H4, H2, H3, H4, U_, U_, U_, U_, U_,
			H4, H2, H3, H4,
			H4, H2, H3, H4,
			H4, H2, H3, H4},
		// half2x2
		{F22, U_, U_, U_, F22, U_, U_, U_, U_,
			H22, U_, U_, U_, H22, U_, U_, U_, U_,
			H22, U_, U_, U_,
			H22, U_, U_, U_,
			H22, U_, U_, U_},
		// half3x3
		{F33, U_, U_, U_, U_, F33, U_, U_, U_,
			H33, U_, U_, U_, U_, H33, U_, U_, U_,
			H33, U_, U_, U_,
			H33, U_, U_, U_,
			H33, U_, U_, U_},
		// half4x4
		{F44, U_, U_, U_, U_, U_, F44, U_, U_,
			H44, U_, U_, U_, U_, U_, H44, U_, U_,
			H44, U_, U_, U_,
			H44, U_, U_, U_,
			H44, U_, U_, U_},
		// half4x3
		{F43, U_, U_, U_, U_, U_, U_, F43, U_,
			H43, U_, U_, U_, U_, U_, U_, H43, U_,
			H43, U_, U_, U_,
			H43, U_, U_, U_,
			H43, U_, U_, U_},
		// half4x2
		{F42, U_, U_, U_, U_, U_, U_, U_, F42,
			H42, U_, U_, U_, U_, U_, U_, U_, H42,
			H42, U_, U_, U_,
			H42, U_, U_, U_,
			H42, U_, U_, U_},
		// bool
		{F, F2, F3, F4, F22, F33, F44, F43, F42,
			H, H2, H3, H4, H22, H33, H44, H43, H42,
			I, I2, I3, I4,
			I, I2, I3, I4,
			U, U2, U3, U4},
		// bool2
		{F2, F2, F3, F4, F22, F33, F44, F43, F42,
			H2, H2, H3, H4, H22, H33, H44, H43, H42,
			I2, I2, I3, I4,
			I2, I2, I3, I4,
			U2, U2, U3, U4},
		// bool3
		{F3, F3, F3, F4, F22, F33, F44, F43, F42,
			H3, H3, H3, H4, H22, H33, H44, H43, H42,
			I3, I2, I3, I4,
			I3, I2, I3, I4,
			U3, U2, U3, U4},
		// bool4
		{F4, F4, F4, F4, F22, F33, F44, F43, F42,
			H4, H4, H4, H4, H22, H33, H44, H43, H42,
			I4, I2, I3, I4,
			I4, I2, I3, I4,
			U4, U2, U3, U4},
		// int
		{F, F2, F3, F4, F22, F33, F44, F43, F42,
			H, H2, H3, H4, H22, H33, H44, H43, H42,
			I, I2, I3, I4,
			I, I2, I3, I4,
			U, U2, U3, U4},
		// int2
		{F2, F2, F3, F4, F22, F33, F44, F43, F42,
			H2, H2, H3, H4, H22, H33, H44, H43, H42,
			I2, I2, I3, I4,
			I2, I2, I3, I4,
			U2, U2, U3, U4},
		// int3
		{F3, F3, F3, F4, F22, F33, F44, F43, F42,
			H3, H3, H3, H4, H22, H33, H44, H43, H42,
			I3, I2, I3, I4,
			I3, I2, I3, I4,
			U3, U2, U3, U4},
		// int4
		{F4, F4, F4, F4, F22, F33, F44, F43, F42,
			H4, H4, H4, H4, H22, H33, H44, H43, H42,
			I4, I2, I3, I4,
			I4, I2, I3, I4,
			U4, U2, U3, U4},
		// uint
		{F, F2, F3, F4, F22, F33, F44, F43, F42,
			H, H2, H3, H4, H22, H33, H44, H43, H42,
			U, U2, U3, U4,
			U, U2, U3, U4,
			U, U2, U3, U4},
		// uint2
		{F2, F2, F3, F4, F22, F33, F44, F43, F42,
			H2, H2, H3, H4, H22, H33, H44, H43, H42,
			U2, U2, U3, U4,
			U2, U2, U3, U4,
			U2, U2, U3, U4},
		// uint3
		{F3, F3, F3, F4, F22, F33, F44, F43, F42,
			H3, H3, H3, H4, H22, H33, H44, H43, H42,
			U3, U2, U3, U4,
			U3, U2, U3, U4,
			U3, U2, U3, U4},
		// uint4
		{F4, F4, F4, F4, F22, F33, F44, F43, F42,
			H4, H4, H4, H4, H22, H33, H44, H43, H42,
			U4, U2, U3, U4,
			U4, U2, U3, U4,
			U4, U2, U3, U4},
	}

	lookup := make(map[[2]BaseType]BaseType, len(numericOrder)*len(numericOrder))
	for i, a := range numericOrder {
		row := rows[i]
		for j, b := range numericOrder {
			lookup[[2]BaseType{a, b}] = row[j]
		}
	}
	return lookup
}

// BinaryOp enumerates the binary operators. BinaryOpResultType
// restricts the bitwise family (see isBitwise) to integer operands.
type BinaryOp int8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpLeftShift
	OpRightShift
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpEqual
	OpNotEqual
	OpAnd
	OpOr

	// OpAssign marks a plain `=` parsed at the assignment-expression
	// level; it carries no arithmetic meaning and never reaches
	// BinaryOpResultType (the compound-assign validation path in
	// internal/parser skips it), unlike every other BinaryOp here.
	OpAssign
)

func isBitwise(op BinaryOp) bool {
	switch op {
	case OpBitAnd, OpBitOr, OpBitXor, OpLeftShift, OpRightShift:
		return true
	}
	return false
}

func isComparison(op BinaryOp) bool {
	switch op {
	case OpLess, OpGreater, OpLessEqual, OpGreaterEqual, OpEqual, OpNotEqual, OpAnd, OpOr:
		return true
	}
	return false
}

// BinaryOpResultType computes the result BaseType of applying op to
// operands of type a and b, mirroring GetBinaryOpResultType: bitwise
// operators reject non-integer operands outright, comparison/logical
// operators resolve the arithmetic combination first and then collapse
// it to the matching bool vector width.
func BinaryOpResultType(op BinaryOp, a, b BaseType) (BaseType, bool) {
	if isBitwise(op) {
		da, aok := descriptions[a]
		db, bok := descriptions[b]
		if !aok || !bok || (da.Numeric != NumericInt && da.Numeric != NumericUint) ||
			(db.Numeric != NumericInt && db.Numeric != NumericUint) {
			return Unknown, false
		}
	}

	result, ok := binaryOpTypeLookup[[2]BaseType{a, b}]
	if !ok || result == Unknown {
		return Unknown, false
	}

	if isComparison(op) {
		d, ok := descriptions[result]
		if !ok {
			return Unknown, false
		}
		switch d.NumComponents {
		case 1:
			return Bool, true
		case 2:
			return Bool2, true
		case 3:
			return Bool3, true
		case 4:
			return Bool4, true
		}
		return Unknown, false
	}

	return result, true
}

// ImageFormatElement describes the element type and component count
// implied by a write-texture's <ImageFormat> argument, used to infer
// the texture's SamplerType (see Type.SamplerType).
type ImageFormatElement struct {
	Numeric       NumericFamily
	NumComponents int
}

// imageFormats lists every <ImageFormat> name the write-texture
// grammar accepts, in declaration order, paired with the element type
// a value read back from that format would have.
var imageFormats = []struct {
	Name string
	ImageFormatElement
}{
	{"RGBA32F", ImageFormatElement{NumericFloat, 4}},
	{"RGBA16F", ImageFormatElement{NumericFloat, 4}},
	{"RG32F", ImageFormatElement{NumericFloat, 2}},
	{"RG16F", ImageFormatElement{NumericFloat, 2}},
	{"R11G11B10F", ImageFormatElement{NumericFloat, 3}},
	{"R32F", ImageFormatElement{NumericFloat, 1}},
	{"R16F", ImageFormatElement{NumericFloat, 1}},
	{"RGBA16Un", ImageFormatElement{NumericFloat, 4}},
	{"RGB10A2Un", ImageFormatElement{NumericFloat, 4}},
	{"RGBA8Un", ImageFormatElement{NumericFloat, 4}},
	{"RG16Un", ImageFormatElement{NumericFloat, 2}},
	{"RG8Un", ImageFormatElement{NumericFloat, 2}},
	{"R16Un", ImageFormatElement{NumericFloat, 1}},
	{"R8Un", ImageFormatElement{NumericFloat, 1}},
	{"RGBA16Sn", ImageFormatElement{NumericFloat, 4}},
	{"RGBA8Sn", ImageFormatElement{NumericFloat, 4}},
	{"RG16Sn", ImageFormatElement{NumericFloat, 2}},
	{"RG8Sn", ImageFormatElement{NumericFloat, 2}},
	{"R16Sn", ImageFormatElement{NumericFloat, 1}},
	{"R8Sn", ImageFormatElement{NumericFloat, 1}},
	{"RGBA32I", ImageFormatElement{NumericInt, 4}},
	{"RGBA16I", ImageFormatElement{NumericInt, 4}},
	{"RGBA8I", ImageFormatElement{NumericInt, 4}},
	{"RG32I", ImageFormatElement{NumericInt, 2}},
	{"RG16I", ImageFormatElement{NumericInt, 2}},
	{"RG8I", ImageFormatElement{NumericInt, 2}},
	{"R32I", ImageFormatElement{NumericInt, 1}},
	{"R16I", ImageFormatElement{NumericInt, 1}},
	{"R8I", ImageFormatElement{NumericInt, 1}},
	{"RGBA32UI", ImageFormatElement{NumericUint, 4}},
	{"RGBA16UI", ImageFormatElement{NumericUint, 4}},
	{"RGB10A2UI", ImageFormatElement{NumericUint, 4}},
	{"RGBA8UI", ImageFormatElement{NumericUint, 4}},
	{"RG32UI", ImageFormatElement{NumericUint, 2}},
	{"RG16UI", ImageFormatElement{NumericUint, 2}},
	{"RG8UI", ImageFormatElement{NumericUint, 2}},
	{"R32UI", ImageFormatElement{NumericUint, 1}},
	{"R16UI", ImageFormatElement{NumericUint, 1}},
	{"R8UI", ImageFormatElement{NumericUint, 1}},
}

// ImageFormatByName looks up the element shape of a named image
// format, used when parsing RWTexture*<Format> so the write texture's
// implied sampler type can be matched against one of the numeric
// vector BaseTypes via ElementBaseType.
func ImageFormatByName(name string) (ImageFormatElement, bool) {
	for _, f := range imageFormats {
		if f.Name == name {
			return f.ImageFormatElement, true
		}
	}
	return ImageFormatElement{}, false
}

// ElementBaseType finds the scalar/vector BaseType whose numeric family
// and component count match elem, e.g. for inferring the sampler type
// implied by a write texture's image format.
func ElementBaseType(elem ImageFormatElement) (BaseType, bool) {
	for b, d := range descriptions {
		if d.Numeric == elem.Numeric && d.NumComponents == elem.NumComponents && d.NumDimensions <= 1 {
			return b, true
		}
	}
	return Unknown, false
}

// Handle is a generic uint32 arena index. It is defined here, not in
// package ast, because Type.ArraySize needs to reference an AST
// expression node and ast needs to import types (every node carries a
// Type) -- putting the shared handle type in the lower package breaks
// the cycle. Package ast re-exports this as ast.Handle.
type Handle uint32

// InvalidHandle is the zero Handle, reserved to mean "no node".
const InvalidHandle Handle = 0

// Valid reports whether h refers to a real arena slot.
func (h Handle) Valid() bool { return h != InvalidHandle }

// Flags is the TypeFlags bitset from storage-class and interpolation
// modifiers consumed by the type parser.
type Flags uint16

const (
	FlagConst Flags = 1 << iota
	FlagStatic
	FlagLinear
	FlagCentroid
	FlagNoInterpolation
	FlagNoPerspective
	FlagSample
)

// ImageFormat names the write-texture element format keyword by its
// 0-based position in the RGBA32F..R8UI list, or ImageFormatNone when
// the type isn't a write texture.
type ImageFormat int16

const ImageFormatNone ImageFormat = -1

// Type is a fully resolved SL type: a BaseType plus the extra data
// needed for user-defined types, arrays, and texture sampler/image
// parameters. This mirrors HLSLType from the source compiler.
type Type struct {
	Base        BaseType
	TypeName    string // populated when Base is UserDefined or Buffer
	Array       bool
	ArraySize   Handle // expression node giving the array length; InvalidHandle if unsized
	Flags       Flags
	SamplerType BaseType    // element type parameter for texture types
	ImageFormat ImageFormat // write-texture <ImageFormat>, or ImageFormatNone
	SampleCount uint8       // multisampled read-texture count, 0 if not MS
}

// IsConst reports whether the type carries the const flag, used by
// binary-op result typing ("const iff both operands were const").
func (t Type) IsConst() bool { return t.Flags&FlagConst != 0 }

// Equal reports structural equality sufficient for function-signature
// matching (ignores array size expression identity, only its presence).
func (t Type) Equal(other Type) bool {
	if t.Base != other.Base || t.Array != other.Array {
		return false
	}
	if t.Base == UserDefined || t.Base == Buffer {
		return t.TypeName == other.TypeName
	}
	if IsReadTexture(t.Base) || IsWriteTexture(t.Base) {
		return t.SamplerType == other.SamplerType
	}
	return true
}
