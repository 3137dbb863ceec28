// Package intrinsics holds the static table of built-in functions and
// texture methods consulted during overload resolution. Every numeric
// intrinsic is generated once per vector width and per numeric family
// (Float and Half) so overload resolution can pick a precise width,
// matching the source compiler's macro-generated intrinsic list.
package intrinsics

import "github.com/dfranx/hlslparser/internal/types"

// Overload is one candidate signature for a named intrinsic.
type Overload struct {
	Params []types.BaseType
	Return types.BaseType
}

// Intrinsic is every overload sharing a name.
type Intrinsic struct {
	Name     string
	Overloads []Overload
}

var table = map[string][]Overload{}

// floatFamily lists the two vectorizable families the source compiler
// generates intrinsic variants over.
var floatFamily = []struct {
	Scalar, Vec2, Vec3, Vec4 types.BaseType
}{
	{types.Float, types.Float2, types.Float3, types.Float4},
	{types.Half, types.Half2, types.Half3, types.Half4},
}

func widths(f struct{ Scalar, Vec2, Vec3, Vec4 types.BaseType }) []types.BaseType {
	return []types.BaseType{f.Scalar, f.Vec2, f.Vec3, f.Vec4}
}

// register adds the given arity-N signature (same type repeated for
// every parameter, returning that same type) for every vector width of
// every numeric family in floatFamily.
func register(name string, arity int) {
	for _, fam := range floatFamily {
		for _, t := range widths(fam) {
			params := make([]types.BaseType, arity)
			for i := range params {
				params[i] = t
			}
			table[name] = append(table[name], Overload{Params: params, Return: t})
		}
	}
}

// registerReturning is like register but the return type is fixed
// rather than matching the parameter width (e.g. dot's scalar result,
// any's bool result).
func registerReturning(name string, arity int, ret func(elem types.BaseType) types.BaseType) {
	for _, fam := range floatFamily {
		for _, t := range widths(fam) {
			params := make([]types.BaseType, arity)
			for i := range params {
				params[i] = t
			}
			table[name] = append(table[name], Overload{Params: params, Return: ret(t)})
		}
	}
}

func scalarOf(t types.BaseType) types.BaseType {
	switch {
	case t == types.Float || t == types.Float2 || t == types.Float3 || t == types.Float4:
		return types.Float
	case t == types.Half || t == types.Half2 || t == types.Half3 || t == types.Half4:
		return types.Half
	}
	return types.Unknown
}

func boolOf(t types.BaseType) types.BaseType {
	switch t {
	case types.Float, types.Half:
		return types.Bool
	case types.Float2, types.Half2:
		return types.Bool2
	case types.Float3, types.Half3:
		return types.Bool3
	case types.Float4, types.Half4:
		return types.Bool4
	}
	return types.Unknown
}

func init() {
	// Unary elementwise math: float/half, all widths.
	for _, name := range []string{
		"abs", "acos", "asin", "atan", "cos", "sin", "tan", "floor", "ceil",
		"frac", "sqrt", "rsqrt", "rcp", "exp", "exp2", "log", "log2",
		"ddx", "ddy", "sign", "normalize", "saturate",
	} {
		register(name, 1)
	}

	// Binary elementwise math.
	for _, name := range []string{"atan2", "fmod", "max", "min", "pow", "reflect", "step"} {
		register(name, 2)
	}

	// Ternary elementwise math.
	for _, name := range []string{"clamp", "lerp", "smoothstep", "mad"} {
		register(name, 3)
	}

	// Reductions to scalar (same family, width 1 scalar result).
	registerReturning("length", 1, scalarOf)
	registerReturning("dot", 2, scalarOf)

	// Predicates to bool.
	registerReturning("any", 1, boolOf)
	registerReturning("isnan", 1, boolOf)
	registerReturning("isinf", 1, boolOf)

	// cross is defined only for 3-component vectors.
	for _, fam := range floatFamily {
		v3 := fam.Vec3
		table["cross"] = append(table["cross"], Overload{Params: []types.BaseType{v3, v3}, Return: v3})
	}

	// clip takes one float/half operand of any width and returns void.
	for _, fam := range floatFamily {
		for _, t := range widths(fam) {
			table["clip"] = append(table["clip"], Overload{Params: []types.BaseType{t}, Return: types.Void})
		}
	}

	// transpose: matrix -> its transpose (square matrices only modeled
	// here; non-square transposes are left to the backend per spec).
	table["transpose"] = []Overload{
		{Params: []types.BaseType{types.Float2x2}, Return: types.Float2x2},
		{Params: []types.BaseType{types.Float3x3}, Return: types.Float3x3},
		{Params: []types.BaseType{types.Float4x4}, Return: types.Float4x4},
	}

	// mul covers vector*matrix, matrix*vector, and matrix*matrix forms
	// for same-family square matrices.
	registerMul()

	// asuint/asint/asfloat reinterpret bits without conversion.
	table["asuint"] = []Overload{
		{Params: []types.BaseType{types.Float}, Return: types.Uint},
		{Params: []types.BaseType{types.Int}, Return: types.Uint},
	}
	table["asint"] = []Overload{
		{Params: []types.BaseType{types.Float}, Return: types.Int},
		{Params: []types.BaseType{types.Uint}, Return: types.Int},
	}
	table["asfloat"] = []Overload{
		{Params: []types.BaseType{types.Int}, Return: types.Float},
		{Params: []types.BaseType{types.Uint}, Return: types.Float},
	}

	// sincos writes both results through out-parameters; modeled here
	// as taking the angle and two out-params of the same width, void
	// return, since SL has no tuple-return.
	for _, fam := range floatFamily {
		for _, t := range widths(fam) {
			table["sincos"] = append(table["sincos"], Overload{Params: []types.BaseType{t, t, t}, Return: types.Void})
		}
	}

	// tex2Dcmp is a legacy-style texture comparison sample: (sampler,
	// float3 holding uv and compare value) -> float. Modeled narrowly since SL's modern path
	// is the Texture2D.Sample family in the method table below.
	table["tex2Dcmp"] = []Overload{
		{Params: []types.BaseType{types.SamplerStateType, types.Float3}, Return: types.Float},
	}
}

func registerMul() {
	pairs := []struct {
		Vec, Mat types.BaseType
	}{
		{types.Float2, types.Float2x2},
		{types.Float3, types.Float3x3},
		{types.Float4, types.Float4x4},
	}
	for _, p := range pairs {
		table["mul"] = append(table["mul"],
			Overload{Params: []types.BaseType{p.Vec, p.Mat}, Return: p.Vec},
			Overload{Params: []types.BaseType{p.Mat, p.Vec}, Return: p.Vec},
			Overload{Params: []types.BaseType{p.Mat, p.Mat}, Return: p.Mat},
		)
	}
}

// Lookup returns every overload registered for name.
func Lookup(name string) ([]Overload, bool) {
	o, ok := table[name]
	return o, ok
}

// IsIntrinsic reports whether name names a built-in function (as
// opposed to a user-declared one).
func IsIntrinsic(name string) bool {
	_, ok := table[name]
	return ok
}

// Method is a texture method signature (Sample, SampleLod, ...). The
// first hidden parameter described in spec.md §4.5 (the method's
// return-element family) is represented by ReturnFamily; the second
// (the owning texture's base type, used as the self-type filter) is
// SelfType.
type Method struct {
	Name       string
	SelfType   types.BaseType
	ReturnFamily types.NumericFamily
	Params     []types.BaseType
}

var methods []Method

func init() {
	textureTypes := []types.BaseType{
		types.Texture1DType, types.Texture2DType, types.Texture3DType,
		types.TextureCubeType, types.TextureCubeArrayType, types.Texture2DMSType,
		types.Texture1DArrayType, types.Texture2DArrayType, types.Texture2DMSArrayType,
	}
	for _, tex := range textureTypes {
		methods = append(methods,
			Method{Name: "Sample", SelfType: tex, ReturnFamily: types.NumericFloat,
				Params: []types.BaseType{types.SamplerStateType, types.Float2}},
			Method{Name: "SampleLod", SelfType: tex, ReturnFamily: types.NumericFloat,
				Params: []types.BaseType{types.SamplerStateType, types.Float2, types.Float}},
			Method{Name: "SampleLodOffset", SelfType: tex, ReturnFamily: types.NumericFloat,
				Params: []types.BaseType{types.SamplerStateType, types.Float2, types.Float, types.Int2}},
			Method{Name: "Gather", SelfType: tex, ReturnFamily: types.NumericFloat,
				Params: []types.BaseType{types.SamplerStateType, types.Float2}},
		)
	}
}

// MethodsNamed returns every registered method signature with the
// given name, across every texture self-type, for the caller
// (typically the parser's parseMethodCall) to filter by the calling
// object's actual base type.
func MethodsNamed(name string) []Method {
	var out []Method
	for _, m := range methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}
