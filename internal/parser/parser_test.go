package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfranx/hlslparser/internal/ast"
	"github.com/dfranx/hlslparser/internal/parser"
	"github.com/dfranx/hlslparser/internal/types"
)

func parse(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, err := parser.Parse(src, "test.sl", parser.Options{}, nil)
	require.NoError(t, err)
	require.NotNil(t, mod)
	return mod
}

func TestParseStructAndFunction(t *testing.T) {
	src := `
struct VSInput {
	float3 position;
	float2 uv;
};

float4 mainVS(VSInput input) {
	float4 pos = float4(input.position, 1.0);
	return pos;
}
`
	mod := parse(t, src)
	assert.Greater(t, mod.Arena.StmtCount(), 0)

	cur := mod.FirstDeclaration
	require.True(t, cur.Valid())
	st := mod.Arena.Stmt(cur)
	assert.Equal(t, ast.StmtStruct, st.StmtKind())

	cur = st.Next
	require.True(t, cur.Valid())
	fn := mod.Arena.Stmt(cur)
	assert.Equal(t, ast.StmtFunction, fn.StmtKind())
	fnData := fn.Data.(ast.Function)
	assert.Equal(t, "mainVS", fnData.Name)
	assert.True(t, fnData.Body.Valid())
}

func TestConstructorExpressionType(t *testing.T) {
	src := `
float4 makeColor() {
	float4 c = float4(1.0, 0.0, 0.0, 1.0);
	return c;
}
`
	mod := parse(t, src)
	fn := mod.Arena.Stmt(mod.FirstDeclaration).Data.(ast.Function)
	body := mod.Arena.Stmt(fn.Body).Data.(ast.Block)
	decl := mod.Arena.Stmt(body.FirstStatement).Data.(ast.Declaration)
	assert.Equal(t, types.Float4, decl.Type.Base)

	initExpr := mod.Arena.Expr(decl.Init)
	assert.Equal(t, ast.ExprConstructor, initExpr.Kind())
	assert.Equal(t, types.Float4, initExpr.Type.Base)
}

func TestBinaryExpressionTypeInference(t *testing.T) {
	src := `
float combine(float a, float b) {
	return a * b + 1.0;
}
`
	mod := parse(t, src)
	fn := mod.Arena.Stmt(mod.FirstDeclaration).Data.(ast.Function)
	body := mod.Arena.Stmt(fn.Body).Data.(ast.Block)
	ret := mod.Arena.Stmt(body.FirstStatement).Data.(ast.Return)
	expr := mod.Arena.Expr(ret.Expr)
	assert.Equal(t, types.Float, expr.Type.Base)
}

func TestSwizzleType(t *testing.T) {
	src := `
float3 swizzled(float4 v) {
	return v.xyz;
}
`
	mod := parse(t, src)
	fn := mod.Arena.Stmt(mod.FirstDeclaration).Data.(ast.Function)
	body := mod.Arena.Stmt(fn.Body).Data.(ast.Block)
	ret := mod.Arena.Stmt(body.FirstStatement).Data.(ast.Return)
	expr := mod.Arena.Expr(ret.Expr)
	assert.Equal(t, types.Float3, expr.Type.Base)
	member := expr.Data.(ast.MemberAccess)
	assert.Equal(t, []int{0, 1, 2}, member.Swizzle)
}

func TestIfForAndIntrinsicCall(t *testing.T) {
	src := `
float loopSum(float4 v) {
	float total = 0.0;
	for (int i = 0; i < 4; i++) {
		if (v.x > 0.0) {
			total = total + dot(v, v);
		}
	}
	return total;
}
`
	mod := parse(t, src)
	assert.Greater(t, mod.Arena.StmtCount(), 0)
}

func TestCastExpression(t *testing.T) {
	src := `
int truncate(float f) {
	return (int)f;
}
`
	mod := parse(t, src)
	fn := mod.Arena.Stmt(mod.FirstDeclaration).Data.(ast.Function)
	body := mod.Arena.Stmt(fn.Body).Data.(ast.Block)
	ret := mod.Arena.Stmt(body.FirstStatement).Data.(ast.Return)
	expr := mod.Arena.Expr(ret.Expr)
	assert.Equal(t, ast.ExprCast, expr.Kind())
	assert.Equal(t, types.Int, expr.Type.Base)
}

func TestCBufferDeclaration(t *testing.T) {
	src := `
cbuffer PerFrame {
	float4x4 viewProjection;
	float3 eyePosition;
};

float4 project(float3 worldPos) {
	return mul(float4(worldPos, 1.0), viewProjection);
}
`
	mod := parse(t, src)
	buf := mod.Arena.Stmt(mod.FirstDeclaration).Data.(ast.Buffer)
	assert.Equal(t, "PerFrame", buf.Name)
	assert.False(t, buf.IsTextureBuffer)
}

func TestUndeclaredIdentifierIsError(t *testing.T) {
	src := `
float bad() {
	return undefinedThing;
}
`
	_, err := parser.Parse(src, "test.sl", parser.Options{}, nil)
	assert.Error(t, err)
}

func TestAllowUndeclaredIdentifiersRecovers(t *testing.T) {
	src := `
float bad() {
	return undefinedThing;
}
`
	mod, err := parser.Parse(src, "test.sl", parser.Options{AllowUndeclaredIdentifiers: true}, nil)
	require.NoError(t, err)
	require.NotNil(t, mod)
}

func TestMismatchedBinaryOperandsIsError(t *testing.T) {
	src := `
float4 bad(float4 a, float4x4 m) {
	return a * m;
}
`
	_, err := parser.Parse(src, "test.sl", parser.Options{}, nil)
	assert.Error(t, err)
}

func TestDisableSemanticValidationSkipsTypeErrors(t *testing.T) {
	src := `
float4 bad(float4 a, float4x4 m) {
	return a * m;
}
`
	mod, err := parser.Parse(src, "test.sl", parser.Options{DisableSemanticValidation: true}, nil)
	require.NoError(t, err)
	require.NotNil(t, mod)
}

func TestFunctionOverloadResolution(t *testing.T) {
	src := `
float pick(float a) {
	return a;
}
float4 pick(float4 a) {
	return a;
}
float4 callIt(float4 v) {
	return pick(v);
}
`
	mod := parse(t, src)
	assert.Greater(t, mod.Arena.StmtCount(), 0)
}

func TestTextureSampleMethodCall(t *testing.T) {
	src := `
Texture2D<float4> albedo;
SamplerState samp;

float4 sampleIt(float2 uv) {
	return albedo.Sample(samp, uv);
}
`
	mod := parse(t, src)
	assert.Greater(t, mod.Arena.StmtCount(), 0)
}
