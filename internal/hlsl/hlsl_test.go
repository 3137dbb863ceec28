package hlsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfranx/hlslparser/internal/emit"
	"github.com/dfranx/hlslparser/internal/hlsl"
	"github.com/dfranx/hlslparser/internal/parser"
)

func emitHLSL(t *testing.T, src, entry string) string {
	t.Helper()
	mod, err := parser.Parse(src, "test.sl", parser.Options{}, nil)
	require.NoError(t, err)
	out, err := hlsl.New().Emit(mod.Arena, mod, emit.Options{EntryPoint: entry, Target: emit.FragmentShader})
	require.NoError(t, err)
	return out
}

func TestEmitStructAndFunction(t *testing.T) {
	src := `
struct VSInput {
	float3 position;
	float2 uv;
};

float4 mainPS(VSInput input) {
	float4 pos = float4(input.position, 1.0);
	return pos;
}
`
	out := emitHLSL(t, src, "mainPS")
	assert.Contains(t, out, "struct VSInput {")
	assert.Contains(t, out, "float3 position;")
	assert.Contains(t, out, "float4 mainPS(VSInput input)")
	assert.Contains(t, out, "// entry point (fragment)")
}

func TestEmitCBufferAndAssignment(t *testing.T) {
	src := `
cbuffer PerFrame {
	float4x4 viewProjection;
};

float4 project(float3 worldPos) {
	float4 p = float4(worldPos, 1.0);
	p = p + float4(0.0, 0.0, 0.0, 0.0);
	return mul(p, viewProjection);
}
`
	out := emitHLSL(t, src, "project")
	assert.Contains(t, out, "cbuffer PerFrame {")
	assert.Contains(t, out, "float4x4 viewProjection;")
	assert.Contains(t, out, "p = p + float4(0, 0, 0, 0);")
	assert.Contains(t, out, "mul(p, viewProjection)")
}

func TestEmitUnknownEntryPointIsError(t *testing.T) {
	src := `float4 main() { return float4(0.0, 0.0, 0.0, 0.0); }`
	mod, err := parser.Parse(src, "test.sl", parser.Options{}, nil)
	require.NoError(t, err)
	_, err = hlsl.New().Emit(mod.Arena, mod, emit.Options{EntryPoint: "missing", Target: emit.VertexShader})
	assert.Error(t, err)
}

func TestEmitSwizzleAndTextureSample(t *testing.T) {
	src := `
Texture2D<float4> albedo;
SamplerState samp;

float4 sampleIt(float2 uv) {
	float4 c = albedo.Sample(samp, uv);
	return c.xyz.x > 0.5 ? c : c.wzyx;
}
`
	out := emitHLSL(t, src, "sampleIt")
	assert.Contains(t, out, "Texture2D<float4> albedo;")
	assert.Contains(t, out, "albedo.Sample(samp, uv)")
	assert.Contains(t, out, "c.xyz.x")
	assert.Contains(t, out, "c.wzyx")
}
