package glsl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfranx/hlslparser/internal/emit"
	"github.com/dfranx/hlslparser/internal/glsl"
	"github.com/dfranx/hlslparser/internal/parser"
)

func emitGLSL(t *testing.T, src, entry string) string {
	t.Helper()
	mod, err := parser.Parse(src, "test.sl", parser.Options{}, nil)
	require.NoError(t, err)
	out, err := glsl.New().Emit(mod.Arena, mod, emit.Options{EntryPoint: entry, Target: emit.FragmentShader})
	require.NoError(t, err)
	return out
}

func TestEmitTypeRemapping(t *testing.T) {
	src := `
struct Light {
	float3 position;
	float4 color;
};

float4 shade(Light light, float4x4 m) {
	return mul(light.color, m);
}
`
	out := emitGLSL(t, src, "shade")
	assert.Contains(t, out, "#version 450")
	assert.Contains(t, out, "struct Light {")
	assert.Contains(t, out, "vec3 position;")
	assert.Contains(t, out, "vec4 color;")
	assert.Contains(t, out, "vec4 shade(Light light, mat4 m)")
	assert.Contains(t, out, "(light.color * m)")
}

func TestEmitIntrinsicRenames(t *testing.T) {
	src := `
float tone(float x) {
	float a = saturate(x);
	float b = frac(x);
	float c = rsqrt(x);
	float d = rcp(x);
	return a + b + c + d;
}
`
	out := emitGLSL(t, src, "tone")
	assert.Contains(t, out, "clamp(x, 0.0, 1.0)")
	assert.Contains(t, out, "fract(x)")
	assert.Contains(t, out, "inversesqrt(x)")
	assert.Contains(t, out, "(1.0 / x)")
}

func TestEmitSamplerDroppedAndSampleRewritten(t *testing.T) {
	src := `
Texture2D<float4> albedo;
SamplerState samp;

float4 sampleIt(float2 uv) {
	return albedo.Sample(samp, uv);
}
`
	out := emitGLSL(t, src, "sampleIt")
	assert.Contains(t, out, "uniform sampler2D albedo;")
	assert.NotContains(t, out, "SamplerState")
	assert.Contains(t, out, "texture(albedo, uv)")
}

func TestEmitCBufferBecomesUniformBlock(t *testing.T) {
	src := `
cbuffer PerFrame {
	float4x4 viewProjection;
};

float4 project(float3 worldPos) {
	return mul(float4(worldPos, 1.0), viewProjection);
}
`
	out := emitGLSL(t, src, "project")
	assert.Contains(t, out, "uniform PerFrame {")
	assert.Contains(t, out, "mat4 viewProjection;")
}
