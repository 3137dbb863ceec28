package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunCompilesToHLSL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.sl", `
float4 mainPS() {
	return float4(1.0, 0.0, 0.0, 1.0);
}
`)
	assert.Equal(t, 0, run([]string{"-fs", "-hlsl", path, "mainPS"}))
}

func TestRunCompilesToGLSL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.sl", `
float4 mainPS() {
	return float4(1.0, 0.0, 0.0, 1.0);
}
`)
	assert.Equal(t, 0, run([]string{"-fs", "-glsl", path, "mainPS"}))
}

func TestRunUnknownEntryPointFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.sl", `
float4 mainPS() {
	return float4(1.0, 0.0, 0.0, 1.0);
}
`)
	assert.Equal(t, 1, run([]string{"-fs", path, "missingEntry"}))
}

func TestRunMissingFileFails(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, 1, run([]string{filepath.Join(dir, "nope.sl"), "main"}))
}

func TestRunMissingArgsShowsUsage(t *testing.T) {
	assert.Equal(t, 1, run([]string{}))
}

func TestRunHelpFlagSucceeds(t *testing.T) {
	assert.Equal(t, 0, run([]string{"-h"}))
}

func TestRunMetalIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.sl", `float4 mainPS() { return float4(0.0, 0.0, 0.0, 0.0); }`)
	assert.Equal(t, 1, run([]string{"-metal", path, "mainPS"}))
}
