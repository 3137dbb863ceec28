package intern_test

import (
	"testing"

	"github.com/dfranx/hlslparser/internal/intern"
	"github.com/stretchr/testify/assert"
)

func TestInternDeduplicates(t *testing.T) {
	p := intern.New()

	a := p.Intern("position")
	b := p.Intern("position")
	c := p.Intern("normal")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, p.Contains("position"))
	assert.False(t, p.Contains("tangent"))
}

func TestInternRoundTrip(t *testing.T) {
	p := intern.New()

	sym := p.Intern("float4")
	assert.Equal(t, "float4", p.Text(sym))
	assert.True(t, sym.Valid())
}

func TestInternFormat(t *testing.T) {
	p := intern.New()

	sym := p.InternFormat("%s_%d", "tmp", 3)
	assert.Equal(t, "tmp_3", p.Text(sym))
}

func TestZeroSymbolIsInvalid(t *testing.T) {
	var sym intern.Symbol
	assert.False(t, sym.Valid())

	p := intern.New()
	assert.Equal(t, "", p.Text(sym))
}
