package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFragmentShaderSources(t *testing.T) {
	for _, effect := range Effects() {
		src := FragmentShader(effect)
		assert.True(t, strings.HasPrefix(src, "#version 410 core"), "effect %q missing version header", effect)
		assert.Contains(t, src, "void main()", "effect %q", effect)
		assert.Contains(t, src, "u_texture", "effect %q", effect)
	}
}

func TestFragmentShaderUnknownFallsBack(t *testing.T) {
	assert.Equal(t, FragmentShader(EffectNone), FragmentShader("sepia"))
}

func TestNextEffectCycles(t *testing.T) {
	effects := Effects()
	seen := map[string]bool{}
	current := effects[0]
	for range effects {
		seen[current] = true
		current = NextEffect(current)
	}
	assert.Equal(t, effects[0], current)
	assert.Len(t, seen, len(effects))
}

func TestNextEffectUnknownRestarts(t *testing.T) {
	assert.Equal(t, EffectNone, NextEffect("bogus"))
}

func TestValidEffect(t *testing.T) {
	assert.True(t, ValidEffect(EffectVivid))
	assert.False(t, ValidEffect(""))
}
