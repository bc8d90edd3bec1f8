// Package shader holds the GLSL source text for the slideshow passes.
package shader

const vertexShaderSource = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// Image rows are stored top-down, so every effect samples with a flipped v
// coordinate.
const passthroughFragmentShaderSource = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, vec2(frag_uv.x, 1.0 - frag_uv.y)); }
`

const grayFragmentShaderSource = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() {
    vec4 c = texture(u_texture, vec2(frag_uv.x, 1.0 - frag_uv.y));
    float luminance = dot(c.rgb, vec3(0.299, 0.587, 0.114));
    fragColor = vec4(vec3(luminance), c.a);
}
`

// Luminance-split grade: brighten above mid luminance, cool-tint below.
const vividFragmentShaderSource = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() {
    vec4 c = texture(u_texture, vec2(frag_uv.x, 1.0 - frag_uv.y));
    float luminance = dot(c.rgb, vec3(0.299, 0.587, 0.114));
    if (luminance > 0.5) {
        c.rgb *= 1.2;
    } else {
        c.r *= 0.8;
        c.g *= 0.9;
        c.b *= 1.1;
    }
    fragColor = clamp(c, 0.0, 1.0);
}
`

// Effect names, in cycling order.
const (
	EffectNone  = "none"
	EffectGray  = "gray"
	EffectVivid = "vivid"
)

var effectOrder = []string{EffectNone, EffectGray, EffectVivid}

var fragmentSources = map[string]string{
	EffectNone:  passthroughFragmentShaderSource,
	EffectGray:  grayFragmentShaderSource,
	EffectVivid: vividFragmentShaderSource,
}

// GenerateVertexShader returns the shared fullscreen-quad vertex shader.
func GenerateVertexShader() string {
	return vertexShaderSource
}

// FragmentShader returns the fragment source for the named effect, falling
// back to the passthrough shader for unknown names.
func FragmentShader(effect string) string {
	if src, ok := fragmentSources[effect]; ok {
		return src
	}
	return passthroughFragmentShaderSource
}

// Effects lists the known effect names in cycling order.
func Effects() []string {
	return effectOrder
}

// NextEffect returns the effect that follows the given one in cycling
// order. Unknown names restart the cycle.
func NextEffect(effect string) string {
	for i, name := range effectOrder {
		if name == effect {
			return effectOrder[(i+1)%len(effectOrder)]
		}
	}
	return effectOrder[0]
}

// ValidEffect reports whether the name is a known effect.
func ValidEffect(effect string) bool {
	_, ok := fragmentSources[effect]
	return ok
}
