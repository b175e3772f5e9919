// Package shader provides the GLSL source for the night-vision program.
package shader

import (
	"fmt"
	"os"
)

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec3 VertexPosition;
layout (location = 1) in vec3 VertexNormal;
layout (location = 2) in vec2 VertexTexCoord;

out vec3 Position;
out vec3 Normal;
out vec2 TexCoord;

uniform mat4 ModelViewMatrix;
uniform mat3 NormalMatrix;
uniform mat4 MVP;

void main() {
    TexCoord = VertexTexCoord;
    Normal = normalize(NormalMatrix * VertexNormal);
    Position = vec3(ModelViewMatrix * vec4(VertexPosition, 1.0));
    gl_Position = MVP * vec4(VertexPosition, 1.0);
}
`

// Both passes live in one program; the RenderPass subroutine uniform picks
// the entry point per draw.
const fragmentShaderSourceGL = `#version 410 core
in vec3 Position;
in vec3 Normal;
in vec2 TexCoord;

struct LightInfo {
    vec4 Position;
    vec3 Intensity;
};
uniform LightInfo Light;

struct MaterialInfo {
    vec3 Ka;
    vec3 Kd;
    vec3 Ks;
    float Shininess;
};
uniform MaterialInfo Material;

uniform vec4 Worldlight;
uniform mat3 ViewNormalMatrix;

uniform float Width;
uniform float Height;
uniform float Radius;
uniform float EdgeThreshold;

uniform sampler2D RenderTex;
uniform sampler2D NoiseTex;

layout (location = 0) out vec4 FragColor;

subroutine vec4 RenderPassType();
subroutine uniform RenderPassType RenderPass;

vec3 phongModel(vec3 pos, vec3 norm) {
    vec3 s = normalize(vec3(Light.Position) - pos);
    vec3 v = normalize(-pos);
    vec3 r = reflect(-s, norm);
    vec3 ambient = Light.Intensity * Material.Ka;
    float sDotN = max(dot(s, norm), 0.0);
    vec3 diffuse = Light.Intensity * Material.Kd * sDotN;
    vec3 spec = vec3(0.0);
    if (sDotN > 0.0) {
        spec = Light.Intensity * Material.Ks * pow(max(dot(r, v), 0.0), Material.Shininess);
    }
    return ambient + diffuse + spec;
}

float luminance(vec3 color) {
    return dot(color, vec3(0.2126, 0.7152, 0.0722));
}

// Sobel magnitude of the luminance around TexCoord.
float edge() {
    float dx = 1.0 / Width;
    float dy = 1.0 / Height;
    float s00 = luminance(texture(RenderTex, TexCoord + vec2(-dx,  dy)).rgb);
    float s10 = luminance(texture(RenderTex, TexCoord + vec2(-dx, 0.0)).rgb);
    float s20 = luminance(texture(RenderTex, TexCoord + vec2(-dx, -dy)).rgb);
    float s01 = luminance(texture(RenderTex, TexCoord + vec2(0.0,  dy)).rgb);
    float s21 = luminance(texture(RenderTex, TexCoord + vec2(0.0, -dy)).rgb);
    float s02 = luminance(texture(RenderTex, TexCoord + vec2( dx,  dy)).rgb);
    float s12 = luminance(texture(RenderTex, TexCoord + vec2( dx, 0.0)).rgb);
    float s22 = luminance(texture(RenderTex, TexCoord + vec2( dx, -dy)).rgb);
    float sx = s00 + 2.0 * s10 + s20 - (s02 + 2.0 * s12 + s22);
    float sy = s00 + 2.0 * s01 + s02 - (s20 + 2.0 * s21 + s22);
    return sx * sx + sy * sy;
}

subroutine (RenderPassType)
vec4 pass1() {
    return vec4(phongModel(Position, Normal), 1.0);
}

subroutine (RenderPassType)
vec4 pass2() {
    vec4 noise = texture(NoiseTex, TexCoord);
    vec4 color = texture(RenderTex, TexCoord);
    float green = luminance(color.rgb);
    if (edge() > EdgeThreshold) {
        green = min(green + 0.25, 1.0);
    }

    float dist1 = length(gl_FragCoord.xy - vec2(Width * 0.25, Height * 0.5));
    float dist2 = length(gl_FragCoord.xy - vec2(3.0 * Width * 0.25, Height * 0.5));
    if (dist1 > Radius && dist2 > Radius) {
        green = 0.0;
    }

    return vec4(0.0, green * clamp(noise.a + 0.25, 0.0, 1.0), 0.0, 1.0);
}

void main() {
    FragColor = RenderPass();
}
`

// Subroutine entry point names declared by the fragment stage.
const (
	Pass1Name = "pass1"
	Pass2Name = "pass2"
)

// Source is a vertex/fragment source pair.
type Source struct {
	Vertex   string
	Fragment string
}

// Default returns the built-in night-vision program source.
func Default() Source {
	return Source{
		Vertex:   vertexShaderSourceGL,
		Fragment: fragmentShaderSourceGL,
	}
}

// Load reads shader stages from disk. An empty path keeps the built-in source
// for that stage.
func Load(vertexPath, fragmentPath string) (Source, error) {
	src := Default()
	if vertexPath != "" {
		b, err := os.ReadFile(vertexPath)
		if err != nil {
			return src, fmt.Errorf("failed to read vertex shader: %w", err)
		}
		src.Vertex = string(b)
	}
	if fragmentPath != "" {
		b, err := os.ReadFile(fragmentPath)
		if err != nil {
			return src, fmt.Errorf("failed to read fragment shader: %w", err)
		}
		src.Fragment = string(b)
	}
	return src, nil
}
