package main

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	windowWidth  = 1280
	windowHeight = 720
)

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "meshview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		return nil, err
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	return window, nil
}

// Shader for the compact vertex layout: int16 positions, a one-byte normal
// index expanded through a lookup table, normalized uint16 UVs.
const compactVertexShader = `#version 410 core
layout (location = 0) in vec3 inPos;
layout (location = 1) in uint inNormal;
layout (location = 2) in vec2 inUV;

uniform mat4 uProj;
uniform mat4 uView;
uniform vec3 uOrigin;

const vec3 kNormals[6] = vec3[6](
	vec3(0, 1, 0), vec3(0, -1, 0),
	vec3(0, 0, 1), vec3(0, 0, -1),
	vec3(1, 0, 0), vec3(-1, 0, 0)
);

out vec3 vNormal;
out vec2 vUV;

void main() {
	vNormal = kNormals[inNormal];
	vUV = inUV;
	gl_Position = uProj * uView * vec4(uOrigin + inPos, 1.0);
}
` + "\x00"

const compactFragmentShader = `#version 410 core
in vec3 vNormal;
in vec2 vUV;

out vec4 fragColor;

const vec3 kLightDir = normalize(vec3(0.5, 1.0, 0.3));

void main() {
	float diffuse = max(dot(vNormal, kLightDir), 0.0);
	vec3 base = vec3(0.35, 0.65, 0.3) * (0.35 + 0.65 * diffuse);
	fragColor = vec4(base, 1.0);
}
` + "\x00"

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}

func newProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vert, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	frag, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return program, nil
}
