package renderer

import (
	_ "embed"

	rl "github.com/gen2brain/raylib-go/raylib"
)

//go:embed shaders/starfield.fs
var starfieldFS string

// BackgroundRenderer renders a procedural starfield that drifts with the camera.
type BackgroundRenderer struct {
	shader        rl.Shader
	timeLoc       int32
	resolutionLoc int32
	viewLoc       int32
	baseColorLoc  int32

	screenW, screenH float32
	baseColor        [3]float32
	initialized      bool
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(screenW, screenH int32, baseR, baseG, baseB uint8) *BackgroundRenderer {
	return &BackgroundRenderer{
		screenW: float32(screenW),
		screenH: float32(screenH),
		baseColor: [3]float32{
			float32(baseR) / 255.0,
			float32(baseG) / 255.0,
			float32(baseB) / 255.0,
		},
	}
}

// Init initializes the renderer (must be called after raylib window is created).
func (b *BackgroundRenderer) Init() {
	if b.initialized {
		return
	}

	b.shader = rl.LoadShaderFromMemory("", starfieldFS)
	b.timeLoc = rl.GetShaderLocation(b.shader, "time")
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.viewLoc = rl.GetShaderLocation(b.shader, "view")
	b.baseColorLoc = rl.GetShaderLocation(b.shader, "baseColor")

	rl.SetShaderValue(b.shader, b.baseColorLoc, b.baseColor[:], rl.ShaderUniformVec3)
	b.setResolution()

	b.initialized = true
}

func (b *BackgroundRenderer) setResolution() {
	resolution := []float32{b.screenW, b.screenH}
	rl.SetShaderValue(b.shader, b.resolutionLoc, resolution, rl.ShaderUniformVec2)
}

// Resize updates the fullscreen quad and shader resolution.
func (b *BackgroundRenderer) Resize(screenW, screenH float32) {
	b.screenW = screenW
	b.screenH = screenH
	if b.initialized {
		b.setResolution()
	}
}

// Draw renders the starfield for the given camera orientation.
func (b *BackgroundRenderer) Draw(time, yaw, pitch float32) {
	if !b.initialized {
		b.Init()
	}

	rl.BeginShaderMode(b.shader)

	rl.SetShaderValue(b.shader, b.timeLoc, []float32{time}, rl.ShaderUniformFloat)
	rl.SetShaderValue(b.shader, b.viewLoc, []float32{yaw, pitch}, rl.ShaderUniformVec2)

	// Draw fullscreen quad
	rl.DrawRectangle(0, 0, int32(b.screenW), int32(b.screenH), rl.White)

	rl.EndShaderMode()
}

// Unload frees resources.
func (b *BackgroundRenderer) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}
