// Package glgpu implements gpu.Device on OpenGL 4.1 core.
//
// All calls must come from the thread that owns the GL context.
package glgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/voldiff/internal/engine/gpu"
	"github.com/Faultbox/voldiff/internal/logger"
)

// Device is the OpenGL implementation of gpu.Device.
type Device struct {
	maxTex int32
	log    *zap.Logger
	inPass bool
}

// New loads GL function pointers for the current context and returns a device.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	d := &Device{log: logger.Named("glgpu")}
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &d.maxTex)

	d.log.Info("OpenGL device ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.Int32("maxTextureSize", d.maxTex))
	return d, nil
}

// MaxTextureSize returns GL_MAX_TEXTURE_SIZE.
func (d *Device) MaxTextureSize() int32 {
	return d.maxTex
}

// BeginPass binds the pass target, sets the viewport and clears.
func (d *Device) BeginPass(pass gpu.Pass) {
	if d.inPass {
		d.log.Warn("pass begun without ending the previous one", zap.String("pass", pass.Name))
	}
	d.inPass = true

	var fbo uint32
	if t, ok := pass.Target.(*target); ok {
		fbo = t.fbo
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	vp := pass.Viewport
	gl.Viewport(vp[0], vp[1], vp[2], vp[3])

	var mask uint32
	if c := pass.Clear.Color; c != nil {
		gl.ClearColor(c[0], c[1], c[2], c[3])
		mask |= gl.COLOR_BUFFER_BIT
	}
	if z := pass.Clear.Depth; z != nil {
		gl.DepthMask(true)
		gl.ClearDepthf(*z)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

// Draw applies state, uniforms and textures, then draws the mesh.
func (d *Device) Draw(call gpu.DrawCall) {
	p, ok := call.Program.(*program)
	if !ok || p.id == 0 {
		d.log.Warn("draw skipped: no program", zap.String("draw", call.Label))
		return
	}
	m, ok := call.Mesh.(*mesh)
	if !ok || m.vao == 0 {
		d.log.Warn("draw skipped: no mesh", zap.String("draw", call.Label))
		return
	}

	applyState(call.State)
	gl.UseProgram(p.id)
	for _, u := range call.Uniforms {
		p.setUniform(u)
	}
	for _, b := range call.Textures {
		tex, ok := b.Texture.(*texture)
		if !ok {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + b.Unit)
		gl.BindTexture(tex.target, tex.id)
		if loc := p.uniform(b.Name); loc >= 0 {
			gl.Uniform1i(loc, int32(b.Unit))
		}
	}

	m.draw()
	gl.UseProgram(0)
}

// EndPass restores the default framebuffer.
func (d *Device) EndPass() {
	d.inPass = false
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func applyState(s gpu.State) {
	switch s.Cull {
	case gpu.CullNone:
		gl.Disable(gl.CULL_FACE)
	case gpu.CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	}

	switch s.Depth {
	case gpu.DepthDisabled:
		gl.Disable(gl.DEPTH_TEST)
	case gpu.DepthLess:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
	case gpu.DepthGreater:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.GREATER)
	}
	gl.DepthMask(s.DepthWrite)

	switch s.Blend {
	case gpu.BlendNone:
		gl.Disable(gl.BLEND)
	case gpu.BlendPremultiplied:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	case gpu.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE)
	}
}

// ReadBackBuffer reads the back buffer as RGBA bytes, bottom row first.
func (d *Device) ReadBackBuffer(width, height int32) []byte {
	pixels := make([]byte, int(width)*int(height)*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.ReadPixels(0, 0, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

var _ gpu.Device = (*Device)(nil)
