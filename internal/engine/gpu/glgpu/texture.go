package glgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/voldiff/internal/engine/gpu"
)

// texture is a 2-D or 3-D GL texture.
type texture struct {
	id     uint32
	target uint32 // gl.TEXTURE_2D or gl.TEXTURE_3D
	format gpu.Format
	width  int32
	height int32
	depth  int32
}

func (t *texture) Size() (width, height, depth int32) {
	return t.width, t.height, t.depth
}

func (t *texture) Release() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// glFormat returns internal format, pixel format and component type.
func glFormat(f gpu.Format) (internal int32, format, xtype uint32) {
	switch f {
	case gpu.FormatRGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.FLOAT
	case gpu.FormatRGBA32F:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT
	case gpu.FormatR32F:
		return gl.R32F, gl.RED, gl.FLOAT
	default:
		return gl.RGBA8, gl.RGBA, gl.FLOAT
	}
}

func glFilter(f gpu.Filter) int32 {
	if f == gpu.FilterLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

func texelCount(desc gpu.TextureDesc) int {
	n := int(desc.Width) * int(desc.Height) * desc.Format.Components()
	if desc.Depth > 0 {
		n *= int(desc.Depth)
	}
	return n
}

func (d *Device) NewTexture(desc gpu.TextureDesc, data []float32) (gpu.Texture, error) {
	if desc.Width < 1 || desc.Height < 1 {
		return nil, fmt.Errorf("%w: texture %q size %dx%d", gpu.ErrResourceCreation, desc.Label, desc.Width, desc.Height)
	}
	if data != nil && len(data) < texelCount(desc) {
		return nil, fmt.Errorf("%w: texture %q needs %d floats, got %d", gpu.ErrResourceCreation, desc.Label, texelCount(desc), len(data))
	}

	t := &texture{target: gl.TEXTURE_2D, format: desc.Format, width: desc.Width, height: desc.Height, depth: desc.Depth}
	if desc.Depth > 0 {
		t.target = gl.TEXTURE_3D
	}

	internal, format, xtype := glFormat(desc.Format)
	ptr := gl.Ptr(nil)
	if data != nil {
		ptr = gl.Ptr(data)
	}

	gl.GenTextures(1, &t.id)
	gl.BindTexture(t.target, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	if t.target == gl.TEXTURE_3D {
		gl.TexImage3D(t.target, 0, internal, t.width, t.height, t.depth, 0, format, xtype, ptr)
		gl.TexParameteri(t.target, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	} else {
		gl.TexImage2D(t.target, 0, internal, t.width, t.height, 0, format, xtype, ptr)
	}
	gl.TexParameteri(t.target, gl.TEXTURE_MIN_FILTER, glFilter(desc.Filter))
	gl.TexParameteri(t.target, gl.TEXTURE_MAG_FILTER, glFilter(desc.Filter))
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(t.target, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		t.Release()
		return nil, fmt.Errorf("%w: texture %q: gl error 0x%x", gpu.ErrResourceCreation, desc.Label, errCode)
	}
	return t, nil
}

func (d *Device) UpdateTexture(tex gpu.Texture, data []float32) error {
	t, ok := tex.(*texture)
	if !ok || t.id == 0 {
		return fmt.Errorf("update texture: not a live GL texture")
	}
	desc := gpu.TextureDesc{Width: t.width, Height: t.height, Depth: t.depth, Format: t.format}
	if len(data) < texelCount(desc) {
		return fmt.Errorf("update texture: need %d floats, got %d", texelCount(desc), len(data))
	}

	_, format, xtype := glFormat(t.format)
	gl.BindTexture(t.target, t.id)
	if t.target == gl.TEXTURE_3D {
		gl.TexSubImage3D(t.target, 0, 0, 0, 0, t.width, t.height, t.depth, format, xtype, gl.Ptr(data))
	} else {
		gl.TexSubImage2D(t.target, 0, 0, 0, t.width, t.height, format, xtype, gl.Ptr(data))
	}
	gl.BindTexture(t.target, 0)
	return nil
}

// target is an offscreen render target with a sampled color attachment and
// an optional depth renderbuffer.
type target struct {
	fbo      uint32
	color    *texture
	depthRBO uint32
	width    int32
	height   int32
}

func (t *target) Texture() gpu.Texture { return t.color }

func (t *target) Size() (width, height int32) { return t.width, t.height }

func (t *target) Release() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.color != nil {
		t.color.Release()
	}
	if t.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &t.depthRBO)
		t.depthRBO = 0
	}
}

func (d *Device) NewTarget(desc gpu.TargetDesc) (gpu.Target, error) {
	if desc.Width > d.maxTex || desc.Height > d.maxTex {
		return nil, fmt.Errorf("%w: target %q %dx%d exceeds max texture size %d",
			gpu.ErrResourceCreation, desc.Label, desc.Width, desc.Height, d.maxTex)
	}

	color, err := d.NewTexture(gpu.TextureDesc{
		Label:  desc.Label,
		Width:  desc.Width,
		Height: desc.Height,
		Format: desc.Format,
		Filter: desc.Filter,
	}, nil)
	if err != nil {
		return nil, err
	}

	t := &target{color: color.(*texture), width: desc.Width, height: desc.Height}

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.color.id, 0)

	if desc.DepthBuffer {
		gl.GenRenderbuffers(1, &t.depthRBO)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.depthRBO)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, t.width, t.height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depthRBO)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.Release()
		return nil, fmt.Errorf("%w: target %q incomplete: 0x%x", gpu.ErrResourceCreation, desc.Label, status)
	}
	return t, nil
}
