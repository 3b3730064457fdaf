package density

import (
	"fmt"

	"github.com/Faultbox/voldiff/internal/engine/gpu"
)

// Volume mirrors a Field into a 3-D R32F texture.
type Volume struct {
	dev   gpu.Device
	field *Field
	tex   gpu.Texture
}

// NewVolume uploads field into a new texture.
func NewVolume(dev gpu.Device, field *Field) (*Volume, error) {
	dims := field.Dims()
	tex, err := dev.NewTexture(gpu.TextureDesc{
		Label:  "density",
		Width:  dims[0],
		Height: dims[1],
		Depth:  dims[2],
		Format: gpu.FormatR32F,
		Filter: gpu.FilterLinear,
	}, field.Data())
	if err != nil {
		return nil, fmt.Errorf("uploading density: %w", err)
	}
	return &Volume{dev: dev, field: field, tex: tex}, nil
}

// Field returns the CPU field.
func (v *Volume) Field() *Field { return v.field }

// Texture returns the density texture.
func (v *Volume) Texture() gpu.Texture { return v.tex }

// Dims returns the texture size.
func (v *Volume) Dims() [3]int32 { return v.field.Dims() }

// Sync uploads the current field contents.
func (v *Volume) Sync() error {
	if err := v.dev.UpdateTexture(v.tex, v.field.Data()); err != nil {
		return fmt.Errorf("uploading density: %w", err)
	}
	return nil
}

// Release frees the texture.
func (v *Volume) Release() {
	if v.tex != nil {
		v.tex.Release()
		v.tex = nil
	}
}
