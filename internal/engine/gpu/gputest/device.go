// Package gputest provides a recording gpu.Device for tests.
//
// The device allocates nothing. It records every resource, pass and draw so
// tests can assert submission order, target sizes and resource lifetimes.
package gputest

import (
	"fmt"
	"strings"

	"github.com/Faultbox/voldiff/internal/engine/gpu"
)

// Texture is a recorded texture.
type Texture struct {
	Desc     gpu.TextureDesc
	Data     []float32
	Released bool
	dev      *Device
}

func (t *Texture) Size() (width, height, depth int32) {
	return t.Desc.Width, t.Desc.Height, t.Desc.Depth
}

func (t *Texture) Release() { t.dev.release(t, &t.Released) }

// Target is a recorded render target.
type Target struct {
	Desc     gpu.TargetDesc
	Color    *Texture
	Released bool
	dev      *Device
}

func (t *Target) Texture() gpu.Texture { return t.Color }

func (t *Target) Size() (width, height int32) { return t.Desc.Width, t.Desc.Height }

func (t *Target) Release() { t.dev.release(t, &t.Released) }

// Mesh is a recorded mesh.
type Mesh struct {
	Desc     gpu.MeshDesc
	Released bool
	dev      *Device
}

func (m *Mesh) Release() { m.dev.release(m, &m.Released) }

// Program is a recorded program.
type Program struct {
	Label          string
	VertexSource   string
	FragmentSource string
	Released       bool
	dev            *Device
}

func (p *Program) Release() { p.dev.release(p, &p.Released) }

// PassRecord is one submitted pass and its draws.
type PassRecord struct {
	gpu.Pass
	Draws []gpu.DrawCall
}

// Device records everything submitted to it.
type Device struct {
	// MaxTex is returned by MaxTextureSize. Zero means 16384.
	MaxTex int32
	// FailLabel makes every allocation whose label contains it fail.
	FailLabel string

	Passes []PassRecord

	live     map[gpu.Resource]string
	created  int
	released int
	current  *PassRecord
}

// New returns an empty recording device.
func New() *Device {
	return &Device{live: make(map[gpu.Resource]string)}
}

func (d *Device) MaxTextureSize() int32 {
	if d.MaxTex == 0 {
		return 16384
	}
	return d.MaxTex
}

func (d *Device) fail(kind, label string) error {
	if d.FailLabel != "" && strings.Contains(label, d.FailLabel) {
		return fmt.Errorf("%w: %s %q rejected by test", gpu.ErrResourceCreation, kind, label)
	}
	return nil
}

func (d *Device) track(r gpu.Resource, label string) {
	if d.live == nil {
		d.live = make(map[gpu.Resource]string)
	}
	d.live[r] = label
	d.created++
}

func (d *Device) release(r gpu.Resource, flag *bool) {
	if *flag {
		return
	}
	*flag = true
	delete(d.live, r)
	d.released++
}

func (d *Device) NewTexture(desc gpu.TextureDesc, data []float32) (gpu.Texture, error) {
	if err := d.fail("texture", desc.Label); err != nil {
		return nil, err
	}
	t := &Texture{Desc: desc, dev: d}
	if data != nil {
		t.Data = append([]float32(nil), data...)
	}
	d.track(t, desc.Label)
	return t, nil
}

func (d *Device) UpdateTexture(tex gpu.Texture, data []float32) error {
	t, ok := tex.(*Texture)
	if !ok || t.Released {
		return fmt.Errorf("update texture: not a live test texture")
	}
	t.Data = append(t.Data[:0], data...)
	return nil
}

func (d *Device) NewTarget(desc gpu.TargetDesc) (gpu.Target, error) {
	if err := d.fail("target", desc.Label); err != nil {
		return nil, err
	}
	if desc.Width > d.MaxTextureSize() || desc.Height > d.MaxTextureSize() {
		return nil, fmt.Errorf("%w: target %q exceeds max texture size", gpu.ErrResourceCreation, desc.Label)
	}
	color := &Texture{
		Desc: gpu.TextureDesc{Label: desc.Label, Width: desc.Width, Height: desc.Height, Format: desc.Format, Filter: desc.Filter},
		dev:  d,
	}
	t := &Target{Desc: desc, Color: color, dev: d}
	d.track(t, desc.Label)
	return t, nil
}

func (d *Device) NewMesh(desc gpu.MeshDesc) (gpu.Mesh, error) {
	if err := d.fail("mesh", desc.Label); err != nil {
		return nil, err
	}
	desc.Vertices = append([]float32(nil), desc.Vertices...)
	desc.Indices = append([]uint32(nil), desc.Indices...)
	m := &Mesh{Desc: desc, dev: d}
	d.track(m, desc.Label)
	return m, nil
}

func (d *Device) UpdateMesh(mesh gpu.Mesh, vertices []float32) error {
	m, ok := mesh.(*Mesh)
	if !ok || m.Released {
		return fmt.Errorf("update mesh: not a live test mesh")
	}
	if len(vertices) != len(m.Desc.Vertices) {
		return fmt.Errorf("update mesh: vertex count changed from %d to %d floats", len(m.Desc.Vertices), len(vertices))
	}
	copy(m.Desc.Vertices, vertices)
	return nil
}

func (d *Device) NewProgram(label, vertexSrc, fragmentSrc string) (gpu.Program, error) {
	if err := d.fail("program", label); err != nil {
		return nil, err
	}
	p := &Program{Label: label, VertexSource: vertexSrc, FragmentSource: fragmentSrc, dev: d}
	d.track(p, label)
	return p, nil
}

func (d *Device) BeginPass(pass gpu.Pass) {
	d.Passes = append(d.Passes, PassRecord{Pass: pass})
	d.current = &d.Passes[len(d.Passes)-1]
}

func (d *Device) Draw(call gpu.DrawCall) {
	if d.current == nil {
		panic("gputest: draw outside a pass: " + call.Label)
	}
	d.current.Draws = append(d.current.Draws, call)
}

func (d *Device) EndPass() {
	if d.current == nil {
		panic("gputest: EndPass without BeginPass")
	}
	d.current = nil
}

// PassNames returns the names of all recorded passes in submission order.
func (d *Device) PassNames() []string {
	names := make([]string, len(d.Passes))
	for i, p := range d.Passes {
		names[i] = p.Name
	}
	return names
}

// LastPass returns the most recent pass with the given name.
func (d *Device) LastPass(name string) (PassRecord, bool) {
	for i := len(d.Passes) - 1; i >= 0; i-- {
		if d.Passes[i].Name == name {
			return d.Passes[i], true
		}
	}
	return PassRecord{}, false
}

// ResetPasses forgets recorded passes, keeping resources.
func (d *Device) ResetPasses() {
	d.Passes = nil
	d.current = nil
}

// Live returns the number of resources not yet released.
func (d *Device) Live() int { return len(d.live) }

// Created returns the number of resources allocated so far.
func (d *Device) Created() int { return d.created }

// LiveTargets returns the live render targets.
func (d *Device) LiveTargets() []*Target {
	var out []*Target
	for r := range d.live {
		if t, ok := r.(*Target); ok {
			out = append(out, t)
		}
	}
	return out
}

// LiveTarget returns the live target with the given label.
func (d *Device) LiveTarget(label string) *Target {
	for r, l := range d.live {
		if t, ok := r.(*Target); ok && l == label {
			return t
		}
	}
	return nil
}

var _ gpu.Device = (*Device)(nil)
