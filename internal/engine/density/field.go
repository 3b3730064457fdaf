// Package density provides the demo density source: a scalar field seeded
// with simplex noise and smoothed by explicit diffusion.
package density

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/Faultbox/voldiff/internal/config"
	"github.com/Faultbox/voldiff/pkg/math"
)

// Field is a scalar density grid stored x-fastest, then y, then z.
type Field struct {
	nx, ny, nz int
	data       []float32
	scratch    []float32

	rate  float32
	decay float32
}

// New creates a field of the given dimensions seeded with noise shaped into
// a soft ball at the grid center.
func New(dims [3]int, cfg config.DensityConfig) (*Field, error) {
	if dims[0] < 1 || dims[1] < 1 || dims[2] < 1 {
		return nil, fmt.Errorf("density grid %v has an empty axis", dims)
	}

	f := &Field{
		nx:    dims[0],
		ny:    dims[1],
		nz:    dims[2],
		rate:  cfg.DiffusionRate,
		decay: cfg.Decay,
	}
	f.data = make([]float32, f.nx*f.ny*f.nz)
	f.scratch = make([]float32, len(f.data))

	noise := opensimplex.NewNormalized32(cfg.Seed)
	s := cfg.NoiseScale
	for z := 0; z < f.nz; z++ {
		for y := 0; y < f.ny; y++ {
			for x := 0; x < f.nx; x++ {
				p := f.coord(x, y, z)
				r := p.Sub(math.V3(0.5, 0.5, 0.5)).Length() * 2
				falloff := clamp01(1 - r*r)
				f.data[f.index(x, y, z)] = noise.Eval3(p.X*s, p.Y*s, p.Z*s) * falloff
			}
		}
	}
	return f, nil
}

// Dims returns the grid size.
func (f *Field) Dims() [3]int32 {
	return [3]int32{int32(f.nx), int32(f.ny), int32(f.nz)}
}

// Data returns the backing slice. Callers must not keep it across Step.
func (f *Field) Data() []float32 {
	return f.data
}

// Fill sets every voxel to v.
func (f *Field) Fill(v float32) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Mass returns the sum of all voxels. Density is non-negative, so the
// absolute sum is the total.
func (f *Field) Mass() float32 {
	return blas32.Asum(f.vec(f.data))
}

func (f *Field) index(x, y, z int) int {
	return (z*f.ny+y)*f.nx + x
}

// coord returns the grid coordinate of a voxel center.
func (f *Field) coord(x, y, z int) math.Vec3 {
	return math.Vec3{
		X: (float32(x) + 0.5) / float32(f.nx),
		Y: (float32(y) + 0.5) / float32(f.ny),
		Z: (float32(z) + 0.5) / float32(f.nz),
	}
}

func (f *Field) vec(data []float32) blas32.Vector {
	return blas32.Vector{N: len(data), Inc: 1, Data: data}
}

// Step advances the field by one explicit diffusion step with reflecting
// boundaries, then applies decay. Mass is conserved when decay is zero.
func (f *Field) Step() {
	if f.rate > 0 {
		f.neighbourSum(f.scratch)
		cur := f.vec(f.data)
		blas32.Scal(1-6*f.rate, cur)
		blas32.Axpy(f.rate, f.vec(f.scratch), cur)
	}
	if f.decay > 0 {
		blas32.Scal(1-f.decay, f.vec(f.data))
	}
}

// neighbourSum writes the sum of the six face neighbours of every voxel into
// out. Neighbours outside the grid are replaced by the voxel itself.
func (f *Field) neighbourSum(out []float32) {
	for z := 0; z < f.nz; z++ {
		zm, zp := max(z-1, 0), min(z+1, f.nz-1)
		for y := 0; y < f.ny; y++ {
			ym, yp := max(y-1, 0), min(y+1, f.ny-1)
			for x := 0; x < f.nx; x++ {
				xm, xp := max(x-1, 0), min(x+1, f.nx-1)
				out[f.index(x, y, z)] = f.data[f.index(xm, y, z)] + f.data[f.index(xp, y, z)] +
					f.data[f.index(x, ym, z)] + f.data[f.index(x, yp, z)] +
					f.data[f.index(x, y, zm)] + f.data[f.index(x, y, zp)]
			}
		}
	}
}

// Inject adds amount at center (grid coordinates) with a linear falloff to
// zero at radius.
func (f *Field) Inject(center math.Vec3, radius, amount float32) {
	if radius <= 0 {
		return
	}
	for z := 0; z < f.nz; z++ {
		for y := 0; y < f.ny; y++ {
			for x := 0; x < f.nx; x++ {
				d := f.coord(x, y, z).Distance(center)
				if d < radius {
					f.data[f.index(x, y, z)] += amount * (1 - d/radius)
				}
			}
		}
	}
}

// Sample returns the trilinearly interpolated density at grid coordinate p,
// clamping to the border voxels like a texture fetch with clamp-to-edge.
func (f *Field) Sample(p math.Vec3) float32 {
	x0, x1, tx := axis(p.X, f.nx)
	y0, y1, ty := axis(p.Y, f.ny)
	z0, z1, tz := axis(p.Z, f.nz)

	c00 := lerp(f.data[f.index(x0, y0, z0)], f.data[f.index(x1, y0, z0)], tx)
	c10 := lerp(f.data[f.index(x0, y1, z0)], f.data[f.index(x1, y1, z0)], tx)
	c01 := lerp(f.data[f.index(x0, y0, z1)], f.data[f.index(x1, y0, z1)], tx)
	c11 := lerp(f.data[f.index(x0, y1, z1)], f.data[f.index(x1, y1, z1)], tx)
	return lerp(lerp(c00, c10, ty), lerp(c01, c11, ty), tz)
}

// axis returns the two voxel indices around coordinate c and the weight of
// the second.
func axis(c float32, n int) (i0, i1 int, t float32) {
	v := c*float32(n) - 0.5
	if v <= 0 {
		return 0, 0, 0
	}
	if v >= float32(n-1) {
		return n - 1, n - 1, 0
	}
	fl := math32.Floor(v)
	i0 = int(fl)
	return i0, i0 + 1, v - fl
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
