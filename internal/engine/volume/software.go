package volume

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"

	"github.com/Faultbox/voldiff/internal/engine/picking"
	"github.com/Faultbox/voldiff/pkg/math"
)

// Software runs the pipeline on the CPU. Ray data comes from analytic
// ray/box intersection instead of rasterization; marching, edge detection
// and compositing follow the shaders.
type Software struct {
	params Params
	// MaxTextureSize clamps the reduced resolution like a device would.
	MaxTextureSize int32
}

// SoftwareFrame holds every intermediate image of one software frame.
type SoftwareFrame struct {
	Width, Height int32
	// Front and Back are the reduced-resolution ray data, row-major from the
	// top-left pixel.
	Front []RaySample
	Back  []RaySample
	// RayCast is the straight RGBA ray cast result at reduced resolution.
	RayCast []float32
	// Edges is the edge mask at screen resolution.
	Edges *image.Gray
	// Image is the composited result.
	Image *image.RGBA
	Stats FrameStats
}

// NewSoftware creates a software pipeline.
func NewSoftware(p Params) *Software {
	return &Software{params: p, MaxTextureSize: 16384}
}

// Render produces a width x height image of the volume between vMin and vMax
// over background. A nil src renders no volume, as a mismatched density
// texture does on the GPU.
func (s *Software) Render(src Sampler, vMin, vMax math.Vec3, view View, width, height int32, background color.RGBA) (*SoftwareFrame, error) {
	if width < 1 || height < 1 {
		return nil, ErrInvalidScreenSize
	}

	grid := BuildGrid(vMin, vMax)
	rw, rh := RayDataSize(width, height, s.params.RayDataScale, s.MaxTextureSize)

	f := &SoftwareFrame{Width: width, Height: height}
	f.Stats.RayDataWidth, f.Stats.RayDataHeight = rw, rh
	f.Stats.Skipped = src == nil

	f.Front, f.Back = s.rayData(grid, view, rw, rh)
	f.RayCast = make([]float32, int(rw)*int(rh)*4)
	if src != nil {
		m := NewMarcher(s.params, view.ZFar)
		eye := grid.GridCoord(view.Eye)
		for i := range f.Front {
			res := m.March(f.Front[i], f.Back[i], eye, grid.MaxDim, src)
			copy(f.RayCast[i*4:], res.Color[:])
		}
	}
	f.Stats.Passes = 3

	f.Edges = image.NewGray(image.Rect(0, 0, int(width), int(height)))
	if s.params.Edges {
		mask := edgeMask(f.Front, int(rw), int(rh), grid.MaxDim, s.params.EdgeThreshold)
		draw.NearestNeighbor.Scale(f.Edges, f.Edges.Bounds(), mask, mask.Bounds(), draw.Src, nil)
		f.Stats.Passes++
	}

	f.Image = s.composite(f, int(rw), int(rh), background)
	f.Stats.Passes++
	return f, nil
}

// rayData intersects one eye ray per reduced pixel with the grid. Faces
// nearer than ZNear or beyond ZFar are clipped like rasterized faces are.
func (s *Software) rayData(grid Grid, view View, rw, rh int32) (front, back []RaySample) {
	front = make([]RaySample, int(rw)*int(rh))
	back = make([]RaySample, len(front))
	inv := view.ViewProj.Inverse()
	box := grid.Bounds()

	for y := int32(0); y < rh; y++ {
		for x := int32(0); x < rw; x++ {
			ray := picking.EyeRay(view.Eye, float32(x)+0.5, float32(y)+0.5, float32(rw), float32(rh), inv)
			tNear, tFar, hit := ray.Slab(box)
			if !hit {
				continue
			}
			i := int(y)*int(rw) + int(x)
			if tFar > view.ZNear && (view.ZFar <= 0 || tFar <= view.ZFar) {
				back[i] = RaySample{Coord: clampCoord(grid.GridCoord(ray.At(tFar))), Distance: tFar}
			}
			if tNear >= view.ZNear && back[i].Hit() {
				front[i] = RaySample{Coord: clampCoord(grid.GridCoord(ray.At(tNear))), Distance: math32.Max(tNear, 1e-6)}
			}
		}
	}
	return front, back
}

func clampCoord(c math.Vec3) math.Vec3 {
	return math.Vec3{X: clamp01(c.X), Y: clamp01(c.Y), Z: clamp01(c.Z)}
}

// edgeMask applies the Sobel operator to coverage and normalized entry
// distance of the front ray data. Borders clamp like a texture fetch.
func edgeMask(front []RaySample, w, h int, maxDim, threshold float32) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	if maxDim <= 0 {
		maxDim = 1e-6
	}
	at := func(x, y int) RaySample {
		x = min(max(x, 0), w-1)
		y = min(max(y, 0), h-1)
		return front[y*w+x]
	}
	coverage := func(x, y int) float32 {
		if at(x, y).Hit() {
			return 1
		}
		return 0
	}
	depth := func(x, y int) float32 { return at(x, y).Distance / maxDim }

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			e := math32.Max(sobel(coverage, x, y), sobel(depth, x, y))
			if e > threshold {
				mask.Pix[y*mask.Stride+x] = 255
			}
		}
	}
	return mask
}

func sobel(f func(x, y int) float32, x, y int) float32 {
	gx := (f(x+1, y-1) + 2*f(x+1, y) + f(x+1, y+1)) - (f(x-1, y-1) + 2*f(x-1, y) + f(x-1, y+1))
	gy := (f(x-1, y+1) + 2*f(x, y+1) + f(x+1, y+1)) - (f(x-1, y-1) + 2*f(x, y-1) + f(x+1, y-1))
	return math32.Sqrt(gx*gx + gy*gy)
}

// composite upsamples the ray cast image bilinearly, applies the final
// scales, glow and edge color, and blends over background.
func (s *Software) composite(f *SoftwareFrame, rw, rh int, background color.RGBA) *image.RGBA {
	p := s.params
	w, h := int(f.Width), int(f.Height)
	headroom := math32.Max(1, p.ColorMultiplier)

	small := image.NewNRGBA64(image.Rect(0, 0, rw, rh))
	for i := 0; i < rw*rh; i++ {
		c := f.RayCast[i*4 : i*4+4]
		small.SetNRGBA64(i%rw, i/rw, encode(c[0]/headroom, c[1]/headroom, c[2]/headroom, c[3]))
	}
	up := image.NewNRGBA64(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(up, up.Bounds(), small, small.Bounds(), draw.Src, nil)

	var glowUp *image.NRGBA64
	if p.Glow {
		glow := blurPremultiplied(f.RayCast, rw, rh, headroom)
		glowUp = image.NewNRGBA64(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(glowUp, glowUp.Bounds(), glow, glow.Bounds(), draw.Src, nil)
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := [4]float32{float32(background.R) / 255, float32(background.G) / 255, float32(background.B) / 255, float32(background.A) / 255}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// rgb is premultiplied by alpha from here on.
			c := decode(up.NRGBA64At(x, y), headroom)
			alpha := clamp01(c[3] * p.FinalAlphaScale)
			rgb := [3]float32{
				clamp01(c[0]*p.FinalIntensityScale) * alpha,
				clamp01(c[1]*p.FinalIntensityScale) * alpha,
				clamp01(c[2]*p.FinalIntensityScale) * alpha,
			}

			if glowUp != nil {
				g := decode(glowUp.NRGBA64At(x, y), headroom)
				k := p.GlowContribution * p.FinalIntensityScale
				peak := float32(0)
				for i := range rgb {
					gi := g[i] * k
					rgb[i] = clamp01(rgb[i] + gi)
					peak = math32.Max(peak, gi)
				}
				alpha = math32.Max(alpha, clamp01(peak))
			}

			if p.Edges && f.Edges.GrayAt(x, y).Y > 127 {
				ec := p.EdgeColor
				for i := range rgb {
					rgb[i] = ec[i]*ec[3] + rgb[i]*(1-ec[3])
				}
				alpha = ec[3] + alpha*(1-ec[3])
			}

			o := out.Pix[y*out.Stride+x*4:]
			for i := 0; i < 3; i++ {
				o[i] = toByte(rgb[i] + bg[i]*(1-alpha))
			}
			o[3] = toByte(alpha + bg[3]*(1-alpha))
		}
	}
	return out
}

// blurPremultiplied returns the 3x3 box blur of the premultiplied ray cast
// color, stored opaque.
func blurPremultiplied(rc []float32, w, h int, headroom float32) *image.NRGBA64 {
	out := image.NewNRGBA64(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum [3]float32
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sx := min(max(x+dx, 0), w-1)
					sy := min(max(y+dy, 0), h-1)
					c := rc[(sy*w+sx)*4:]
					for i := range sum {
						sum[i] += c[i] * c[3]
					}
				}
			}
			out.SetNRGBA64(x, y, encode(sum[0]/9/headroom, sum[1]/9/headroom, sum[2]/9/headroom, 1))
		}
	}
	return out
}

func encode(r, g, b, a float32) color.NRGBA64 {
	return color.NRGBA64{R: to16(r), G: to16(g), B: to16(b), A: to16(a)}
}

func decode(c color.NRGBA64, headroom float32) [4]float32 {
	return [4]float32{
		float32(c.R) / 0xffff * headroom,
		float32(c.G) / 0xffff * headroom,
		float32(c.B) / 0xffff * headroom,
		float32(c.A) / 0xffff,
	}
}

func to16(v float32) uint16 {
	return uint16(clamp01(v)*0xffff + 0.5)
}

func toByte(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
