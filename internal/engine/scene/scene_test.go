package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/voldiff/internal/engine/gpu"
	"github.com/Faultbox/voldiff/internal/engine/gpu/gputest"
	"github.com/Faultbox/voldiff/internal/engine/picking"
	"github.com/Faultbox/voldiff/internal/engine/surface"
	"github.com/Faultbox/voldiff/internal/engine/volume"
	"github.com/Faultbox/voldiff/pkg/math"
)

var grey = [4]float32{0.5, 0.5, 0.5, 1}

type testSource struct {
	tex  gpu.Texture
	dims [3]int32
}

func (s testSource) Texture() gpu.Texture { return s.tex }
func (s testSource) Dims() [3]int32       { return s.dims }

func newTestScene(t *testing.T, dev *gputest.Device, surfaces ...*surface.Surface) (*Scene, testSource) {
	t.Helper()

	p := volume.DefaultParams()
	vol, err := volume.New(dev, p, math.V3(0, 0, 0), math.V3(1, 1, 1))
	require.NoError(t, err)

	sc, err := New(dev, vol, DefaultOptions(), surfaces...)
	require.NoError(t, err)
	require.NoError(t, sc.SetScreenSize(320, 240))

	d := p.GridDims
	tex, err := dev.NewTexture(gpu.TextureDesc{
		Label: "density", Width: d[0], Height: d[1], Depth: d[2], Format: gpu.FormatR32F,
	}, nil)
	require.NoError(t, err)

	return sc, testSource{tex: tex, dims: d}
}

func testView() volume.View {
	proj := math.Perspective(0.785, 320.0/240.0, 0.05, 1000)
	eye := math.V3(0, 0, -20)
	viewM := math.LookAt(eye, math.Vec3{}, math.V3(0, 1, 0))
	return volume.View{ViewProj: proj.Mul(viewM), Eye: eye, ZNear: 0.05, ZFar: 1000}
}

func threeSurfaces() []*surface.Surface {
	return []*surface.Surface{
		surface.Box("a", math.V3(2, 2, 2), grey),
		surface.Sphere("b", 1, 8, 8, grey),
		surface.Box("c", math.V3(1, 3, 1), grey),
	}
}

func TestChangeControlledSurfaceCycles(t *testing.T) {
	dev := gputest.New()
	sc, _ := newTestScene(t, dev, threeSurfaces()...)
	defer sc.Release()

	var got []int
	for range 6 {
		got = append(got, sc.ChangeControlledSurface())
	}
	assert.Equal(t, []int{1, 2, 0, 1, 2, 0}, got)
	assert.Equal(t, "a", sc.Controlled().Name())
}

func TestChangeControlledSurfaceEmpty(t *testing.T) {
	dev := gputest.New()
	sc, src := newTestScene(t, dev)
	defer sc.Release()

	assert.Equal(t, 0, sc.ChangeControlledSurface())
	assert.Nil(t, sc.Controlled())

	_, err := sc.Render(src, testView())
	assert.ErrorIs(t, err, ErrNoSurfaces)
}

func TestTransformsGoToControlledSurface(t *testing.T) {
	dev := gputest.New()
	surfaces := threeSurfaces()
	sc, _ := newTestScene(t, dev, surfaces...)
	defer sc.Release()

	sc.ChangeControlledSurface()
	sc.Translate(1, 2, 3)
	sc.RotateX(0.3)
	sc.RotateY(0.3)
	sc.RotateZ(0.3)
	sc.Scale(2)

	assert.Equal(t, math.Identity(), surfaces[0].Model())
	assert.Equal(t, math.Identity(), surfaces[2].Model())
	assert.True(t, surfaces[1].Translation().ApproxEqual(math.V3(1, 2, 3), 1e-6))
}

func TestRenderOrder(t *testing.T) {
	dev := gputest.New()
	sc, src := newTestScene(t, dev, threeSurfaces()...)
	defer sc.Release()

	_, err := sc.Render(src, testView())
	require.NoError(t, err)

	assert.Equal(t, []string{
		PassSurfaces,
		volume.PassRayDataFront,
		volume.PassRayDataBack,
		volume.PassRayCast,
		volume.PassEdges,
		volume.PassComposite,
	}, dev.PassNames())

	pass, ok := dev.LastPass(PassSurfaces)
	require.True(t, ok)
	assert.Nil(t, pass.Target)
	require.NotNil(t, pass.Clear.Depth)

	// Three triangle draws followed by three edge draws.
	require.Len(t, pass.Draws, 6)
	for i, d := range pass.Draws[:3] {
		assert.Equal(t, []string{"a", "b", "c"}[i], d.Label)
		assert.Equal(t, gpu.CullBack, d.State.Cull)
	}
	for _, d := range pass.Draws[3:] {
		assert.Contains(t, d.Label, "-edges")
	}
}

func TestRenderSkipsHiddenEdgesAndDrawsGridBox(t *testing.T) {
	dev := gputest.New()
	surfaces := threeSurfaces()
	sc, src := newTestScene(t, dev, surfaces...)
	defer sc.Release()

	surfaces[0].SetDrawEdges(false)
	surfaces[2].SetDrawEdges(false)
	sc.Options.ShowGridBox = true

	_, err := sc.Render(src, testView())
	require.NoError(t, err)

	pass, _ := dev.LastPass(PassSurfaces)
	var labels []string
	for _, d := range pass.Draws {
		labels = append(labels, d.Label)
	}
	assert.Equal(t, []string{"a", "b", "c", "b-edges", "grid-wireframe"}, labels)
}

func TestRenderFollowsControlledBounds(t *testing.T) {
	dev := gputest.New()
	surfaces := threeSurfaces()
	sc, src := newTestScene(t, dev, surfaces...)
	defer sc.Release()

	stats, err := sc.Render(src, testView())
	require.NoError(t, err)
	assert.True(t, stats.GridRebuilt, "box a is larger than the initial grid")

	stats, err = sc.Render(src, testView())
	require.NoError(t, err)
	assert.False(t, stats.GridRebuilt)

	sc.Translate(3, 0, 0)
	stats, err = sc.Render(src, testView())
	require.NoError(t, err)
	assert.True(t, stats.GridRebuilt)

	g := sc.Volume().Grid()
	wb := surfaces[0].WorldBounds()
	assert.Equal(t, wb.Min, g.Min)
	assert.Equal(t, wb.Max, g.Max)

	sc.ChangeControlledSurface()
	_, err = sc.Render(src, testView())
	require.NoError(t, err)
	assert.Equal(t, surfaces[1].WorldBounds().Max, sc.Volume().Grid().Max)
}

func TestSetColorReuploads(t *testing.T) {
	dev := gputest.New()
	surfaces := threeSurfaces()
	sc, src := newTestScene(t, dev, surfaces...)
	defer sc.Release()

	_, err := sc.Render(src, testView())
	require.NoError(t, err)
	created := dev.Created()

	surfaces[0].SetColor(1, 0, 0, 1)
	_, err = sc.Render(src, testView())
	require.NoError(t, err)

	assert.Equal(t, created, dev.Created(), "recoloring updates meshes in place")

	pass, _ := dev.LastPass(PassSurfaces)
	mesh := pass.Draws[0].Mesh.(*gputest.Mesh)
	assert.Equal(t, []float32{1, 0, 0, 1}, mesh.Desc.Vertices[6:10])
}

func TestTexturedSurfaceBindsTexture(t *testing.T) {
	dev := gputest.New()
	tex := surface.Checker(8, 8, 4, [4]float32{1, 1, 1, 1}, [4]float32{0, 0, 0, 1})
	box, err := surface.TexturedBox("crate", math.V3(2, 2, 2), tex)
	require.NoError(t, err)

	sc, src := newTestScene(t, dev, box)
	defer sc.Release()

	_, err = sc.Render(src, testView())
	require.NoError(t, err)

	pass, _ := dev.LastPass(PassSurfaces)
	require.Len(t, pass.Draws[0].Textures, 1)
	assert.Equal(t, "uTexture", pass.Draws[0].Textures[0].Name)
}

func TestRenderBeforeScreenSize(t *testing.T) {
	dev := gputest.New()
	vol, err := volume.New(dev, volume.DefaultParams(), math.V3(-1, -1, -1), math.V3(1, 1, 1))
	require.NoError(t, err)
	sc, err := New(dev, vol, DefaultOptions(), threeSurfaces()...)
	require.NoError(t, err)
	defer sc.Release()

	_, err = sc.Render(testSource{}, testView())
	assert.ErrorIs(t, err, ErrNoScreen)
}

func TestUploadFailureOpensNoPass(t *testing.T) {
	dev := gputest.New()
	sc, src := newTestScene(t, dev, threeSurfaces()...)
	defer sc.Release()

	dev.FailLabel = "b-triangles"
	_, err := sc.Render(src, testView())
	require.Error(t, err)
	assert.ErrorIs(t, err, gpu.ErrResourceCreation)
	assert.Empty(t, dev.PassNames())
}

func TestNewFailureReleasesVolume(t *testing.T) {
	dev := gputest.New()
	vol, err := volume.New(dev, volume.DefaultParams(), math.V3(0, 0, 0), math.V3(1, 1, 1))
	require.NoError(t, err)
	require.NotZero(t, dev.Live())

	dev.FailLabel = "line"
	sc, err := New(dev, vol, DefaultOptions(), threeSurfaces()...)
	require.Error(t, err)
	assert.Nil(t, sc)
	assert.ErrorIs(t, err, gpu.ErrResourceCreation)
	assert.Zero(t, dev.Live())
}

func TestPickSurface(t *testing.T) {
	dev := gputest.New()
	surfaces := threeSurfaces()
	sc, _ := newTestScene(t, dev, surfaces...)
	defer sc.Release()

	surfaces[0].Translate(-5, 0, 0)
	surfaces[1].Translate(5, 0, 0)
	surfaces[2].Translate(5, 0, 5)

	idx, ok := sc.PickSurface(picking.Ray{Origin: math.V3(5, 0, -20), Direction: math.V3(0, 0, 1)})
	require.True(t, ok)
	assert.Equal(t, 1, idx, "nearest hit wins")
	assert.Equal(t, 1, sc.ControlledIndex())

	idx, ok = sc.PickSurface(picking.Ray{Origin: math.V3(0, 50, -20), Direction: math.V3(0, 0, 1)})
	assert.False(t, ok)
	assert.Equal(t, 1, idx)
}

func TestReleaseFreesEverything(t *testing.T) {
	dev := gputest.New()
	sc, src := newTestScene(t, dev, threeSurfaces()...)

	_, err := sc.Render(src, testView())
	require.NoError(t, err)

	src.tex.Release()
	sc.Release()
	assert.Zero(t, dev.Live())
}
