package gpu_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/voldiff/internal/engine/gpu"
	"github.com/Faultbox/voldiff/internal/engine/gpu/gputest"
)

type orderedResource struct {
	id  int
	log *[]int
}

func (r orderedResource) Release() { *r.log = append(*r.log, r.id) }

func TestPoolReleasesInReverseOrder(t *testing.T) {
	var released []int
	var pool gpu.Pool
	for i := 1; i <= 3; i++ {
		pool.Add(orderedResource{id: i, log: &released})
	}
	pool.Add(nil)
	assert.Equal(t, 3, pool.Len())

	pool.Release()
	assert.Equal(t, []int{3, 2, 1}, released)
	assert.Zero(t, pool.Len())

	// The pool is reusable after release
	pool.Add(orderedResource{id: 4, log: &released})
	pool.Release()
	assert.Equal(t, []int{3, 2, 1, 4}, released)
}

func TestPoolAllocatesThroughDevice(t *testing.T) {
	dev := gputest.New()
	var pool gpu.Pool

	_, err := pool.Target(dev, gpu.TargetDesc{Label: "color", Width: 4, Height: 4})
	require.NoError(t, err)
	_, err = pool.Program(dev, "prog", "v", "f")
	require.NoError(t, err)
	_, err = pool.Mesh(dev, gpu.MeshDesc{Label: "quad", Vertices: []float32{0, 0}, Stride: 2})
	require.NoError(t, err)
	_, err = pool.Texture(dev, gpu.TextureDesc{Label: "lut", Width: 2, Height: 1}, make([]float32, 8))
	require.NoError(t, err)

	assert.Equal(t, 4, dev.Live())
	pool.Release()
	assert.Zero(t, dev.Live())
}

func TestPoolKeepsNothingOnFailure(t *testing.T) {
	dev := gputest.New()
	dev.FailLabel = "broken"
	var pool gpu.Pool

	_, err := pool.Target(dev, gpu.TargetDesc{Label: "broken-target", Width: 4, Height: 4})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gpu.ErrResourceCreation))
	assert.Zero(t, pool.Len())
}

func TestFormatComponents(t *testing.T) {
	assert.Equal(t, 1, gpu.FormatR32F.Components())
	assert.Equal(t, 4, gpu.FormatRGBA32F.Components())
	assert.Equal(t, "RGBA16F", gpu.FormatRGBA16F.String())
}
