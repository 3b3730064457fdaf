package volume

import "github.com/chewxy/math32"

// RayDataSize returns the reduced resolution used for the ray data and ray
// cast targets: each screen axis scaled by scale, rounded, at least 1 and at
// most maxTex. A non-positive scale is treated as 1 and a non-positive
// maxTex disables the clamp.
func RayDataSize(screenW, screenH int32, scale float32, maxTex int32) (w, h int32) {
	if !(scale > 0) {
		scale = 1
	}
	return scaleAxis(screenW, scale, maxTex), scaleAxis(screenH, scale, maxTex)
}

// maxAxis bounds an unclamped axis so the conversion to int32 cannot overflow.
const maxAxis = 1 << 30

func scaleAxis(n int32, scale float32, maxTex int32) int32 {
	limit := float32(maxAxis)
	if maxTex > 0 {
		limit = math32.Min(limit, float32(maxTex))
	}
	v := math32.Floor(float32(n)*scale + 0.5)
	v = math32.Min(math32.Max(v, 1), limit)
	return int32(v)
}
