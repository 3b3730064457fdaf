// Package picking provides screen ray construction and ray/box intersection.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/voldiff/pkg/math"
)

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// unproject maps pixel coordinates to a world-space point on the NDC depth ndcZ.
// screenY grows downwards.
func unproject(screenX, screenY, viewportW, viewportH, ndcZ float32, invViewProj math.Mat4) math.Vec3 {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	p := invViewProj.MulVec4(math.Vec4{ndcX, ndcY, ndcZ, 1})
	if p[3] != 0 {
		p[0] /= p[3]
		p[1] /= p[3]
		p[2] /= p[3]
	}
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

// ScreenToRay converts pixel coordinates to a world-space ray starting on the
// near plane. invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	near := unproject(screenX, screenY, viewportW, viewportH, -1, invViewProj)
	far := unproject(screenX, screenY, viewportW, viewportH, 1, invViewProj)
	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// EyeRay converts pixel coordinates to a ray starting at the eye, so that t
// along it is the view distance from the eye.
func EyeRay(eye math.Vec3, screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	far := unproject(screenX, screenY, viewportW, viewportH, 1, invViewProj)
	return Ray{Origin: eye, Direction: far.Sub(eye).Normalize()}
}

// Slab intersects the ray's supporting line with box and returns the entry
// and exit parameters. hit is false when the line misses the box or the box
// lies entirely behind the origin. tNear is negative when the origin is
// inside the box.
func (r Ray) Slab(box math.AABB) (tNear, tFar float32, hit bool) {
	tNear = -math32.MaxFloat32
	tFar = math32.MaxFloat32

	o := r.Origin.Array()
	d := r.Direction.Array()
	lo := box.Min.Array()
	hi := box.Max.Array()

	for axis := 0; axis < 3; axis++ {
		if d[axis] == 0 {
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return 0, 0, false
			}
			continue
		}
		t1 := (lo[axis] - o[axis]) / d[axis]
		t2 := (hi[axis] - o[axis]) / d[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tNear = math32.Max(tNear, t1)
		tFar = math32.Min(tFar, t2)
	}

	if tFar < tNear || tFar < 0 {
		return 0, 0, false
	}
	return tNear, tFar, true
}

// IntersectAABB returns the distance to the first surface of box along the
// ray. If the ray starts inside the box, the exit distance is returned.
func (r Ray) IntersectAABB(box math.AABB) (t float32, hit bool) {
	tNear, tFar, hit := r.Slab(box)
	if !hit {
		return 0, false
	}
	if tNear < 0 {
		return tFar, true
	}
	return tNear, true
}
