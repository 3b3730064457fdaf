package picking

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/voldiff/pkg/math"
)

func unitBox() math.AABB {
	return math.NewAABB(math.V3(-1, -1, -1), math.V3(1, 1, 1))
}

func TestSlabEntryExit(t *testing.T) {
	r := Ray{Origin: math.V3(0, 0, -5), Direction: math.V3(0, 0, 1)}

	tNear, tFar, hit := r.Slab(unitBox())
	if !hit {
		t.Fatal("expected hit")
	}
	if tNear != 4 || tFar != 6 {
		t.Errorf("expected [4, 6], got [%f, %f]", tNear, tFar)
	}
}

func TestSlabFromInside(t *testing.T) {
	r := Ray{Origin: math.V3(0, 0, 0), Direction: math.V3(1, 0, 0)}

	tNear, tFar, hit := r.Slab(unitBox())
	if !hit {
		t.Fatal("expected hit from inside")
	}
	if tNear >= 0 {
		t.Errorf("expected negative entry from inside, got %f", tNear)
	}
	if tFar != 1 {
		t.Errorf("expected exit at 1, got %f", tFar)
	}

	d, ok := r.IntersectAABB(unitBox())
	if !ok || d != 1 {
		t.Errorf("expected IntersectAABB to return exit 1, got %f %v", d, ok)
	}
}

func TestSlabMiss(t *testing.T) {
	tests := []struct {
		name string
		ray  Ray
	}{
		{"parallel outside", Ray{Origin: math.V3(0, 2, -5), Direction: math.V3(0, 0, 1)}},
		{"behind origin", Ray{Origin: math.V3(0, 0, 5), Direction: math.V3(0, 0, 1)}},
		{"diagonal miss", Ray{Origin: math.V3(-5, 3, 0), Direction: math.V3(1, 0, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, hit := tt.ray.Slab(unitBox()); hit {
				t.Error("expected miss")
			}
		})
	}
}

func TestEyeRayThroughCenter(t *testing.T) {
	eye := math.V3(0, 0, -20)
	view := math.LookAt(eye, math.V3(0, 0, 0), math.V3(0, 1, 0))
	proj := math.Perspective(math32.Pi/4, 800.0/600.0, 0.05, 1000)
	inv := proj.Mul(view).Inverse()

	r := EyeRay(eye, 400, 300, 800, 600, inv)
	if !r.Direction.ApproxEqual(math.V3(0, 0, 1), 1e-3) {
		t.Errorf("expected forward ray, got %+v", r.Direction)
	}

	d, ok := r.IntersectAABB(unitBox())
	if !ok || math32.Abs(d-19) > 1e-2 {
		t.Errorf("expected hit at distance 19, got %f %v", d, ok)
	}

	near := ScreenToRay(400, 300, 800, 600, inv)
	if math32.Abs(near.Origin.Z-(-20+0.05)) > 1e-2 {
		t.Errorf("expected near-plane origin, got %+v", near.Origin)
	}
}
