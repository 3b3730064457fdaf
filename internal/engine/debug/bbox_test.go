package debug

import (
	"testing"

	"github.com/Faultbox/voldiff/pkg/math"
)

func TestBoxWireframe(t *testing.T) {
	box := math.NewAABB(math.V3(-1, -2, -3), math.V3(1, 2, 3))
	verts := BoxWireframe(box, 0)

	if len(verts) != BoxLineVertexCount*3 {
		t.Fatalf("got %d floats, want %d", len(verts), BoxLineVertexCount*3)
	}

	// Every edge is axis aligned and spans the full box extent on one axis.
	size := box.Size()
	for i := 0; i < len(verts); i += 6 {
		a := math.V3(verts[i], verts[i+1], verts[i+2])
		b := math.V3(verts[i+3], verts[i+4], verts[i+5])
		d := b.Sub(a)
		changed := 0
		for axis, v := range [3]float32{d.X, d.Y, d.Z} {
			if v == 0 {
				continue
			}
			changed++
			want := [3]float32{size.X, size.Y, size.Z}[axis]
			if v != want && v != -want {
				t.Errorf("edge %d spans %v on axis %d, want %v", i/6, v, axis, want)
			}
		}
		if changed != 1 {
			t.Errorf("edge %d is not axis aligned: %v -> %v", i/6, a, b)
		}
	}
}

func TestBoxWireframePadding(t *testing.T) {
	box := math.NewAABB(math.V3(0, 0, 0), math.V3(1, 1, 1))
	verts := BoxWireframe(box, 0.5)

	for i, v := range verts {
		if v != -0.5 && v != 1.5 {
			t.Fatalf("vertex component %d = %v, want -0.5 or 1.5", i, v)
		}
	}
}

func TestBoxWireframeColored(t *testing.T) {
	color := [4]float32{1, 0.5, 0, 1}
	verts := BoxWireframeColored(math.NewAABB(math.V3(0, 0, 0), math.V3(1, 1, 1)), 0, color)

	if len(verts) != BoxLineVertexCount*BoxLineStride {
		t.Fatalf("got %d floats, want %d", len(verts), BoxLineVertexCount*BoxLineStride)
	}
	for i := 0; i < len(verts); i += BoxLineStride {
		got := [4]float32{verts[i+3], verts[i+4], verts[i+5], verts[i+6]}
		if got != color {
			t.Fatalf("vertex %d color = %v, want %v", i/BoxLineStride, got, color)
		}
	}
}
