package meshing

import (
	"testing"

	"voxelmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDirectionTableOrthonormal(t *testing.T) {
	for _, face := range Directions() {
		spec := &dirSpecs[face]

		if spec.face != face {
			t.Fatalf("%s: table entry indexed under wrong face", face)
		}
		if spec.tangent.Cross(spec.bitangent) != spec.normal {
			t.Fatalf("%s: u cross v is %v, want normal %v", face, spec.tangent.Cross(spec.bitangent), spec.normal)
		}
		if spec.uAxis == spec.vAxis || spec.uAxis == spec.depthAxis || spec.vAxis == spec.depthAxis {
			t.Fatalf("%s: axes not distinct: u=%d v=%d depth=%d", face, spec.uAxis, spec.vAxis, spec.depthAxis)
		}

		dx, dy, dz := face.Offset()
		offset := mgl32.Vec3{float32(dx), float32(dy), float32(dz)}
		if spec.normal != offset {
			t.Fatalf("%s: normal %v disagrees with face offset %v", face, spec.normal, offset)
		}
	}
}

func TestQuadWindingCounterClockwise(t *testing.T) {
	for _, face := range Directions() {
		q := Quad{Face: face, U: 2, V: 3, W: 4, H: 2, Depth: 5}
		c := q.Corners()

		// both triangles of the 0-1-2 / 0-2-3 split must face the normal
		for _, tri := range [][3]int{{0, 1, 2}, {0, 2, 3}} {
			e1 := c[tri[1]].Sub(c[tri[0]])
			e2 := c[tri[2]].Sub(c[tri[0]])
			n := e1.Cross(e2).Normalize()
			if n.Dot(Normal(face)) < 0.999 {
				t.Fatalf("%s: triangle %v winds %v, want %v", face, tri, n, Normal(face))
			}
		}
	}
}

func TestQuadCornersOnFacePlane(t *testing.T) {
	for _, face := range Directions() {
		spec := &dirSpecs[face]
		q := Quad{Face: face, U: 1, V: 1, W: 2, H: 3, Depth: 4}

		wantPlane := float32(4)
		if spec.positive {
			wantPlane = 5
		}
		for i, corner := range q.Corners() {
			got := [3]float32{corner.X(), corner.Y(), corner.Z()}[spec.depthAxis]
			if got != wantPlane {
				t.Fatalf("%s: corner %d sits at depth %g, want %g", face, i, got, wantPlane)
			}
		}
	}
}

func TestFaceOffsetsCoverAllNeighbors(t *testing.T) {
	seen := make(map[[3]int]bool)
	for _, face := range Directions() {
		dx, dy, dz := face.Offset()
		if dx*dx+dy*dy+dz*dz != 1 {
			t.Fatalf("%s: offset (%d,%d,%d) is not a unit step", face, dx, dy, dz)
		}
		seen[[3]int{dx, dy, dz}] = true
	}
	if len(seen) != world.FaceCount {
		t.Fatalf("offsets cover %d distinct neighbors, want %d", len(seen), world.FaceCount)
	}
}
