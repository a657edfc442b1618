package meshing

import (
	"encoding/binary"
	"math"

	"voxelmesh/internal/atlas"
	"voxelmesh/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexLayout selects the binary vertex format of a mesh.
type VertexLayout uint8

const (
	// LayoutFull stores position, normal, tangent, bitangent and UV as
	// float32: 56 bytes per vertex. Needed when the shading stage wants an
	// explicit tangent space.
	LayoutFull VertexLayout = iota

	// LayoutCompact stores chunk-local position as int16, the normal as a
	// one-byte direction index and UV quantized to uint16. 11 payload bytes,
	// padded to a 12-byte stride so the uint16 attributes stay aligned. The
	// consumer reconstructs the normal from the index table and derives the
	// tangent basis and UV tiling procedurally.
	LayoutCompact
)

const (
	fullStride    = 56
	compactStride = 12
)

// Stride returns the byte size of one vertex in this layout.
func (l VertexLayout) Stride() int {
	if l == LayoutCompact {
		return compactStride
	}
	return fullStride
}

func (l VertexLayout) String() string {
	if l == LayoutCompact {
		return "compact"
	}
	return "full"
}

// appendQuad encodes the quad's four vertices into buf. For the compact
// layout it reports ErrOverflow when a corner does not fit int16; the caller
// falls back to the full layout for the whole chunk rather than emitting
// corrupt geometry.
func appendQuad(buf []byte, q *Quad, region atlas.Region, layout VertexLayout) ([]byte, error) {
	corners := q.Corners()
	if layout == LayoutCompact {
		uvs := regionUVs(region)
		for i := range corners {
			var err error
			buf, err = appendCompactVertex(buf, corners[i], q.Face, uvs[i])
			if err != nil {
				return buf, err
			}
		}
		return buf, nil
	}

	spec := &dirSpecs[q.Face]
	uvs := q.TiledUVs(region)
	for i := range corners {
		buf = appendFullVertex(buf, corners[i], spec, uvs[i])
	}
	return buf, nil
}

func appendFullVertex(buf []byte, pos mgl32.Vec3, spec *dirSpec, uv mgl32.Vec2) []byte {
	buf = appendFloat32(buf, pos.X(), pos.Y(), pos.Z())
	buf = appendFloat32(buf, spec.normal.X(), spec.normal.Y(), spec.normal.Z())
	buf = appendFloat32(buf, spec.tangent.X(), spec.tangent.Y(), spec.tangent.Z())
	buf = appendFloat32(buf, spec.bitangent.X(), spec.bitangent.Y(), spec.bitangent.Z())
	buf = appendFloat32(buf, uv.X(), uv.Y())
	return buf
}

func appendCompactVertex(buf []byte, pos mgl32.Vec3, face world.Face, uv mgl32.Vec2) ([]byte, error) {
	// Corner positions are integer chunk-local coordinates by construction;
	// the round through float32 is exact well past the int16 range.
	x, y, z := int(pos.X()), int(pos.Y()), int(pos.Z())
	if !fitsInt16(x) || !fitsInt16(y) || !fitsInt16(z) {
		return buf, ErrOverflow
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(x)))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(y)))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(int16(z)))
	buf = append(buf, byte(face), 0) // normal index + pad
	buf = binary.LittleEndian.AppendUint16(buf, quantizeUV(uv.X()))
	buf = binary.LittleEndian.AppendUint16(buf, quantizeUV(uv.Y()))
	return buf, nil
}

func appendFloat32(buf []byte, vals ...float32) []byte {
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

func fitsInt16(v int) bool {
	return v >= math.MinInt16 && v <= math.MaxInt16
}

// quantizeUV maps [0,1] linearly onto [0,65535], rounding to nearest. The
// quantization step of 1/65535 keeps the error under half a texel for any
// atlas up to 32k texels wide.
func quantizeUV(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return math.MaxUint16
	}
	return uint16(v*math.MaxUint16 + 0.5)
}

// DequantizeUV is the inverse mapping used by consumers and tests.
func DequantizeUV(q uint16) float32 {
	return float32(q) / math.MaxUint16
}

// CompactVertex is one decoded compact-layout vertex.
type CompactVertex struct {
	X, Y, Z int16
	Normal  world.Face
	U, V    float32
}

// DecodeCompactVertex decodes one vertex from a compact-layout buffer.
func DecodeCompactVertex(buf []byte) CompactVertex {
	return CompactVertex{
		X:      int16(binary.LittleEndian.Uint16(buf[0:])),
		Y:      int16(binary.LittleEndian.Uint16(buf[2:])),
		Z:      int16(binary.LittleEndian.Uint16(buf[4:])),
		Normal: world.Face(buf[6]),
		U:      DequantizeUV(binary.LittleEndian.Uint16(buf[8:])),
		V:      DequantizeUV(binary.LittleEndian.Uint16(buf[10:])),
	}
}

// FullVertex is one decoded full-layout vertex.
type FullVertex struct {
	Pos       mgl32.Vec3
	Normal    mgl32.Vec3
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
	UV        mgl32.Vec2
}

// DecodeFullVertex decodes one vertex from a full-layout buffer.
func DecodeFullVertex(buf []byte) FullVertex {
	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	return FullVertex{
		Pos:       mgl32.Vec3{f(0), f(4), f(8)},
		Normal:    mgl32.Vec3{f(12), f(16), f(20)},
		Tangent:   mgl32.Vec3{f(24), f(28), f(32)},
		Bitangent: mgl32.Vec3{f(36), f(40), f(44)},
		UV:        mgl32.Vec2{f(48), f(52)},
	}
}
