package loaders

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/material"
)

const asciiQuad = `ply
format ascii 1.0
comment unit quad in the xz plane
element vertex 4
property float x
property float y
property float z
property float nx
property float ny
property float nz
element face 1
property list uchar int vertex_indices
end_header
0 0 0 0 1 0
1 0 0 0 1 0
1 0 1 0 1 0
0 0 1 0 1 0
4 0 1 2 3
`

func TestReadPLY_ASCII(t *testing.T) {
	data, err := ReadPLY(strings.NewReader(asciiQuad))
	require.NoError(t, err)

	assert.Len(t, data.Vertices, 4)
	assert.Equal(t, core.NewVec3(1, 0, 1), data.Vertices[2])
	require.Len(t, data.Normals, 4)
	assert.Equal(t, core.NewVec3(0, 1, 0), data.Normals[0])
	// Quad fan-triangulated into two triangles
	assert.Equal(t, []int{0, 1, 2, 0, 2, 3}, data.Faces)
}

func TestReadPLY_BinaryLittleEndian(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("ply\nformat binary_little_endian 1.0\n")
	buf.WriteString("element vertex 3\nproperty float x\nproperty float y\nproperty float z\nproperty uchar red\n")
	buf.WriteString("element face 1\nproperty list uchar int vertex_indices\nend_header\n")

	vertices := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	for _, v := range vertices {
		for _, c := range v {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, math.Float32bits(c)))
		}
		buf.WriteByte(255)
	}
	buf.WriteByte(3)
	for _, idx := range []int32{0, 1, 2} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, idx))
	}

	data, err := ReadPLY(&buf)
	require.NoError(t, err)
	assert.Len(t, data.Vertices, 3)
	assert.Equal(t, core.NewVec3(0, 1, 0), data.Vertices[2])
	assert.Nil(t, data.Normals)
	assert.Equal(t, []int{0, 1, 2}, data.Faces)
}

func TestReadPLY_BinaryBigEndian(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("ply\nformat binary_big_endian 1.0\n")
	buf.WriteString("element vertex 3\nproperty double x\nproperty double y\nproperty double z\n")
	buf.WriteString("element face 1\nproperty list uchar uint vertex_indices\nend_header\n")

	for _, v := range [][3]float64{{0, 0, 0}, {2, 0, 0}, {0, 0, -2}} {
		for _, c := range v {
			require.NoError(t, binary.Write(&buf, binary.BigEndian, c))
		}
	}
	buf.WriteByte(3)
	for _, idx := range []uint32{2, 1, 0} {
		require.NoError(t, binary.Write(&buf, binary.BigEndian, idx))
	}

	data, err := ReadPLY(&buf)
	require.NoError(t, err)
	assert.Equal(t, core.NewVec3(0, 0, -2), data.Vertices[2])
	assert.Equal(t, []int{2, 1, 0}, data.Faces)
}

func TestReadPLY_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing magic", "format ascii 1.0\nend_header\n"},
		{"unterminated header", "ply\nformat ascii 1.0\nelement vertex 1\n"},
		{"unsupported format", "ply\nformat utf16 1.0\nend_header\n"},
		{"property before element", "ply\nformat ascii 1.0\nproperty float x\nend_header\n"},
		{"missing coordinates", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nend_header\n1\n"},
		{"short vertex data", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"huge ascii vertex count", "ply\nformat ascii 1.0\nelement vertex 9000000000000000000\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"huge binary vertex count", "ply\nformat binary_little_endian 1.0\nelement vertex 9000000000000000000\nproperty float x\nproperty float y\nproperty float z\nend_header\n\x00\x00\x00\x00"},
		{"vertex count overflow", "ply\nformat ascii 1.0\nelement vertex 99999999999999999999\nproperty float x\nend_header\n"},
		{"two vertex face", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 1 1\n2 0 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPLY(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrInvalidPLY)
		})
	}
}

func TestLoadPLYMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.ply")
	require.NoError(t, os.WriteFile(path, []byte(asciiQuad), 0o644))

	mat := material.NewDiffuse(core.Gray(0.7))
	mesh, err := LoadPLYMesh(path, mat, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, mesh.Len())
	assert.Same(t, mat, mesh.Material())

	hit, ok := mesh.Intersect(core.NewRay(core.NewVec3(0.25, 1, 0.75), core.NewVec3(0, -1, 0)))
	require.True(t, ok)
	assert.InDelta(t, 1.0, hit.T, 1e-9)
}

func TestLoadPLY_MissingFile(t *testing.T) {
	_, err := LoadPLY(filepath.Join(t.TempDir(), "missing.ply"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
