package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/material"
)

// ErrInvalidPLY is returned for malformed or unsupported PLY input
var ErrInvalidPLY = errors.New("invalid PLY")

// maxPreallocRows caps the rows reserved up front from a header's element
// count; larger elements grow as their data is actually read
const maxPreallocRows = 1 << 16

// PLYData holds the geometry read from a PLY file. Faces are triangulated
// as fans, three indices per triangle. Normals is nil unless every vertex
// carries nx, ny and nz.
type PLYData struct {
	Vertices []core.Vec3
	Normals  []core.Vec3
	Faces    []int
}

type plyProperty struct {
	name      string
	dataType  string
	isList    bool
	countType string
}

type plyElement struct {
	name       string
	count      int
	properties []plyProperty
}

type plyHeader struct {
	format   string
	elements []plyElement
}

// LoadPLY reads a PLY file from disk
func LoadPLY(filename string) (*PLYData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}

// LoadPLYMesh reads a PLY file and builds a mesh from it
func LoadPLYMesh(filename string, mat *material.Material, transform *geometry.Transform) (*geometry.Mesh, error) {
	data, err := LoadPLY(filename)
	if err != nil {
		return nil, err
	}
	return geometry.NewMeshFromIndexed(filename, data.Vertices, data.Faces, data.Normals, mat, transform)
}

// ReadPLY parses PLY data in ascii, binary_little_endian or
// binary_big_endian format. Only the vertex positions, optional vertex
// normals and the face vertex_indices list are kept; other properties and
// elements are skipped.
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReader(r)
	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, err
	}

	var read func(*plyElement) ([][]float64, error)
	switch header.format {
	case "ascii":
		read = asciiElementReader(reader)
	case "binary_little_endian":
		read = binaryElementReader(reader, binary.LittleEndian)
	case "binary_big_endian":
		read = binaryElementReader(reader, binary.BigEndian)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidPLY, header.format)
	}

	data := &PLYData{}
	for i := range header.elements {
		element := &header.elements[i]
		rows, err := read(element)
		if err != nil {
			return nil, fmt.Errorf("%w: element %s: %v", ErrInvalidPLY, element.name, err)
		}
		switch element.name {
		case "vertex":
			if err := data.addVertices(element, rows); err != nil {
				return nil, err
			}
		case "face":
			if err := data.addFaces(element, rows); err != nil {
				return nil, err
			}
		}
	}
	return data, nil
}

func parsePLYHeader(reader *bufio.Reader) (*plyHeader, error) {
	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("%w: missing ply magic", ErrInvalidPLY)
	}

	header := &plyHeader{}
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: header not terminated", ErrInvalidPLY)
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.format == "" {
				return nil, fmt.Errorf("%w: missing format line", ErrInvalidPLY)
			}
			return header, nil
		case "format":
			if len(parts) < 2 {
				return nil, fmt.Errorf("%w: bad format line", ErrInvalidPLY)
			}
			header.format = parts[1]
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: bad element line %q", ErrInvalidPLY, strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: bad element count %q", ErrInvalidPLY, parts[2])
			}
			header.elements = append(header.elements, plyElement{name: parts[1], count: count})
		case "property":
			if len(header.elements) == 0 {
				return nil, fmt.Errorf("%w: property before element", ErrInvalidPLY)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			last := &header.elements[len(header.elements)-1]
			last.properties = append(last.properties, prop)
		}
	}
}

func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) >= 4 && parts[0] == "list" {
		return plyProperty{name: parts[3], dataType: parts[2], isList: true, countType: parts[1]}, nil
	}
	if len(parts) >= 2 && parts[0] != "list" {
		return plyProperty{name: parts[1], dataType: parts[0]}, nil
	}
	return plyProperty{}, fmt.Errorf("%w: bad property %q", ErrInvalidPLY, strings.Join(parts, " "))
}

// typeSize returns the byte width of a PLY scalar type, or 0 if unknown
func typeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

// Each row holds one value per scalar property; list properties expand to
// their values in place (the count itself is not stored).
func asciiElementReader(reader *bufio.Reader) func(*plyElement) ([][]float64, error) {
	return func(element *plyElement) ([][]float64, error) {
		rows := make([][]float64, 0, min(element.count, maxPreallocRows))
		for len(rows) < element.count {
			line, err := reader.ReadString('\n')
			fields := strings.Fields(line)
			if len(fields) == 0 {
				if err != nil {
					return nil, fmt.Errorf("expected %d rows, got %d", element.count, len(rows))
				}
				continue
			}

			var row []float64
			pos := 0
			next := func() (float64, error) {
				if pos >= len(fields) {
					return 0, fmt.Errorf("row %d: too few values", len(rows))
				}
				v, err := strconv.ParseFloat(fields[pos], 64)
				pos++
				return v, err
			}
			for _, prop := range element.properties {
				n := 1
				if prop.isList {
					count, err := next()
					if err != nil {
						return nil, err
					}
					n = int(count)
				}
				for k := 0; k < n; k++ {
					v, err := next()
					if err != nil {
						return nil, err
					}
					row = append(row, v)
				}
			}
			rows = append(rows, row)
		}
		return rows, nil
	}
}

func binaryElementReader(reader *bufio.Reader, order binary.ByteOrder) func(*plyElement) ([][]float64, error) {
	buf := make([]byte, 8)
	scalar := func(dataType string) (float64, error) {
		size := typeSize(dataType)
		if size == 0 {
			return 0, fmt.Errorf("unknown type %q", dataType)
		}
		if _, err := io.ReadFull(reader, buf[:size]); err != nil {
			return 0, err
		}
		b := buf[:size]
		switch dataType {
		case "char", "int8":
			return float64(int8(b[0])), nil
		case "uchar", "uint8":
			return float64(b[0]), nil
		case "short", "int16":
			return float64(int16(order.Uint16(b))), nil
		case "ushort", "uint16":
			return float64(order.Uint16(b)), nil
		case "int", "int32":
			return float64(int32(order.Uint32(b))), nil
		case "uint", "uint32":
			return float64(order.Uint32(b)), nil
		case "float", "float32":
			return float64(math.Float32frombits(order.Uint32(b))), nil
		default:
			return math.Float64frombits(order.Uint64(b)), nil
		}
	}

	return func(element *plyElement) ([][]float64, error) {
		rows := make([][]float64, 0, min(element.count, maxPreallocRows))
		for i := 0; i < element.count; i++ {
			var row []float64
			for _, prop := range element.properties {
				n := 1
				if prop.isList {
					count, err := scalar(prop.countType)
					if err != nil {
						return nil, err
					}
					n = int(count)
				}
				for k := 0; k < n; k++ {
					v, err := scalar(prop.dataType)
					if err != nil {
						return nil, err
					}
					row = append(row, v)
				}
			}
			rows = append(rows, row)
		}
		return rows, nil
	}
}

// propertyIndex returns the row offset of a scalar property, or -1. Only
// valid for elements whose properties before it are all scalars.
func propertyIndex(element *plyElement, name string) int {
	for i, prop := range element.properties {
		if prop.isList {
			return -1
		}
		if prop.name == name {
			return i
		}
	}
	return -1
}

func (d *PLYData) addVertices(element *plyElement, rows [][]float64) error {
	x, y, z := propertyIndex(element, "x"), propertyIndex(element, "y"), propertyIndex(element, "z")
	if x < 0 || y < 0 || z < 0 {
		return fmt.Errorf("%w: vertex element needs scalar x, y and z", ErrInvalidPLY)
	}
	nx, ny, nz := propertyIndex(element, "nx"), propertyIndex(element, "ny"), propertyIndex(element, "nz")
	hasNormals := nx >= 0 && ny >= 0 && nz >= 0

	for _, row := range rows {
		d.Vertices = append(d.Vertices, core.NewVec3(row[x], row[y], row[z]))
		if hasNormals {
			d.Normals = append(d.Normals, core.NewVec3(row[nx], row[ny], row[nz]))
		}
	}
	return nil
}

func (d *PLYData) addFaces(element *plyElement, rows [][]float64) error {
	if len(element.properties) == 0 || !element.properties[0].isList {
		return fmt.Errorf("%w: face element must start with a vertex index list", ErrInvalidPLY)
	}
	if len(element.properties) > 1 {
		return fmt.Errorf("%w: extra face properties are not supported", ErrInvalidPLY)
	}

	for i, row := range rows {
		if len(row) < 3 {
			return fmt.Errorf("%w: face %d has %d vertices", ErrInvalidPLY, i, len(row))
		}
		for k := 1; k+1 < len(row); k++ {
			d.Faces = append(d.Faces, int(row[0]), int(row[k]), int(row[k+1]))
		}
	}
	return nil
}
