package embedding

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Matrix is a row-major float32 embedding matrix. Row i holds the vector for
// the entity at snapshot position i; that alignment is the contract every
// consumer relies on.
type Matrix struct {
	rows int
	cols int
	data []float32
}

func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]float32, rows*cols)}
}

func (m *Matrix) Rows() int { return m.rows }

func (m *Matrix) Cols() int { return m.cols }

// Row returns the vector at position i. The returned slice aliases the
// backing array and must not be mutated.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

func (m *Matrix) SetRow(i int, v []float32) error {
	if len(v) != m.cols {
		return fmt.Errorf("vector length %d does not match matrix width %d", len(v), m.cols)
	}
	copy(m.data[i*m.cols:(i+1)*m.cols], v)
	return nil
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. A zero vector
// on either side yields 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// Guard against float drift outside the mathematical range.
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}

// Binary matrix format: magic, version, row count, column count, then the
// raw little-endian float32 payload.
const (
	matrixMagic   = uint32(0x57474d58) // "WGMX"
	matrixVersion = uint32(1)
)

func (m *Matrix) WriteTo(w io.Writer) error {
	header := []uint32{matrixMagic, matrixVersion, uint32(m.rows), uint32(m.cols)}
	for _, h := range header {
		if err := binary.Write(w, binary.LittleEndian, h); err != nil {
			return err
		}
	}
	return binary.Write(w, binary.LittleEndian, m.data)
}

func ReadMatrix(r io.Reader) (*Matrix, error) {
	var magic, version, rows, cols uint32
	for _, p := range []*uint32{&magic, &version, &rows, &cols} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, fmt.Errorf("read matrix header: %w", err)
		}
	}
	if magic != matrixMagic {
		return nil, fmt.Errorf("bad matrix magic 0x%08x", magic)
	}
	if version != matrixVersion {
		return nil, fmt.Errorf("unsupported matrix version %d", version)
	}

	m := NewMatrix(int(rows), int(cols))
	if err := binary.Read(r, binary.LittleEndian, m.data); err != nil {
		return nil, fmt.Errorf("read matrix payload: %w", err)
	}
	return m, nil
}

func (m *Matrix) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadMatrixFile(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMatrix(f)
}
