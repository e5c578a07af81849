package vector

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Matrix is a dense row-major array of float32 values.
// Element (i, j) is stored at index i*cols+j.
type Matrix struct {
	rows int
	cols int
	data []float32
}

// NewMatrix wraps data as a rows x cols matrix. The slice is copied.
func NewMatrix(rows, cols int, data []float32) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrInvalidShape, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d elements do not fill (%d, %d)", ErrInvalidShape, len(data), rows, cols)
	}
	owned := make([]float32, len(data))
	copy(owned, data)
	return &Matrix{rows: rows, cols: cols, data: owned}, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m *Matrix) Shape() (int, int) { return m.rows, m.cols }

// Len returns the number of elements.
func (m *Matrix) Len() int { return len(m.data) }

// At returns element (i, j).
func (m *Matrix) At(i, j int) float32 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("vector: index (%d, %d) out of range for shape (%d, %d)", i, j, m.rows, m.cols))
	}
	return m.data[i*m.cols+j]
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float32 {
	row := make([]float32, m.cols)
	copy(row, m.data[i*m.cols:(i+1)*m.cols])
	return row
}

// Column returns column j widened to float64, for plotting and statistics.
func (m *Matrix) Column(j int) []float64 {
	col := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		col[i] = float64(m.data[i*m.cols+j])
	}
	return col
}

// Data returns a copy of the flat row-major elements.
func (m *Matrix) Data() []float32 {
	out := make([]float32, len(m.data))
	copy(out, m.data)
	return out
}

// Equal reports whether both matrices have the same shape and bit-identical elements.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i, v := range m.data {
		if math.Float32bits(v) != math.Float32bits(other.data[i]) {
			return false
		}
	}
	return true
}

// Digest returns the xxhash64 of the element bits in little-endian order.
// Two matrices with equal digests and shapes are bit-identical in practice.
func (m *Matrix) Digest() uint64 {
	h := xxhash.New()
	var buf [BytesPerElement]byte
	for _, v := range m.data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}
