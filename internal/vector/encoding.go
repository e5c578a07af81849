package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Decode interprets data as rows*cols float32 values in row-major order.
// The length must be exactly rows*cols*4 bytes; nothing is truncated or padded.
// The returned matrix owns its memory, so data may be released afterwards.
func Decode(key string, data []byte, rows, cols int, order ByteOrder) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrInvalidShape, rows, cols)
	}
	bo, err := order.Binary()
	if err != nil {
		return nil, err
	}

	want := ByteSize(rows, cols)
	if int64(len(data)) != want {
		return nil, &SizeError{Key: key, Rows: rows, Cols: cols, Want: want, Got: int64(len(data))}
	}

	n := rows * cols
	result := make([]float32, n)
	for i := 0; i < n; i++ {
		result[i] = math.Float32frombits(bo.Uint32(data[i*BytesPerElement : (i+1)*BytesPerElement]))
	}
	return &Matrix{rows: rows, cols: cols, data: result}, nil
}

// EncodeFloats writes values as flat float32 bytes without a shape.
func EncodeFloats(values []float32, order ByteOrder) ([]byte, error) {
	bo, err := order.Binary()
	if err != nil {
		return nil, err
	}
	return appendFloats(nil, values, bo), nil
}

func appendFloats(dst []byte, values []float32, bo binary.ByteOrder) []byte {
	out := make([]byte, len(dst)+len(values)*BytesPerElement)
	copy(out, dst)
	off := len(dst)
	for i, f := range values {
		bo.PutUint32(out[off+i*BytesPerElement:], math.Float32bits(f))
	}
	return out
}
