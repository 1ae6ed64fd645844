// Package vectorcodec reads and writes the binary test vector files shared
// between the oracle generator and the kernel binaries.
//
// A file is a header of little-endian int32 values followed by float32 or
// int32 arrays in an operator-specific order. header[0] always holds the
// number of 4-byte elements that follow it.
package vectorcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

const wordSize = 4

var ErrMalformedVector = errors.New("malformed test vector")

// Payload is one array appended after the header.
type Payload interface {
	Len() int
	appendTo(b []byte) []byte
}

type Float32s []float32

func (f Float32s) Len() int { return len(f) }

func (f Float32s) appendTo(b []byte) []byte {
	for _, v := range f {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

type Int32s []int32

func (s Int32s) Len() int { return len(s) }

func (s Int32s) appendTo(b []byte) []byte {
	for _, v := range s {
		b = binary.LittleEndian.AppendUint32(b, uint32(v))
	}
	return b
}

// Encode concatenates the header and payloads in the given order.
func Encode(header []int32, payloads ...Payload) []byte {
	n := len(header)
	for _, p := range payloads {
		n += p.Len()
	}
	b := make([]byte, 0, n*wordSize)
	b = Int32s(header).appendTo(b)
	for _, p := range payloads {
		b = p.appendTo(b)
	}
	return b
}

// Decode splits a file into its headerLen-element header and the raw payload.
func Decode(b []byte, headerLen int) ([]int32, []byte, error) {
	if headerLen < 0 {
		return nil, nil, fmt.Errorf("%w: negative header length %d", ErrMalformedVector, headerLen)
	}
	if len(b)%wordSize != 0 {
		return nil, nil, fmt.Errorf("%w: length %d is not a multiple of %d", ErrMalformedVector, len(b), wordSize)
	}
	if len(b) < headerLen*wordSize {
		return nil, nil, fmt.Errorf("%w: %d bytes is shorter than a %d-element header",
			ErrMalformedVector, len(b), headerLen)
	}
	header := make([]int32, headerLen)
	for i := range header {
		header[i] = int32(binary.LittleEndian.Uint32(b[i*wordSize:]))
	}
	return header, b[headerLen*wordSize:], nil
}

// Validate checks that header[0] matches the number of elements after it.
func Validate(b []byte) error {
	header, _, err := Decode(b, 1)
	if err != nil {
		return err
	}
	remaining := len(b)/wordSize - 1
	if int(header[0]) != remaining {
		return fmt.Errorf("%w: header declares %d elements, file holds %d",
			ErrMalformedVector, header[0], remaining)
	}
	return nil
}

// DecodeFloat32s interprets raw payload bytes as float32 values.
func DecodeFloat32s(b []byte) (Float32s, error) {
	if len(b)%wordSize != 0 {
		return nil, fmt.Errorf("%w: payload length %d is not a multiple of %d", ErrMalformedVector, len(b), wordSize)
	}
	out := make(Float32s, len(b)/wordSize)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*wordSize:]))
	}
	return out, nil
}

// DecodeInt32s interprets raw payload bytes as int32 values.
func DecodeInt32s(b []byte) (Int32s, error) {
	if len(b)%wordSize != 0 {
		return nil, fmt.Errorf("%w: payload length %d is not a multiple of %d", ErrMalformedVector, len(b), wordSize)
	}
	out := make(Int32s, len(b)/wordSize)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(b[i*wordSize:]))
	}
	return out, nil
}

func WriteFile(path string, header []int32, payloads ...Payload) error {
	if err := os.WriteFile(path, Encode(header, payloads...), 0644); err != nil {
		return fmt.Errorf("failed to write test vector %s: %w", path, err)
	}
	return nil
}

// ValidateFile reads path and checks the self-describing header.
func ValidateFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read test vector %s: %w", path, err)
	}
	if err := Validate(b); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
