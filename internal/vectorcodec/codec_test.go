package vectorcodec_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/kernval/internal/vectorcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMixedPayloads(t *testing.T) {
	header := []int32{7, 1, 2, 3}
	f := vectorcodec.Float32s{1.0, 2.0, 3.0}
	i := vectorcodec.Int32s{4, 5, 6}

	b := vectorcodec.Encode(header, f, i)
	require.Len(t, b, 16+12+12)

	gotHeader, payload, err := vectorcodec.Decode(b, len(header))
	require.NoError(t, err)
	assert.Equal(t, header, gotHeader)
	require.Len(t, payload, 24)

	floats, err := vectorcodec.DecodeFloat32s(payload[:12])
	require.NoError(t, err)
	assert.Equal(t, f, floats)

	ints, err := vectorcodec.DecodeInt32s(payload[12:])
	require.NoError(t, err)
	assert.Equal(t, i, ints)
}

func TestRoundTripReproducesConcatenatedPayload(t *testing.T) {
	cases := []struct {
		name     string
		header   []int32
		payloads []vectorcodec.Payload
	}{
		{"header only", []int32{0}, nil},
		{"empty header", nil, []vectorcodec.Payload{vectorcodec.Float32s{-1.5}}},
		{"negative ints", []int32{3, -1}, []vectorcodec.Payload{vectorcodec.Int32s{-7, 0}}},
		{"several floats", []int32{5, 2, 2}, []vectorcodec.Payload{
			vectorcodec.Float32s{0.25, -0.5},
			vectorcodec.Float32s{3.75},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var want []byte
			for _, p := range tc.payloads {
				want = append(want, vectorcodec.Encode(nil, p)...)
			}

			header, payload, err := vectorcodec.Decode(vectorcodec.Encode(tc.header, tc.payloads...), len(tc.header))
			require.NoError(t, err)
			assert.Equal(t, len(tc.header), len(header))
			for k := range tc.header {
				assert.Equal(t, tc.header[k], header[k])
			}
			assert.True(t, bytes.Equal(want, payload))
		})
	}
}

func TestEncodeIsLittleEndian(t *testing.T) {
	b := vectorcodec.Encode([]int32{1}, vectorcodec.Float32s{1.0})
	assert.Equal(t, []byte{1, 0, 0, 0, 0x00, 0x00, 0x80, 0x3f}, b)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	_, _, err := vectorcodec.Decode([]byte{1, 2, 3}, 0)
	require.ErrorIs(t, err, vectorcodec.ErrMalformedVector)

	_, _, err = vectorcodec.Decode(make([]byte, 8), 3)
	require.ErrorIs(t, err, vectorcodec.ErrMalformedVector)

	_, _, err = vectorcodec.Decode(make([]byte, 8), -1)
	require.ErrorIs(t, err, vectorcodec.ErrMalformedVector)
}

func TestValidateChecksSelfDescribingTotal(t *testing.T) {
	// 16 header values after the total, 4 inputs and 2 outputs.
	header := make([]int32, 17)
	header[0] = 16 + 4 + 2
	ok := vectorcodec.Encode(header, vectorcodec.Float32s{1, 2, 3, 4}, vectorcodec.Float32s{5, 6})
	require.NoError(t, vectorcodec.Validate(ok))

	header[0] = 21
	bad := vectorcodec.Encode(header, vectorcodec.Float32s{1, 2, 3, 4}, vectorcodec.Float32s{5, 6})
	require.ErrorIs(t, vectorcodec.Validate(bad), vectorcodec.ErrMalformedVector)

	require.ErrorIs(t, vectorcodec.Validate(nil), vectorcodec.ErrMalformedVector)
}

func TestWriteAndValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "add_test_data_f32.bin")
	require.NoError(t, vectorcodec.WriteFile(path, []int32{3, 1}, vectorcodec.Float32s{0.5, 0.5}))
	require.NoError(t, vectorcodec.ValidateFile(path))

	require.NoError(t, os.WriteFile(path, []byte{9, 0, 0, 0}, 0644))
	require.ErrorIs(t, vectorcodec.ValidateFile(path), vectorcodec.ErrMalformedVector)

	require.Error(t, vectorcodec.ValidateFile(filepath.Join(t.TempDir(), "missing.bin")))
}
