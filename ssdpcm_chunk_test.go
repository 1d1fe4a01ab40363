package wav

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSSDPCMChunkByteRoundTrip(t *testing.T) {
	chunk := NewSSDPCMChunk(ModeSS2_3, 16, 120, true)

	buf := chunk.Bytes()

	var decoded SSDPCMChunk
	require.NoError(t, decoded.ReadFrom(bytes.NewReader(buf)))

	require.Equal(t, *chunk, decoded)
}

func TestNewSSDPCMChunkComputesBytesPerBlock(t *testing.T) {
	chunk := NewSSDPCMChunk(ModeSS1, 8, 64, false)

	// ss1: 2 slopes, 1-byte samples, 64 codewords at 1 bit each.
	require.Equal(t, uint16(1), chunk.headerDataSize())
	require.Equal(t, uint16(8), chunk.CodeBytesPerBlock())
	require.Equal(t, uint16(9), chunk.BytesPerBlock)
}

func TestBlockStrideAddsReferenceSampleWidth(t *testing.T) {
	chunk := NewSSDPCMChunk(ModeSS3, 16, 120, false)

	require.Equal(t, chunk.BytesPerBlock, chunk.BlockStride(false))
	require.Equal(t, chunk.BytesPerBlock+2, chunk.BlockStride(true))
}

func TestIsSSDPCMRecognizesSubFormatGUID(t *testing.T) {
	fc := &FmtChunk{
		FormatTag: wavFormatExtensible,
		Extensible: &FmtExtensible{
			SubFormat: ssdpcmSubFormatGUID,
		},
	}

	require.True(t, IsSSDPCM(fc))

	other := &FmtChunk{FormatTag: wavFormatPCM}
	require.False(t, IsSSDPCM(other))
	require.False(t, IsSSDPCM(nil))
}

func TestModeFromFourCCRoundTrip(t *testing.T) {
	for m := Mode(0); m < numModes; m++ {
		got, err := modeFromFourCC(m.FourCC())
		require.NoError(t, err)
		require.Equal(t, m, got)
	}

	_, err := modeFromFourCC([4]byte{'n', 'o', 'p', 'e'})
	require.ErrorIs(t, err, ErrSSDPCMUnrecognizedMode)
}
