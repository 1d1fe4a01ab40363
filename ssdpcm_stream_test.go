package wav

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

// sineLikeSignal fabricates a deterministic, bounded pseudo-waveform so
// tests don't depend on any external fixture.
func sineLikeSignal(n int, amplitude Sample) []Sample {
	out := make([]Sample, n)
	for i := range out {
		phase := i % 16
		if phase < 8 {
			out[i] = amplitude * Sample(phase) / 8
		} else {
			out[i] = amplitude * Sample(16-phase) / 8
		}
	}
	return out
}

func roundTripSSDPCM(t *testing.T, mode Mode, width uint8, hasRef bool, channels [][]Sample) [][]Sample {
	t.Helper()

	require.NoError(t, os.MkdirAll("testOutput", 0o777))
	outPath := path.Join("testOutput", "ssdpcm_roundtrip_"+mode.String()+".wav")

	f, err := os.Create(outPath)
	require.NoError(t, err)
	defer os.Remove(outPath)

	enc := NewEncoder(f, 8000, int(width)*8, len(channels), wavFormatExtensible)
	chunk := NewSSDPCMChunk(mode, width*8, uint16(mode.DefaultBlockLength()), hasRef)

	_, err = EncodeSSDPCMChannels(enc, chunk, channels, NewGenericSigmaTracker, false)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := os.Open(outPath)
	require.NoError(t, err)
	defer r.Close()

	dec := NewDecoder(r)
	require.NoError(t, dec.FwdToPCM())
	require.NotNil(t, dec.SSDPCM)
	require.True(t, IsSSDPCM(dec.FmtChunk))

	decoded, _, err := DecodeSSDPCMChannels(dec, len(channels[0]))
	require.NoError(t, err)

	return decoded
}

func TestSSDPCMRoundTripMonoSS1(t *testing.T) {
	target := sineLikeSignal(300, 50)
	target[0] = 128

	decoded := roundTripSSDPCM(t, ModeSS1, 8, false, [][]Sample{target})

	require.Equal(t, target[0], decoded[0][0])
}

func TestSSDPCMRoundTripStereoSS2(t *testing.T) {
	left := sineLikeSignal(260, 40)
	right := sineLikeSignal(260, 25)
	left[0], right[0] = 100, 200

	decoded := roundTripSSDPCM(t, ModeSS2, 8, false, [][]Sample{left, right})

	require.Equal(t, left[0], decoded[0][0])
	require.Equal(t, right[0], decoded[1][0])
	require.Len(t, decoded, 2)
}

func TestSSDPCMRoundTripSS3SixteenBit(t *testing.T) {
	target := sineLikeSignal(250, 5000)
	target[0] = 0

	decoded := roundTripSSDPCM(t, ModeSS3, 16, false, [][]Sample{target})

	require.Equal(t, target[0], decoded[0][0])
}

func TestSSDPCMRoundTripWithReferenceOnEveryBlock(t *testing.T) {
	target := sineLikeSignal(300, 60)
	target[0] = 128

	decoded := roundTripSSDPCM(t, ModeSS1, 8, true, [][]Sample{target})

	require.Equal(t, target[0], decoded[0][0])
}

// TestSSDPCMDegenerateConstantSignal covers the all-equal-samples edge
// case: every block should pick the zero slope and reproduce the
// constant exactly.
func TestSSDPCMDegenerateConstantSignal(t *testing.T) {
	target := make([]Sample, 200)
	for i := range target {
		target[i] = 42
	}

	decoded := roundTripSSDPCM(t, ModeSS1_6, 8, false, [][]Sample{target})

	for i, v := range decoded[0] {
		require.Equalf(t, Sample(42), v, "sample %d", i)
	}
}

func TestSSDPCMMixedRadixPackerModes(t *testing.T) {
	for _, mode := range []Mode{ModeSS1_6, ModeSS2_3, ModeSS3} {
		t.Run(mode.String(), func(t *testing.T) {
			target := sineLikeSignal(2*mode.DefaultBlockLength()+1, 30)
			target[0] = 64

			decoded := roundTripSSDPCM(t, mode, 8, false, [][]Sample{target})
			require.Equal(t, target[0], decoded[0][0])
			require.Len(t, decoded[0], len(target))
		})
	}
}

func TestSSDPCMParallelMatchesSequentialOutput(t *testing.T) {
	target := sineLikeSignal(500, 70)
	target[0] = 12

	require.NoError(t, os.MkdirAll("testOutput", 0o777))

	seqPath := path.Join("testOutput", "ssdpcm_seq.wav")
	parPath := path.Join("testOutput", "ssdpcm_par.wav")
	defer os.Remove(seqPath)
	defer os.Remove(parPath)

	fSeq, err := os.Create(seqPath)
	require.NoError(t, err)

	encSeq := NewEncoder(fSeq, 8000, 8, 1, wavFormatExtensible)
	chunkSeq := NewSSDPCMChunk(ModeSS1, 8, uint16(ModeSS1.DefaultBlockLength()), true)
	_, err = EncodeSSDPCMChannels(encSeq, chunkSeq, [][]Sample{target}, NewGenericSigmaTracker, false)
	require.NoError(t, err)
	require.NoError(t, fSeq.Close())

	fPar, err := os.Create(parPath)
	require.NoError(t, err)

	encPar := NewEncoder(fPar, 8000, 8, 1, wavFormatExtensible)
	chunkPar := NewSSDPCMChunk(ModeSS1, 8, uint16(ModeSS1.DefaultBlockLength()), true)
	_, err = EncodeSSDPCMChannelsParallel(encPar, chunkPar, [][]Sample{target}, NewGenericSigmaTracker, false, 4)
	require.NoError(t, err)
	require.NoError(t, fPar.Close())

	seqBytes, err := os.ReadFile(seqPath)
	require.NoError(t, err)

	parBytes, err := os.ReadFile(parPath)
	require.NoError(t, err)

	require.Equal(t, seqBytes, parBytes)
}

func TestSSDPCMParallelRejectsWithoutReferenceFlag(t *testing.T) {
	require.NoError(t, os.MkdirAll("testOutput", 0o777))
	outPath := path.Join("testOutput", "ssdpcm_par_reject.wav")
	defer os.Remove(outPath)

	f, err := os.Create(outPath)
	require.NoError(t, err)
	defer f.Close()

	enc := NewEncoder(f, 8000, 8, 1, wavFormatExtensible)
	chunk := NewSSDPCMChunk(ModeSS1, 8, uint16(ModeSS1.DefaultBlockLength()), false)

	_, err = EncodeSSDPCMChannelsParallel(enc, chunk, [][]Sample{{1, 2, 3}}, NewGenericSigmaTracker, false, 2)
	require.ErrorIs(t, err, ErrSSDPCMInvalidArg)
}

func TestSSDPCMChunkHeaderSurvivesRoundTrip(t *testing.T) {
	target := sineLikeSignal(150, 20)
	target[0] = 10

	require.NoError(t, os.MkdirAll("testOutput", 0o777))
	outPath := path.Join("testOutput", "ssdpcm_header.wav")

	f, err := os.Create(outPath)
	require.NoError(t, err)
	defer os.Remove(outPath)

	enc := NewEncoder(f, 8000, 8, 1, wavFormatExtensible)
	chunk := NewSSDPCMChunk(ModeSS1, 8, uint16(ModeSS1.DefaultBlockLength()), false)

	_, err = EncodeSSDPCMChannels(enc, chunk, [][]Sample{target}, NewGenericSigmaTracker, false)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := os.Open(outPath)
	require.NoError(t, err)
	defer r.Close()

	dec := NewDecoder(r)
	require.NoError(t, dec.FwdToPCM())

	require.Equal(t, ModeSS1, dec.SSDPCM.Mode)
	require.Equal(t, uint8(8), dec.SSDPCM.BitsPerOutputSample)
	require.Equal(t, chunk.BlockLength, dec.SSDPCM.BlockLength)
	require.Equal(t, chunk.BytesPerBlock, dec.SSDPCM.BytesPerBlock)
}
