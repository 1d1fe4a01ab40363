package wav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeBlockSearchPreservesPaletteInvariant(t *testing.T) {
	block := NewBlock(8, 20)
	block.InitialSample = 100

	target := make([]Sample, 20)
	for i := range target {
		target[i] = Sample(100 + 30*((i%4)-2))
	}

	EncodeBlockSearch(block, target, NewGenericSigmaTracker())

	require.True(t, block.checkSymmetry())

	half := len(block.Slopes) / 2
	for i := 1; i < half; i++ {
		require.LessOrEqual(t, block.Slopes[i], block.Slopes[i-1])
	}
}

func TestBruteForceMatchesOrBeatsCoarseToFine(t *testing.T) {
	target := []Sample{10, -5, 15, -20, 8, -3, 0, 12}

	blockSearch := NewBlock(8, len(target))
	blockSearch.InitialSample = 0
	errSearch := EncodeBlockSearch(blockSearch, target, NewGenericSigmaTracker())

	blockBrute := NewBlock(8, len(target))
	blockBrute.InitialSample = 0
	errBrute := EncodeBlockBruteForce(blockBrute, target, NewGenericSigmaTracker())

	// Brute force exhaustively covers the same search space the
	// coarse-to-fine pass only samples, so it can never do worse.
	require.LessOrEqual(t, errBrute, errSearch)
}

func TestBruteForceOnSingleSlopePairFindsExactMatch(t *testing.T) {
	block := NewBlock(2, 6)
	block.InitialSample = 0

	target := []Sample{7, 14, 21, 28, 35, 42}
	accErr := EncodeBlockBruteForce(block, target, NewGenericSigmaTracker())

	require.Zero(t, accErr)

	out := make([]Sample, len(target))
	DecodeBlock(block, out)
	require.Equal(t, target, out)
}

func TestMaxAbsSuccessiveDelta(t *testing.T) {
	in := []Sample{0, 5, -10, 3, 3}
	require.Equal(t, Sample(15), maxAbsSuccessiveDelta(in, len(in)))
	require.Equal(t, Sample(0), maxAbsSuccessiveDelta(in, 1))
}
