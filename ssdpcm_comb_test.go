package wav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCombFilterAveragesNeighbors(t *testing.T) {
	dest := []Sample{10, 20, 30, 40}
	CombFilter(dest, 0)

	// out[i] = (original[i] + original[i-1]) / 2, with original[-1] the
	// starting sample and original[len] repeating the last value.
	require.Equal(t, []Sample{5, 15, 25, 35}, dest)
}

func TestCombFilterSingleSample(t *testing.T) {
	dest := []Sample{50}
	CombFilter(dest, 10)
	require.Equal(t, []Sample{30}, dest)
}

func TestCombFilterEmptyIsNoop(t *testing.T) {
	var dest []Sample
	require.NotPanics(t, func() { CombFilter(dest, 5) })
}

func TestCombFilterConstantSignalIsFixedPoint(t *testing.T) {
	dest := []Sample{7, 7, 7, 7, 7}
	CombFilter(dest, 7)
	require.Equal(t, []Sample{7, 7, 7, 7, 7}, dest)
}
