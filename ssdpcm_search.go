package wav

import "math"

// searchOdometer sweeps the positive half of a block's slope palette over
// a caller-supplied per-position range, keeping the palette symmetric
// about zero at every step (a carry resets the lower positions to their
// floors, so they may briefly be equal rather than strictly descending,
// and such palettes are scored like any other), and returns
// the best accumulated distortion found along with leaving the winning
// slopes in block.Slopes. Grounded on encode_binary_search.c's
// do_binary_search_internal_: the positions are swept like an odometer,
// carrying from the least-significant (highest index) position toward
// the most-significant (index 0), which alone is allowed to grow without
// a carry target and so drives the loop's termination.
func searchOdometer(block *Block, in []Sample, sigma *SigmaTracker, step Sample, rangesLow, rangesHigh []Sample, maxAbsDelta Sample) uint64 {
	half := len(block.Slopes) / 2
	bestSlopes := make([]Sample, len(block.Slopes))
	bestMetric := ^uint64(0)

	for block.Slopes[0] <= maxAbsDelta && block.Slopes[0] <= rangesHigh[0] {
		metric := EncodeBlock(block, in, sigma)

		if metric < bestMetric {
			bestMetric = metric
			copy(bestSlopes, block.Slopes)
		}

		for i := half - 1; i >= 0; i-- {
			block.Slopes[i] += step

			if i > 0 && (block.Slopes[i] >= block.Slopes[i-1] || block.Slopes[i] > rangesHigh[i]) {
				block.Slopes[i] = rangesLow[i]
				block.Slopes[i+half] = -rangesLow[i]
				continue
			}

			block.Slopes[i+half] = -block.Slopes[i]
			break
		}
	}

	copy(block.Slopes, bestSlopes)
	return bestMetric
}

// chopParam is the base-2 logarithm offset (§4.6) used to seed the coarse
// sweep's step size from a block's largest successive-sample difference.
const chopParam = 4

// maxRange is used in place of the reference implementation's INT32_MAX
// sentinel for an unbounded upper range during the coarse sweep.
const maxRange Sample = math.MaxInt32

// coarseToFineSearch runs the multi-level coordinate-descent search of
// §4.6: a coarse sweep seeded from maxAbsDelta, followed by refinement
// levels that halve the step and narrow the window around the previous
// best slope, down to a terminal single-unit (chop==0) pass. Grounded on
// encode_binary_search.c's do_binary_search_.
func coarseToFineSearch(block *Block, in []Sample, sigma *SigmaTracker, maxAbsDelta Sample) {
	half := len(block.Slopes) / 2

	chopBits := 0
	if maxAbsDelta > 0 {
		chopBits = int(math.Round(math.Log2(float64(maxAbsDelta)))) - chopParam
		if chopBits < 0 {
			chopBits = 0
		}
	}

	rangesLow := make([]Sample, half)
	rangesHigh := make([]Sample, half)

	for i := 0; i < half; i++ {
		v := Sample(half-i-1) << uint(chopBits)
		block.Slopes[i] = v
		block.Slopes[i+half] = -v
		rangesLow[i] = 0
		rangesHigh[i] = maxRange
	}

	searchOdometer(block, in, sigma, 1<<uint(chopBits), rangesLow, rangesHigh, maxAbsDelta)

	for chopBits--; chopBits >= 0; chopBits-- {
		step := Sample(1) << uint(chopBits)

		for i := 0; i < half; i++ {
			block.Slopes[i] -= step
			if block.Slopes[i] < 0 {
				block.Slopes[i] += 2 * step
			}

			block.Slopes[i+half] = -block.Slopes[i]

			low := block.Slopes[i] - step
			if low < 0 {
				low = 0
			}

			rangesLow[i] = low
			rangesHigh[i] = block.Slopes[i] + step
		}

		searchOdometer(block, in, sigma, step, rangesLow, rangesHigh, maxAbsDelta)
	}
}

// maxAbsSuccessiveDelta scans in[:length] for the largest magnitude
// difference between successive samples, the seed statistic the palette
// search sizes its initial step from.
func maxAbsSuccessiveDelta(in []Sample, length int) Sample {
	var maxAbsDelta Sample

	for i := 1; i < length; i++ {
		d := in[i] - in[i-1]
		if d < 0 {
			d = -d
		}
		if d > maxAbsDelta {
			maxAbsDelta = d
		}
	}

	return maxAbsDelta
}

// EncodeBlockSearch picks a block's slope palette by coarse-to-fine
// coordinate descent and then encodes in against the winning palette,
// returning the accumulated distortion. block.InitialSample must already
// be set. Grounded on encode_binary_search.c's
// ssdpcm_encode_binary_search.
func EncodeBlockSearch(block *Block, in []Sample, sigma *SigmaTracker) uint64 {
	maxAbsDelta := maxAbsSuccessiveDelta(in, block.Length)

	coarseToFineSearch(block, in, sigma, maxAbsDelta)

	return EncodeBlock(block, in, sigma)
}

// EncodeBlockBruteForce picks a block's slope palette by exhaustive
// sweep: the same odometer as the coarse-to-fine search, but run once at
// unit step over the whole [0, maxAbsDelta] range instead of being
// seeded from a coarse pass, with no upper bound on any position but the
// most significant (which the odometer's own termination condition
// already caps at maxAbsDelta). Only practical for small palettes
// (num_slopes <= 8) since its cost is exponential in half the palette
// size. Grounded on encode_bruteforce.c's ssdpcm_encode_bruteforce.
func EncodeBlockBruteForce(block *Block, in []Sample, sigma *SigmaTracker) uint64 {
	half := len(block.Slopes) / 2

	maxAbsDelta := maxAbsSuccessiveDelta(in, block.Length)

	rangesLow := make([]Sample, half)
	rangesHigh := make([]Sample, half)

	for i := 0; i < half; i++ {
		v := Sample(half - i - 1)
		block.Slopes[i] = v
		block.Slopes[i+half] = -v
		rangesLow[i] = 0
		rangesHigh[i] = maxRange
	}

	searchOdometer(block, in, sigma, 1, rangesLow, rangesHigh, maxAbsDelta)

	return EncodeBlock(block, in, sigma)
}
