package wav

// DecodeBlock reconstructs a block's samples into out, which must have at
// least block.Length capacity. Grounded on block_codec.c's
// ssdpcm_block_decode: strictly sequential, one running sample threaded
// through every codeword.
func DecodeBlock(block *Block, out []Sample) {
	it := NewBlockIterator(block, out)
	for it.Index < block.Length {
		it.Step()
	}
}

// findBestDelta scans every codeword in the block's palette and returns
// the one the sigma tracker scores lowest, grounded on block_codec.c's
// find_best_delta_. Ties favor the lowest-indexed codeword, matching the
// reference's strict less-than comparison.
func findBestDelta(sigma *SigmaTracker, numSlopes int) Codeword {
	var best Codeword
	bestError := ^uint64(0)

	for c := 0; c < numSlopes; c++ {
		err := sigma.CalcError(Codeword(c))
		if err < bestError {
			bestError = err
			best = Codeword(c)
		}
	}

	return best
}

// EncodeBlock fills in block.Deltas greedily, choosing at each sample the
// codeword that minimizes sigma's distortion metric against in, and
// returns the accumulated distortion over the whole block. block.Slopes
// and block.InitialSample must already be set; in must have at least
// block.Length samples. Grounded on block_codec.c's ssdpcm_block_encode.
func EncodeBlock(block *Block, in []Sample, sigma *SigmaTracker) uint64 {
	it := NewBlockIterator(block, in)
	sigma.Init(it)

	for it.Index < block.Length {
		best := findBestDelta(sigma, len(block.Slopes))
		it.Enqueue(best)
		sigma.Advance()
	}

	return sigma.AccumulatedError()
}
