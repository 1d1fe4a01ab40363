package wav

// CombFilter applies the 2-tap post-filter used by the "c" (comb) modes
// (§4.8) to dest in place: each output sample becomes the average of the
// two original samples straddling it, reading ahead before overwriting
// so the filter operates on dest's pre-filter values despite running
// in-place. startingSample stands in for the sample immediately before
// dest[0] (the previous block's last reconstructed sample, or the
// stream's initial reference sample for the first block).
//
// Grounded on sample_filter.c's sample_filter_comb.
func CombFilter(dest []Sample, startingSample Sample) {
	if len(dest) == 0 {
		return
	}

	prevOriginal := dest[0]
	beforePrevOriginal := startingSample

	for i := 0; i < len(dest)-1; i++ {
		nextOriginal := dest[i+1]

		dest[i] = (prevOriginal + beforePrevOriginal) / 2

		beforePrevOriginal = prevOriginal
		prevOriginal = nextOriginal
	}

	dest[len(dest)-1] = (prevOriginal + beforePrevOriginal) / 2
}
