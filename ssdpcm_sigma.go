package wav

// SigmaTracker accumulates a distortion metric across a block's samples as
// the encoder chooses codewords one at a time (§4.4). CalcError evaluates a
// candidate codeword without committing to it; Advance commits whatever
// codeword the caller already wrote into the block (via BlockIterator.
// Enqueue) and folds its real error into the running total.
//
// All six SSDPCM distortion metrics share this shape and differ only in
// how a single-sample error is computed, so they are expressed here as one
// struct parameterized by a sigmaConfig rather than six separate types.
type SigmaTracker struct {
	cfg sigmaConfig

	inputBuf  []Sample
	decodeBuf []Sample
	shadow    *BlockIterator
	accError  uint64
}

// sigmaConfig selects one of the six metrics: mask==0 means the plain,
// unmasked metric; a non-zero mask selects the low-mask comparison used by
// the overflow-aware metrics, with overflowMultiplier penalizing any
// predicted sample that doesn't fit in the mask. comb enables the 2-tap
// averaging pre-filter applied to both the predicted and expected sample.
type sigmaConfig struct {
	mask               Sample
	overflowMultiplier Sample
	comb               bool
}

// NewGenericSigmaTracker reports plain squared error with no masking and no
// comb filtering, grounded on sigma_generic.c.
func NewGenericSigmaTracker() *SigmaTracker {
	return &SigmaTracker{cfg: sigmaConfig{}}
}

// NewGenericCombSigmaTracker is NewGenericSigmaTracker with the comb
// pre-filter applied, grounded on sigma_generic_comb.c.
func NewGenericCombSigmaTracker() *SigmaTracker {
	return &SigmaTracker{cfg: sigmaConfig{comb: true}}
}

// NewU8OverflowSigmaTracker compares only the low 8 bits of predicted vs.
// expected, penalizing predictions that overflow a u8, grounded on
// sigma_u8_overflow.c.
func NewU8OverflowSigmaTracker() *SigmaTracker {
	return &SigmaTracker{cfg: sigmaConfig{mask: 0xff, overflowMultiplier: 4}}
}

// NewU8OverflowCombSigmaTracker is the u8-overflow metric with the comb
// pre-filter and a much heavier overflow penalty, grounded on
// sigma_u8_overflow_comb.c.
func NewU8OverflowCombSigmaTracker() *SigmaTracker {
	return &SigmaTracker{cfg: sigmaConfig{mask: 0xff, overflowMultiplier: 256, comb: true}}
}

// NewU7OverflowSigmaTracker is the u8-overflow metric narrowed to 7 bits,
// grounded on sigma_u7_overflow.c.
func NewU7OverflowSigmaTracker() *SigmaTracker {
	return &SigmaTracker{cfg: sigmaConfig{mask: 0x7f, overflowMultiplier: 4}}
}

// NewU7OverflowCombSigmaTracker is the 7-bit overflow metric with the comb
// pre-filter. Its source file did not survive distillation into the
// reference this package is built from; it is reconstructed here from
// sigma_u8_overflow_comb.c narrowed to a 7-bit mask, keeping the lighter
// overflow multiplier the plain u7/u8 pair shares (sigma_u7_overflow.c
// and sigma_u8_overflow.c both use 4, only the comb u8 variant jumps to
// 256).
func NewU7OverflowCombSigmaTracker() *SigmaTracker {
	return &SigmaTracker{cfg: sigmaConfig{mask: 0x7f, overflowMultiplier: 4, comb: true}}
}

// SigmaTrackerKinds is a name -> constructor dispatch table, standing in
// for the reference implementation's table of sigma_tracker_methods
// pointers.
var SigmaTrackerKinds = map[string]func() *SigmaTracker{
	"generic":          NewGenericSigmaTracker,
	"generic_comb":     NewGenericCombSigmaTracker,
	"u8_overflow":      NewU8OverflowSigmaTracker,
	"u8_overflow_comb": NewU8OverflowCombSigmaTracker,
	"u7_overflow":      NewU7OverflowSigmaTracker,
	"u7_overflow_comb": NewU7OverflowCombSigmaTracker,
}

// Init binds the tracker to a fresh block encode pass. iter is the
// encoder's own cursor; the tracker keeps its own shadow cursor over a
// reusable decode buffer so that trial codewords evaluated by CalcError
// never disturb the encoder's real state.
func (t *SigmaTracker) Init(iter *BlockIterator) {
	t.inputBuf = iter.Out
	t.accError = 0

	if cap(t.decodeBuf) < iter.Block.Length {
		t.decodeBuf = make([]Sample, iter.Block.Length)
	} else {
		t.decodeBuf = t.decodeBuf[:iter.Block.Length]
	}

	t.shadow = &BlockIterator{
		Block:         iter.Block,
		Out:           t.decodeBuf,
		Index:         iter.Index,
		RunningSample: iter.RunningSample,
	}
}

// calcSigma computes the configured distortion metric between a predicted
// sample and the expected input sample at the shadow cursor's current
// index, applying the comb pre-filter and overflow masking this tracker
// was configured with.
func (t *SigmaTracker) calcSigma(predicted Sample) uint64 {
	expected := t.inputBuf[t.shadow.Index]

	if t.cfg.comb && t.shadow.Index > 0 {
		predicted = (predicted + t.decodeBuf[t.shadow.Index-1]) / 2
		// Half-strength comb filter on the expected sample too; it reduces
		// hiss in the resulting distortion estimate.
		expected = (expected*2 + t.inputBuf[t.shadow.Index-1]) / 3
	}

	var diff Sample
	if t.cfg.mask != 0 {
		diff = (predicted & t.cfg.mask) - (expected & t.cfg.mask)
	} else {
		diff = predicted - expected
	}

	if diff < 0 {
		diff = -diff
	}

	if t.cfg.mask != 0 && predicted != predicted&t.cfg.mask {
		diff *= t.cfg.overflowMultiplier
	}

	return uint64(diff) * uint64(diff)
}

// CalcError reports the distortion that would result from choosing delta
// as the codeword for the shadow cursor's current sample, without
// committing to it.
func (t *SigmaTracker) CalcError(delta Codeword) uint64 {
	predicted := t.shadow.PredictedSample(delta)
	return t.calcSigma(predicted)
}

// Advance commits the codeword the encoder already wrote into the block
// at the shadow cursor's current index: it replays that codeword through
// the shadow decoder, folds the resulting real error into the running
// total, and moves the shadow cursor forward.
func (t *SigmaTracker) Advance() {
	t.shadow.stepNoAdvance()

	result := t.decodeBuf[t.shadow.Index]
	sigma := t.calcSigma(result)

	t.shadow.Index++
	t.accError += sigma
}

// AccumulatedError returns the running distortion total since Init.
func (t *SigmaTracker) AccumulatedError() uint64 {
	return t.accError
}
