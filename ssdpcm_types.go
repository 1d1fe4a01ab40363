package wav

// Sample is the codec's working integer type. All block math happens in
// this full-width signed type; clamping/wrapping only happens where PCM
// bytes are produced (see SampleCodec).
type Sample = int64

// Codeword indexes into a Block's slope palette.
type Codeword = uint8

// Mode identifies one of the six SSDPCM block layouts.
type Mode int

// The six SSDPCM modes, in increasing order of bitrate.
const (
	ModeSS1 Mode = iota
	ModeSS1C
	ModeSS1_6
	ModeSS2
	ModeSS2_3
	ModeSS3

	numModes
)

// modeInfo describes everything about a Mode that is otherwise a magic
// number scattered through the C reference implementation.
type modeInfo struct {
	fourCC             [4]byte
	numSlopes          int
	bytesPerReadAlign  int
	defaultBlockLength int
	comb               bool
}

var modeTable = [numModes]modeInfo{
	ModeSS1:   {fourCC: [4]byte{'s', 's', '1', ' '}, numSlopes: 2, bytesPerReadAlign: 1, defaultBlockLength: 64},
	ModeSS1C:  {fourCC: [4]byte{'s', 's', '1', 'c'}, numSlopes: 2, bytesPerReadAlign: 1, defaultBlockLength: 64, comb: true},
	ModeSS1_6: {fourCC: [4]byte{'s', '1', '.', '6'}, numSlopes: 3, bytesPerReadAlign: 1, defaultBlockLength: 65},
	ModeSS2:   {fourCC: [4]byte{'s', 's', '2', ' '}, numSlopes: 4, bytesPerReadAlign: 1, defaultBlockLength: 128},
	ModeSS2_3: {fourCC: [4]byte{'s', '2', '.', '3'}, numSlopes: 5, bytesPerReadAlign: 7, defaultBlockLength: 120},
	ModeSS3:   {fourCC: [4]byte{'s', 's', '3', ' '}, numSlopes: 8, bytesPerReadAlign: 3, defaultBlockLength: 120},
}

// NumModes returns the number of defined SSDPCM modes, letting callers
// outside the package range over wav.Mode(0)..wav.NumModes().
func NumModes() Mode { return numModes }

// modeFromFourCC looks up a Mode by its on-disk four-character code.
func modeFromFourCC(fourCC [4]byte) (Mode, error) {
	for m := Mode(0); m < numModes; m++ {
		if modeTable[m].fourCC == fourCC {
			return m, nil
		}
	}

	return 0, ErrSSDPCMUnrecognizedMode
}

// NumSlopes returns the slope-palette size for m (odd for ss1.6 and
// ss2.3, whose last palette entry stays 0).
func (m Mode) NumSlopes() int { return modeTable[m].numSlopes }

// IsComb reports whether m applies the comb post-filter (§4.8).
func (m Mode) IsComb() bool { return modeTable[m].comb }

// DefaultBlockLength is the samples-per-block the reference encoder uses
// for m absent an explicit override.
func (m Mode) DefaultBlockLength() int { return modeTable[m].defaultBlockLength }

// FourCC returns the on-disk mode identifier.
func (m Mode) FourCC() [4]byte { return modeTable[m].fourCC }

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeSS1:
		return "ss1"
	case ModeSS1C:
		return "ss1c"
	case ModeSS1_6:
		return "ss1.6"
	case ModeSS2:
		return "ss2"
	case ModeSS2_3:
		return "ss2.3"
	case ModeSS3:
		return "ss3"
	default:
		return "ss?"
	}
}

// Block is the per-channel unit of SSDPCM codec work (§3).
type Block struct {
	// InitialSample seeds the DPCM summation; it is the sample value
	// immediately preceding the first reconstructed sample of the block.
	InitialSample Sample

	// Slopes holds NumSlopes entries, symmetric about zero: Slopes[i] for
	// i < N/2 are strictly descending non-negative magnitudes, and
	// Slopes[i+N/2] == -Slopes[i].
	Slopes []Sample

	// Deltas holds one codeword per sample, selecting a Slopes index.
	Deltas []Codeword

	// Length is the number of samples this block encodes.
	Length int
}

// NewBlock allocates a Block with scratch Slopes/Deltas sized for
// numSlopes/length. Slopes and Deltas are owned by the block and are
// overwritten freely by the encoder.
func NewBlock(numSlopes, length int) *Block {
	return &Block{
		Slopes: make([]Sample, numSlopes),
		Deltas: make([]Codeword, length),
		Length: length,
	}
}

// checkSymmetry verifies the palette invariants of §3/§8 (properties 1-2).
func (b *Block) checkSymmetry() bool {
	half := len(b.Slopes) / 2
	for i := 1; i < half; i++ {
		if b.Slopes[i] >= b.Slopes[i-1] || b.Slopes[i] < 0 {
			return false
		}
	}

	for i := 0; i < half; i++ {
		if b.Slopes[i+half] != -b.Slopes[i] {
			return false
		}
	}

	return true
}

// setFirstHalf writes first[i] into Slopes[i] and its negation into
// Slopes[i+half], keeping the palette's symmetry invariant (§3).
func (b *Block) setFirstHalf(first []Sample) {
	half := len(first)
	for i, s := range first {
		b.Slopes[i] = s
		b.Slopes[i+half] = -s
	}
}

// BlockIterator is the decoder/encoder cursor of §3: it tracks the
// running DPCM sample as it walks a block's codewords.
type BlockIterator struct {
	Block         *Block
	Out           []Sample
	Index         int
	RunningSample Sample
}

// NewBlockIterator binds an iterator to block, seeded at
// block.InitialSample, writing decoded samples into out.
func NewBlockIterator(block *Block, out []Sample) *BlockIterator {
	return &BlockIterator{
		Block:         block,
		Out:           out,
		Index:         0,
		RunningSample: block.InitialSample,
	}
}

// PredictedSample returns what the running sample would become if c were
// chosen at the iterator's current index, without mutating any state.
func (it *BlockIterator) PredictedSample(c Codeword) Sample {
	return it.RunningSample + it.Block.Slopes[c]
}

// stepNoAdvance decodes block.Deltas[Index] into Out[Index] and updates
// RunningSample, without moving Index forward.
func (it *BlockIterator) stepNoAdvance() {
	c := it.Block.Deltas[it.Index]
	it.RunningSample = it.PredictedSample(c)
	it.Out[it.Index] = it.RunningSample
}

// Step decodes one sample and advances the cursor.
func (it *BlockIterator) Step() {
	it.stepNoAdvance()
	it.Index++
}

// Enqueue writes codeword c as the encoder's choice for the current
// sample and advances the cursor (encoder side; does not touch Out).
func (it *BlockIterator) Enqueue(c Codeword) {
	it.Block.Deltas[it.Index] = c
	it.Index++
}
