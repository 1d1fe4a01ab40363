package wav

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-audio/riff"
	"github.com/kelindar/intmap"
)

// CodewordHistogram tallies how often each codeword value gets chosen
// across an encode or decode pass. original_source has no equivalent;
// this is a supplemented diagnostic (SPEC_FULL.md §12) for judging how
// hard a mode's palette is actually being worked.
type CodewordHistogram struct {
	counts *intmap.Map
}

func newCodewordHistogram() *CodewordHistogram {
	return &CodewordHistogram{counts: intmap.New(64, 0.95)}
}

func (h *CodewordHistogram) record(c Codeword) {
	v, _ := h.counts.Load(uint32(c))
	h.counts.Store(uint32(c), v+1)
}

// Count returns how many times codeword c has been recorded.
func (h *CodewordHistogram) Count(c Codeword) uint32 {
	v, _ := h.counts.Load(uint32(c))
	return v
}

// Log emits the full per-codeword usage breakdown for mode at info level.
func (h *CodewordHistogram) Log(mode Mode) {
	for c := 0; c < mode.NumSlopes(); c++ {
		log.Infof("ssdpcm: codeword %d used %d times", c, h.Count(Codeword(c)))
	}
}

// writeRawSample writes one reference/slope sample at the chunk's output
// width, reusing the §4.7 sample codec so its overflow/clamp policy
// stays in one place.
func writeRawSample(e *Encoder, width uint8, v Sample) error {
	switch width {
	case 1:
		var b [1]uint8
		EncodeU8Overflow(b[:], []Sample{v})
		return e.AddLE(b[0])
	case 2:
		var b [1]int16
		EncodeS16(b[:], []Sample{v})
		return e.AddLE(b[0])
	default:
		return fmt.Errorf("%w: bits per output sample width %d", ErrSSDPCMUnsupportedBitDepth, width*8)
	}
}

// readRawSample is writeRawSample's inverse.
func readRawSample(r io.Reader, width uint8) (Sample, error) {
	switch width {
	case 1:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		var out [1]Sample
		DecodeU8(out[:], b[:])

		return out[0], nil
	case 2:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}

		v := int16(b[0]) | int16(b[1])<<8

		var out [1]Sample
		DecodeS16(out[:], []int16{v})

		return out[0], nil
	default:
		return 0, fmt.Errorf("%w: bits per output sample width %d", ErrSSDPCMUnsupportedBitDepth, width*8)
	}
}

// SigmaFactory produces a fresh SigmaTracker per block, matching
// SigmaTrackerKinds' constructor shape.
type SigmaFactory func() *SigmaTracker

// EncodeSSDPCMChannels drives a full block-by-block encode of channels
// (one Sample slice per channel, all the same length) into e, writing
// the fmt/SsDP header, the data chunk, and every block record, then
// patching the RIFF and data chunk sizes. chunk must already describe
// the mode/width/block length to use; e.SSDPCM is set from it. Grounded
// on the per-block loop contract of §4.10 and the concurrency model's
// sequential-encode baseline of §5 (see EncodeSSDPCMChannelsParallel for
// the parallel variant).
func EncodeSSDPCMChannels(e *Encoder, chunk *SSDPCMChunk, channels [][]Sample, sigma SigmaFactory, bruteForce bool) (*CodewordHistogram, error) {
	if e == nil || chunk == nil {
		return nil, ErrSSDPCMNullPointer
	}

	if len(channels) == 0 || len(channels) > 2 {
		return nil, ErrSSDPCMOnlyMonoOrStereo
	}

	numChans := len(channels)
	streamLen := len(channels[0])
	for c := 0; c < numChans; c++ {
		if len(channels[c]) != streamLen {
			return nil, fmt.Errorf("%w: channel length mismatch", ErrSSDPCMInvalidArg)
		}
	}

	e.SSDPCM = chunk

	if e.FmtChunk == nil || !IsSSDPCM(e.FmtChunk) {
		e.WavAudioFormat = wavFormatExtensible
		e.FmtChunk = &FmtChunk{
			FormatTag: wavFormatExtensible,
			Extensible: &FmtExtensible{
				ValidBitsPerSample: uint16(chunk.BitsPerOutputSample),
				SubFormat:          ssdpcmSubFormatGUID,
			},
		}
	}

	if err := e.writeHeader(); err != nil {
		return nil, err
	}

	// A fact chunk (conventional for any non-PCM WAVE_FORMAT_EXTENSIBLE
	// stream) carries the per-channel sample count, since SSDPCM's
	// supplemented partial-final-block support means the data chunk's
	// byte length alone can't tell a reader how many samples the last
	// block holds.
	if err := writeSSDPCMFactChunk(e, streamLen); err != nil {
		return nil, err
	}

	if err := e.writeUnknownChunks(true); err != nil {
		return nil, fmt.Errorf("failed to write pre-data unknown chunks: %w", err)
	}

	if err := e.AddLE(riff.DataFormatID); err != nil {
		return nil, fmt.Errorf("failed to write data chunk id: %w", err)
	}

	dataSizePos := e.WrittenBytes

	if err := e.AddLE(uint32(4294967295)); err != nil {
		return nil, fmt.Errorf("failed to write placeholder data chunk size: %w", err)
	}

	dataStart := e.WrittenBytes

	mode := chunk.Mode
	half := mode.NumSlopes() / 2
	width := chunk.BitsPerOutputSample / 8

	initSample := make([]Sample, numChans)
	for c := 0; c < numChans; c++ {
		initSample[c] = channels[c][0]
	}

	hist := newCodewordHistogram()
	decoded := make([]Sample, chunk.BlockLength)

	pos := 1
	blockIndex := 0

	for pos < streamLen {
		length := int(chunk.BlockLength)
		if remaining := streamLen - pos; remaining < length {
			length = remaining
		}

		writeReference := blockIndex == 0 || chunk.HasReferenceSampleOnEveryBlock

		for c := 0; c < numChans; c++ {
			block := NewBlock(mode.NumSlopes(), length)

			// With a reference sample on every block, each block is
			// seeded straight from the raw source instead of the
			// previous block's lossy reconstruction, so blocks carry no
			// cross-block dependency -- the precondition §5 requires
			// for the parallel encoder to split work across blocks.
			if chunk.HasReferenceSampleOnEveryBlock {
				block.InitialSample = channels[c][pos-1]
			} else {
				block.InitialSample = initSample[c]
			}

			target := channels[c][pos : pos+length]
			tracker := sigma()

			var err error
			if bruteForce {
				EncodeBlockBruteForce(block, target, tracker)
			} else {
				EncodeBlockSearch(block, target, tracker)
			}

			if writeReference {
				if err = writeRawSample(e, width, block.InitialSample); err != nil {
					return nil, fmt.Errorf("failed to write reference sample: %w", err)
				}
			}

			for i := 0; i < half; i++ {
				if err = writeRawSample(e, width, block.Slopes[i]); err != nil {
					return nil, fmt.Errorf("failed to write slope %d: %w", i, err)
				}
			}

			packed := packCodewords(mode, block.Deltas)
			if n, werr := e.w.Write(packed); werr != nil {
				e.WrittenBytes += n
				return nil, fmt.Errorf("failed to write codewords: %w", werr)
			} else {
				e.WrittenBytes += n
			}

			for _, d := range block.Deltas {
				hist.record(d)
			}

			DecodeBlock(block, decoded[:length])
			initSample[c] = decoded[length-1]
		}

		pos += length
		blockIndex++
	}

	if err := finalizeSSDPCMWrite(e, dataSizePos, dataStart); err != nil {
		return nil, err
	}

	return hist, nil
}

// writeSSDPCMFactChunk writes a standard RIFF fact chunk carrying the
// per-channel sample count.
func writeSSDPCMFactChunk(e *Encoder, streamLen int) error {
	if err := e.AddLE(CIDFact); err != nil {
		return fmt.Errorf("failed to write fact chunk id: %w", err)
	}

	if err := e.AddLE(uint32(4)); err != nil {
		return fmt.Errorf("failed to write fact chunk size: %w", err)
	}

	if err := e.AddLE(uint32(streamLen)); err != nil {
		return fmt.Errorf("failed to write fact chunk sample count: %w", err)
	}

	return nil
}

// finalizeSSDPCMWrite patches the RIFF and data chunk sizes after a
// block-oriented stream write, mirroring Encoder.Close's size rewrite
// but computed from the actual bytes written rather than a sample/frame
// count (the block codec's records are not fixed-width per sample).
func finalizeSSDPCMWrite(e *Encoder, dataSizePos, dataStart int) error {
	if _, err := e.w.Seek(4, 0); err != nil {
		return fmt.Errorf("failed to seek to file size position: %w", err)
	}

	if err := e.AddLE(uint32(e.WrittenBytes) - 8); err != nil {
		return fmt.Errorf("failed to write total file size: %w", err)
	}
	e.WrittenBytes -= 4

	if _, err := e.w.Seek(int64(dataSizePos), 0); err != nil {
		return fmt.Errorf("failed to seek to data chunk size position: %w", err)
	}

	if err := e.AddLE(uint32(e.WrittenBytes - dataStart)); err != nil {
		return fmt.Errorf("failed to write data chunk size: %w", err)
	}
	e.WrittenBytes -= 4

	if _, err := e.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of stream: %w", err)
	}

	return nil
}

// packCodewords dispatches to the mode's codeword packer: ss1/ss1c/ss2
// have power-of-two palettes and use plain MSB-first bit packing at the
// mode's natural codeword width, while ss1.6/ss2.3/ss3 use their mixed-
// radix packers (§4.2).
func packCodewords(mode Mode, deltas []Codeword) []byte {
	switch mode {
	case ModeSS1_6:
		return PackSS1_6(deltas)
	case ModeSS2_3:
		return PackSS2_3(deltas)
	case ModeSS3:
		return PackSS3(deltas)
	default:
		width := codewordBitWidth(mode)
		buf := make([]byte, (len(deltas)*int(width)+7)/8)
		bb := NewBitBuffer(buf)

		for _, d := range deltas {
			PutBits(bb, uint32(d), width)
		}

		return buf
	}
}

// unpackCodewords is packCodewords' inverse, trimmed to length codewords.
func unpackCodewords(mode Mode, data []byte, length int) ([]Codeword, error) {
	switch mode {
	case ModeSS1_6:
		words := UnpackSS1_6(data)
		return trimCodewords(words, length), nil
	case ModeSS2_3:
		words := UnpackSS2_3(data)
		return trimCodewords(words, length), nil
	case ModeSS3:
		words := UnpackSS3(data)
		return trimCodewords(words, length), nil
	default:
		width := codewordBitWidth(mode)
		bb := NewBitBuffer(data)
		out := make([]Codeword, length)

		for i := 0; i < length; i++ {
			v, err := GetBits(bb, width)
			if err != nil {
				return nil, err
			}

			out[i] = Codeword(v)
		}

		return out, nil
	}
}

func trimCodewords(words []Codeword, length int) []Codeword {
	if len(words) > length {
		return words[:length]
	}

	return words
}

// codewordBitWidth is the fixed bit width a power-of-two mode's plain
// bit packer uses per codeword: log2(numSlopes).
func codewordBitWidth(mode Mode) uint8 {
	n := mode.NumSlopes()

	var width uint8
	for (1 << width) < n {
		width++
	}

	return width
}

// DecodeSSDPCMChannels drives a full block-by-block decode of d's PCM
// chunk, given the stream's SsDP parameters (d.SSDPCM) and the total
// per-channel sample count (including the seed sample every channel's
// first block carries). Grounded on §4.10's decode contract: the
// running initial_sample either comes from a reference sample on every
// block, or threads from the previous block's last decoded sample.
func DecodeSSDPCMChannels(d *Decoder, numSamples int) ([][]Sample, *CodewordHistogram, error) {
	if d == nil || d.SSDPCM == nil {
		return nil, nil, ErrSSDPCMNotSSDPCM
	}

	if d.PCMChunk == nil {
		return nil, nil, ErrSSDPCMMissingDataChunk
	}

	chunk := d.SSDPCM
	mode := chunk.Mode
	half := mode.NumSlopes() / 2
	width := chunk.BitsPerOutputSample / 8

	numChans := int(d.NumChans)
	if numChans == 0 {
		numChans = 1
	}

	if numChans > 2 {
		return nil, nil, ErrSSDPCMOnlyMonoOrStereo
	}

	channels := make([][]Sample, numChans)
	for c := range channels {
		channels[c] = make([]Sample, numSamples)
	}

	hist := newCodewordHistogram()

	initSample := make([]Sample, numChans)
	pos := 1
	blockIndex := 0

	for pos < numSamples {
		length := int(chunk.BlockLength)
		if remaining := numSamples - pos; remaining < length {
			length = remaining
		}

		readReference := blockIndex == 0 || chunk.HasReferenceSampleOnEveryBlock

		for c := 0; c < numChans; c++ {
			if readReference {
				v, err := readRawSample(d.PCMChunk.R, width)
				if err != nil {
					return nil, nil, fmt.Errorf("failed to read reference sample: %w", err)
				}

				initSample[c] = v

				if blockIndex == 0 {
					channels[c][0] = v
				}
			}

			block := NewBlock(mode.NumSlopes(), length)
			block.InitialSample = initSample[c]

			first := make([]Sample, half)
			for i := 0; i < half; i++ {
				v, err := readRawSample(d.PCMChunk.R, width)
				if err != nil {
					return nil, nil, fmt.Errorf("failed to read slope %d: %w", i, err)
				}

				first[i] = v
			}

			block.setFirstHalf(first)

			codeBytes := int(chunk.codeBytesForLength(uint16(length)))

			raw := make([]byte, codeBytes)
			if _, err := io.ReadFull(d.PCMChunk.R, raw); err != nil {
				return nil, nil, fmt.Errorf("failed to read codewords: %w", err)
			}

			deltas, err := unpackCodewords(mode, raw, length)
			if err != nil {
				return nil, nil, err
			}

			copy(block.Deltas, deltas)

			for _, dw := range block.Deltas {
				hist.record(dw)
			}

			DecodeBlock(block, channels[c][pos:pos+length])

			initSample[c] = channels[c][pos+length-1]

			if mode.IsComb() {
				CombFilter(channels[c][pos:pos+length], block.InitialSample)
			}
		}

		pos += length
		blockIndex++
	}

	return channels, hist, nil
}
