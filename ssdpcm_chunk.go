package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// CIDSsDP is the chunk ID for the SSDPCM extra-parameters sub-chunk.
var CIDSsDP = [4]byte{'S', 's', 'D', 'P'}

// ssdpcmSubFormatGUID is WAVE_FORMAT_EXTENSIBLE's sub-format GUID for
// SSDPCM, spelling "SSDPCM:Kagamiin~" in ASCII once laid out byte-for-
// byte (GUIDs have their own, famously inconsistent, endianness).
var ssdpcmSubFormatGUID = [16]byte{
	0x53, 0x53, 0x44, 0x50, 0x43, 0x4d, 0x3a, 0x4b,
	0x61, 0x67, 0x61, 0x6d, 0x69, 0x69, 0x6e, 0x7e,
}

var (
	errSsDPNilChunk   = errors.New("can't decode a nil chunk")
	errSsDPNilDecoder = errors.New("nil decoder")
)

// SSDPCMChunk is the on-disk SsDP sub-chunk: the fixed-size block of
// parameters a WAVE_FORMAT_EXTENSIBLE/SSDPCM stream needs beyond the
// ordinary fmt chunk. Grounded on wav_file.c's wav_ssdpcm_extra_chunk.
type SSDPCMChunk struct {
	Mode                           Mode
	BitsPerOutputSample            uint8
	BytesPerReadAlignment          uint8
	HasReferenceSampleOnEveryBlock bool
	BlockLength                    uint16
	BytesPerBlock                  uint16
}

// NewSSDPCMChunk computes a full SsDP chunk for a fresh encode: mode and
// blockLength select the palette size and block-header-data size;
// bitsPerOutputSample (8 or 16) selects the reference/slope sample
// width. blockLength must be a multiple of the mode's packer group size
// (8 for ss1/ss1c, 5 for ss1.6, 4 for ss2, 24 for ss2.3, 8 for ss3) or
// the returned BytesPerBlock will not have room for every codeword.
// Grounded on wav_file.c's wav_init_ssdpcm.
func NewSSDPCMChunk(mode Mode, bitsPerOutputSample uint8, blockLength uint16, hasReferenceSample bool) *SSDPCMChunk {
	c := &SSDPCMChunk{
		Mode:                           mode,
		BitsPerOutputSample:            bitsPerOutputSample,
		BytesPerReadAlignment:          uint8(modeTable[mode].bytesPerReadAlign),
		HasReferenceSampleOnEveryBlock: hasReferenceSample,
		BlockLength:                    blockLength,
	}

	c.BytesPerBlock = c.codeBytesForLength(blockLength) + c.headerDataSize()

	return c
}

// sampleSizeBytes is the byte width of one reference/slope sample.
func (c *SSDPCMChunk) sampleSizeBytes() uint16 {
	return uint16(c.BitsPerOutputSample) / 8
}

// headerDataSize is the portion of BytesPerBlock spent on the slope
// palette's positive half (the reference sample, when present, is
// always stored outside BytesPerBlock -- see the package doc comment on
// the has-reference-sample-on-every-block resolution).
func (c *SSDPCMChunk) headerDataSize() uint16 {
	return c.sampleSizeBytes() * uint16(c.Mode.NumSlopes()/2)
}

// codeBytesForLength computes the packed-codeword byte count for a block
// of the given length, matching wav_file.c's per-mode integer formulas
// exactly (they only agree with the simpler ceil(length/groupSize) form
// when length is an exact multiple of the packer's group size, which
// every default block length in this package is).
func (c *SSDPCMChunk) codeBytesForLength(length uint16) uint16 {
	l := uint32(length)

	var bytes uint32
	switch c.Mode {
	case ModeSS1, ModeSS1C:
		bytes = (l + 7) / 8
	case ModeSS1_6:
		bytes = (l + 4) / 5
	case ModeSS2:
		bytes = (l + 3) / 4
	case ModeSS2_3:
		bytes = (l*7 + 23) / 24
	case ModeSS3:
		bytes = (l*3 + 7) / 8
	}

	return uint16(bytes)
}

// CodeBytesPerBlock is the number of BytesPerBlock spent on packed
// codewords, i.e. BytesPerBlock minus the slope palette's header data.
// The reference implementation's equivalent query
// (wav_get_ssdpcm_code_bytes_per_block) also subtracts a reference-
// sample width when HasReferenceSampleOnEveryBlock is set, but nothing
// in its own read/write/init paths ever allocates that extra width
// inside BytesPerBlock -- the reference sample always lives immediately
// before it instead. That subtraction is treated here as the
// implementation bug it is and not reproduced.
func (c *SSDPCMChunk) CodeBytesPerBlock() uint16 {
	return c.BytesPerBlock - c.headerDataSize()
}

// BlockStride is the total bytes a channel's block occupies on disk,
// including the leading reference sample on the blocks that carry one.
func (c *SSDPCMChunk) BlockStride(withReference bool) uint16 {
	if withReference {
		return c.BytesPerBlock + c.sampleSizeBytes()
	}

	return c.BytesPerBlock
}

// ReadFrom parses an SsDP chunk payload, grounded on
// wav_read_ssdpcm_extra_chunk_.
func (c *SSDPCMChunk) ReadFrom(r io.Reader) error {
	var fourCC [4]byte
	if _, err := io.ReadFull(r, fourCC[:]); err != nil {
		return fmt.Errorf("ssdpcm: failed to read mode fourcc: %w", err)
	}

	mode, err := modeFromFourCC(fourCC)
	if err != nil {
		return err
	}

	c.Mode = mode

	if err := binary.Read(r, binary.LittleEndian, &c.BitsPerOutputSample); err != nil {
		return fmt.Errorf("ssdpcm: failed to read bits per output sample: %w", err)
	}

	if err := binary.Read(r, binary.LittleEndian, &c.BytesPerReadAlignment); err != nil {
		return fmt.Errorf("ssdpcm: failed to read bytes per read alignment: %w", err)
	}

	var hasRef uint8
	if err := binary.Read(r, binary.LittleEndian, &hasRef); err != nil {
		return fmt.Errorf("ssdpcm: failed to read reference-sample flag: %w", err)
	}

	c.HasReferenceSampleOnEveryBlock = hasRef != 0

	if err := binary.Read(r, binary.LittleEndian, &c.BlockLength); err != nil {
		return fmt.Errorf("ssdpcm: failed to read block length: %w", err)
	}

	if err := binary.Read(r, binary.LittleEndian, &c.BytesPerBlock); err != nil {
		return fmt.Errorf("ssdpcm: failed to read bytes per block: %w", err)
	}

	return nil
}

// Bytes serializes the chunk payload, the inverse of ReadFrom.
func (c *SSDPCMChunk) Bytes() []byte {
	var buf bytes.Buffer

	fourCC := c.Mode.FourCC()
	buf.Write(fourCC[:])

	_ = binary.Write(&buf, binary.LittleEndian, c.BitsPerOutputSample)
	_ = binary.Write(&buf, binary.LittleEndian, c.BytesPerReadAlignment)

	var hasRef uint8
	if c.HasReferenceSampleOnEveryBlock {
		hasRef = 1
	}
	_ = binary.Write(&buf, binary.LittleEndian, hasRef)

	_ = binary.Write(&buf, binary.LittleEndian, c.BlockLength)
	_ = binary.Write(&buf, binary.LittleEndian, c.BytesPerBlock)

	return buf.Bytes()
}

// IsSSDPCM reports whether fc declares the SSDPCM WAVE_FORMAT_EXTENSIBLE
// sub-format.
func IsSSDPCM(fc *FmtChunk) bool {
	return fc != nil && fc.FormatTag == wavFormatExtensible && fc.Extensible != nil &&
		fc.Extensible.SubFormat == ssdpcmSubFormatGUID
}

// ssdpcmChunkHandler plugs SsDP sub-chunk decoding/encoding into the
// shared chunk registry, following the same shape as bextChunkHandler
// and cartChunkHandler.
type ssdpcmChunkHandler struct{}

func (h *ssdpcmChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == CIDSsDP
}

func (h *ssdpcmChunkHandler) Decode(d *Decoder, ch *riff.Chunk) error {
	return DecodeSSDPCMChunk(d, ch)
}

// Encode is a no-op: the SsDP chunk must precede the data chunk so a
// sequential decoder knows the block layout before it starts reading
// samples, so Encoder.writeHeader writes it directly rather than through
// the metadata registry's post-data pass.
func (h *ssdpcmChunkHandler) Encode(_ *Encoder) error {
	return nil
}

// DecodeSSDPCMChunk decodes an SsDP chunk into d.SSDPCM.
func DecodeSSDPCMChunk(d *Decoder, ch *riff.Chunk) error {
	if ch == nil {
		return errSsDPNilChunk
	}

	if d == nil {
		return errSsDPNilDecoder
	}

	if ch.ID != CIDSsDP {
		ch.Drain()
		return nil
	}

	buf := make([]byte, ch.Size)
	if _, err := io.ReadFull(ch, buf); err != nil {
		return fmt.Errorf("failed to read the SsDP chunk: %w", err)
	}

	extra := &SSDPCMChunk{}
	if err := extra.ReadFrom(bytes.NewReader(buf)); err != nil {
		return err
	}

	d.SSDPCM = extra

	return nil
}
