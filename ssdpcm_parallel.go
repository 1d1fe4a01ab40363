package wav

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/go-audio/riff"
)

// EncodeSSDPCMChannelsParallel is EncodeSSDPCMChannels' multithreaded
// variant (§5): workers claim blocks from a monotonic atomic counter and
// encode them independently, each writing its own block directly at its
// final file offset under a shared mutex. This only works because every
// block carries its own reference sample, so no block's encode depends
// on another's decoded output -- chunk.HasReferenceSampleOnEveryBlock
// must be set, mirroring the parallel-encode precondition of §5.
//
// workers <= 0 defaults to runtime.GOMAXPROCS(0).
func EncodeSSDPCMChannelsParallel(e *Encoder, chunk *SSDPCMChunk, channels [][]Sample, sigma SigmaFactory, bruteForce bool, workers int) (*CodewordHistogram, error) {
	if e == nil || chunk == nil {
		return nil, ErrSSDPCMNullPointer
	}

	if !chunk.HasReferenceSampleOnEveryBlock {
		return nil, fmt.Errorf("%w: parallel encode requires a reference sample on every block", ErrSSDPCMInvalidArg)
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

	// Header bookkeeping (§5's "header-size bookkeeping" critical
	// section) runs single-threaded before any worker starts.
	if err := e.writeHeader(); err != nil {
		return nil, err
	}

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

	width := chunk.BitsPerOutputSample / 8
	refAndSlopeBytes := int(chunk.sampleSizeBytes())*(1+chunk.Mode.NumSlopes()/2) * numChans

	numBlocks := (streamLen - 1 + int(chunk.BlockLength) - 1) / int(chunk.BlockLength)
	if numBlocks < 0 {
		numBlocks = 0
	}

	// Every block but possibly the last is full-length, but the final
	// block's codeword byte count still depends only on its length, not
	// on anything a worker computes -- so every block's on-disk offset
	// is known up front, letting workers seek-and-write independently
	// without needing to know each other's output size.
	blockOffsets := make([]int64, numBlocks+1)
	blockOffsets[0] = int64(dataStart)

	for i := 0; i < numBlocks; i++ {
		pos := 1 + i*int(chunk.BlockLength)
		length := int(chunk.BlockLength)
		if remaining := streamLen - pos; remaining < length {
			length = remaining
		}

		recordSize := refAndSlopeBytes + int(chunk.codeBytesForLength(uint16(length)))*numChans
		blockOffsets[i+1] = blockOffsets[i] + int64(recordSize)
	}

	dataSize := int(blockOffsets[numBlocks] - int64(dataStart))

	// Pre-size the data region so every worker can seek-and-write its
	// own block without racing the file's length.
	if err := e.growDataRegion(dataStart, dataSize); err != nil {
		return nil, err
	}

	var (
		nextBlock int64 = -1
		writeMu   sync.Mutex
		wg        sync.WaitGroup
		firstErr  error
		errMu     sync.Mutex
		hist      = newCodewordHistogram()
		histMu    sync.Mutex
	)

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for {
				blockIndex := atomic.AddInt64(&nextBlock, 1)
				pos := 1 + int(blockIndex)*int(chunk.BlockLength)

				if pos >= streamLen {
					return
				}

				length := int(chunk.BlockLength)
				if remaining := streamLen - pos; remaining < length {
					length = remaining
				}

				record := make([]byte, 0, refAndSlopeBytes+int(chunk.CodeBytesPerBlock())*numChans)

				for c := 0; c < numChans; c++ {
					block := NewBlock(chunk.Mode.NumSlopes(), length)
					block.InitialSample = channels[c][pos-1]

					tracker := sigma()
					target := channels[c][pos : pos+length]

					if bruteForce {
						EncodeBlockBruteForce(block, target, tracker)
					} else {
						EncodeBlockSearch(block, target, tracker)
					}

					chunkBytes, err := serializeBlockRecord(block, chunk.Mode, width, chunk.Mode.NumSlopes()/2)
					if err != nil {
						errMu.Lock()
						if firstErr == nil {
							firstErr = err
						}
						errMu.Unlock()

						return
					}

					record = append(record, chunkBytes...)

					histMu.Lock()
					for _, d := range block.Deltas {
						hist.record(d)
					}
					histMu.Unlock()
				}

				offset := blockOffsets[blockIndex]

				writeMu.Lock()
				err := e.writeAt(offset, record)
				writeMu.Unlock()

				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()

					return
				}
			}
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	e.WrittenBytes = dataStart + dataSize

	if err := finalizeSSDPCMWrite(e, dataSizePos, dataStart); err != nil {
		return nil, err
	}

	return hist, nil
}

// serializeBlockRecord packs one channel's block record (reference
// sample, positive slope half, packed codewords) the same way the
// sequential driver does, but into a standalone buffer instead of
// streaming writes, since parallel workers can't share the encoder's
// running write cursor.
func serializeBlockRecord(block *Block, mode Mode, width uint8, half int) ([]byte, error) {
	var buf []byte

	appendSample := func(v Sample) error {
		switch width {
		case 1:
			var b [1]uint8
			EncodeU8Overflow(b[:], []Sample{v})
			buf = append(buf, b[0])
		case 2:
			var b [1]int16
			EncodeS16(b[:], []Sample{v})
			buf = append(buf, byte(b[0]), byte(b[0]>>8))
		default:
			return fmt.Errorf("%w: bits per output sample width %d", ErrSSDPCMUnsupportedBitDepth, width*8)
		}

		return nil
	}

	if err := appendSample(block.InitialSample); err != nil {
		return nil, err
	}

	for i := 0; i < half; i++ {
		if err := appendSample(block.Slopes[i]); err != nil {
			return nil, err
		}
	}

	buf = append(buf, packCodewords(mode, block.Deltas)...)

	return buf, nil
}

// growDataRegion extends the output file so offsets within
// [dataStart, dataStart+size) can be written independently by parallel
// workers, then restores the writer to dataStart.
func (e *Encoder) growDataRegion(dataStart, size int) error {
	if size == 0 {
		return nil
	}

	if _, err := e.w.Seek(int64(dataStart+size-1), io.SeekStart); err != nil {
		return fmt.Errorf("failed to grow data region: %w", err)
	}

	if _, err := e.w.Write([]byte{0}); err != nil {
		return fmt.Errorf("failed to grow data region: %w", err)
	}

	if _, err := e.w.Seek(int64(dataStart), io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind after growing data region: %w", err)
	}

	return nil
}

// writeAt seeks to offset and writes data, the primitive parallel
// workers serialize through writeMu around (§5's "wav_write_ssdpcm_block"
// critical section).
func (e *Encoder) writeAt(offset int64, data []byte) error {
	if _, err := e.w.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to block offset: %w", err)
	}

	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("failed to write block record: %w", err)
	}

	return nil
}
