package wav

import "errors"

// Error taxonomy for the SSDPCM codec and container extensions. These
// mirror the C reference implementation's err_t enum one-for-one, but as
// idiomatic wrapped sentinel errors instead of an integer table.
var (
	// Stream-boundary.
	ErrSSDPCMEndOfStream        = errors.New("ssdpcm: end of stream")
	ErrSSDPCMPrematureEndOfFile = errors.New("ssdpcm: premature end of file")

	// Container-format.
	ErrSSDPCMNotARiffFile         = errors.New("ssdpcm: not a RIFF file")
	ErrSSDPCMNotAWaveFile         = errors.New("ssdpcm: not a WAVE file")
	ErrSSDPCMMissingFmtChunk      = errors.New("ssdpcm: missing fmt chunk")
	ErrSSDPCMMissingDataChunk     = errors.New("ssdpcm: missing data chunk")
	ErrSSDPCMFmtChunkTooSmall     = errors.New("ssdpcm: fmt chunk too small")
	ErrSSDPCMUnrecognizedFormat   = errors.New("ssdpcm: unrecognized wav format")
	ErrSSDPCMUnrecognizedSubFmt   = errors.New("ssdpcm: unrecognized sub-format GUID")
	ErrSSDPCMInvalidSubHeader     = errors.New("ssdpcm: invalid sub-header")
	ErrSSDPCMNotSSDPCM            = errors.New("ssdpcm: not an SSDPCM wav file")
	ErrSSDPCMUnrecognizedMode     = errors.New("ssdpcm: unrecognized mode fourcc")
	ErrSSDPCMTooManySlopes        = errors.New("ssdpcm: too many slopes")
	ErrSSDPCMUnsupportedBitDepth  = errors.New("ssdpcm: unsupported bits per sample")
	ErrSSDPCMMismatchedByteRate   = errors.New("ssdpcm: mismatched byte rate")
	ErrSSDPCMMismatchedBlockAlign = errors.New("ssdpcm: mismatched block align")

	// Parameter.
	ErrSSDPCMNullPointer      = errors.New("ssdpcm: nil argument")
	ErrSSDPCMInvalidArg       = errors.New("ssdpcm: invalid argument")
	ErrSSDPCMInvalidOffset    = errors.New("ssdpcm: invalid offset")
	ErrSSDPCMReadOnlyFile     = errors.New("ssdpcm: file is read-only")
	ErrSSDPCMOnlyMonoOrStereo = errors.New("ssdpcm: only mono or stereo supported")

	// Resource.
	ErrSSDPCMAlloc       = errors.New("ssdpcm: allocation failure")
	ErrSSDPCMCannotOpen  = errors.New("ssdpcm: cannot open file")
	ErrSSDPCMNotSeekable = errors.New("ssdpcm: file is not seekable")
	ErrSSDPCMReadError   = errors.New("ssdpcm: read error")
	ErrSSDPCMWriteError  = errors.New("ssdpcm: write error")

	// Logic.
	ErrSSDPCMNotImplemented = errors.New("ssdpcm: not implemented")
)
