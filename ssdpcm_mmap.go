package wav

import (
	"fmt"
	"io"

	"codeberg.org/go-mmap/mmap"
)

// MmapReader adapts a memory-mapped file to io.ReadSeeker, letting
// NewDecoder read a large SSDPCM stream without copying its data chunk
// into process memory up front -- useful for cmd/ssdpcm's decode path
// against multi-gigabyte captures.
type MmapReader struct {
	file   *mmap.File
	size   int64
	offset int64
}

// OpenMmapReader memory-maps path for reading.
func OpenMmapReader(path string) (*MmapReader, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat mmapped file: %w", err)
	}

	return &MmapReader{file: f, size: info.Size()}, nil
}

// Read implements io.Reader.
func (m *MmapReader) Read(p []byte) (int, error) {
	if m.offset >= m.size {
		return 0, io.EOF
	}

	n, err := m.file.ReadAt(p, m.offset)
	m.offset += int64(n)

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("mmap read failed: %w", err)
	}

	return n, err
}

// Seek implements io.Seeker.
func (m *MmapReader) Seek(offset int64, whence int) (int64, error) {
	var target int64

	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = m.offset + offset
	case io.SeekEnd:
		target = m.size + offset
	default:
		return 0, fmt.Errorf("%w: invalid whence %d", ErrSSDPCMInvalidArg, whence)
	}

	if target < 0 {
		return 0, fmt.Errorf("%w: negative seek position", ErrSSDPCMInvalidOffset)
	}

	m.offset = target

	return m.offset, nil
}

// Close releases the underlying mapping.
func (m *MmapReader) Close() error {
	if err := m.file.Close(); err != nil {
		return fmt.Errorf("failed to close mmapped file: %w", err)
	}

	return nil
}
