// Package zipfile provides read access to ZIP archives: locating the
// central directory, walking its entries and extracting verified file
// contents.
//
// The package decodes single-disk, non-encrypted archives whose entries
// are stored raw or DEFLATE compressed. Anything else is rejected with a
// typed error; nothing is guessed or repaired.
package zipfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"zipread/pkg/format"
)

var (
	// ErrNotZip means no end of central directory record was found.
	ErrNotZip = errors.New("not a zip archive")

	// ErrChecksum means extracted bytes do not match the declared CRC-32.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrNotFound means no entry carries the requested name.
	ErrNotFound = errors.New("entry not found in archive")

	// ErrSizeMismatch means the payload inflated to a length other than
	// the declared uncompressed size.
	ErrSizeMismatch = errors.New("decompressed size mismatch")
)

// Reader decodes a ZIP archive from a seekable stream.
//
// A Reader owns the stream position: every operation issues its own
// absolute seeks, so calls on one Reader must not overlap. Independent
// Readers over independently opened streams may run in parallel.
type Reader struct {
	r    io.ReadSeeker
	size int64
	end  *format.EndOfCentralDirectory
}

// NewReader locates the end of central directory record in r and returns
// a Reader for the archive it describes. Multi-disk and ZIP64 archives
// are rejected with format.ErrUnsupported; a stream with no end record
// is rejected with ErrNotZip.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek end: %w", err)
	}

	end, _, err := findEndRecord(r, size)
	if err != nil {
		return nil, err
	}

	if end.TotalEntryCount == 0xffff || end.DiskEntryCount == 0xffff ||
		end.DirectorySize == 0xffffffff || end.DirectoryOffset == 0xffffffff {
		return nil, fmt.Errorf("%w: zip64 archive", format.ErrUnsupported)
	}
	if end.DiskNumber != 0 || end.DirectoryDisk != 0 || end.DiskEntryCount != end.TotalEntryCount {
		return nil, fmt.Errorf("%w: multi-disk archive", format.ErrUnsupported)
	}

	return &Reader{r: r, size: size, end: end}, nil
}

// EntryCount returns the number of entries recorded in the central
// directory.
func (r *Reader) EntryCount() int {
	return int(r.end.TotalEntryCount)
}

// Comment returns the archive comment, empty when none was set.
func (r *Reader) Comment() string {
	return r.end.Comment
}

// scanChunkSize is the amount of trailing data examined per backward step
// while searching for the end of central directory signature.
const scanChunkSize = 4096

// findEndRecord scans backward from the end of the stream for the end of
// central directory record, returning the record and the offset it was
// found at. The candidate closest to the end that decodes cleanly and
// whose central directory lies in front of it wins; signature bytes
// embedded in a trailing comment are skipped that way.
func findEndRecord(r io.ReadSeeker, size int64) (*format.EndOfCentralDirectory, int64, error) {
	if size < format.EndOfCentralDirectorySize {
		return nil, 0, fmt.Errorf("%w: %d byte stream", ErrNotZip, size)
	}

	var sig [4]byte
	binary.LittleEndian.PutUint32(sig[:], format.EndOfCentralDirectorySignature)

	buf := make([]byte, scanChunkSize+3)
	for chunkEnd := size; chunkEnd > 0; {
		chunkStart := chunkEnd - scanChunkSize
		if chunkStart < 0 {
			chunkStart = 0
		}
		// Read 3 bytes past the chunk so a signature straddling the
		// boundary is still visible.
		readEnd := chunkEnd + 3
		if readEnd > size {
			readEnd = size
		}
		window := buf[:readEnd-chunkStart]
		if _, err := r.Seek(chunkStart, io.SeekStart); err != nil {
			return nil, 0, fmt.Errorf("seek scan chunk: %w", err)
		}
		if _, err := io.ReadFull(r, window); err != nil {
			return nil, 0, fmt.Errorf("read scan chunk: %w", err)
		}

		for i := int(chunkEnd-chunkStart) - 1; i >= 0; i-- {
			if i+4 > len(window) || !bytes.Equal(window[i:i+4], sig[:]) {
				continue
			}
			offset := chunkStart + int64(i)
			end, ok, err := decodeEndCandidate(r, offset)
			if err != nil {
				return nil, 0, err
			}
			if ok {
				return end, offset, nil
			}
		}
		chunkEnd = chunkStart
	}

	return nil, 0, fmt.Errorf("%w: no end of central directory record", ErrNotZip)
}

// decodeEndCandidate decodes a possible end record at offset and checks
// that the central directory it declares fits in front of it. Candidates
// that decode short or describe an impossible layout report ok=false so
// the scan keeps going; stream errors abort it.
func decodeEndCandidate(r io.ReadSeeker, offset int64) (*format.EndOfCentralDirectory, bool, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("seek end record: %w", err)
	}
	end, err := format.ReadEndOfCentralDirectory(r)
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF), errors.Is(err, format.ErrNonUTF8):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	// ZIP64 archives fill the geometry fields with all-ones markers and
	// record the real values elsewhere. Such a record cannot pass the
	// directory check, but it is still the end record; accept it here so
	// the caller rejects it as unsupported rather than invisible.
	if end.DirectoryOffset != 0xffffffff && end.DirectorySize != 0xffffffff {
		if uint64(end.DirectoryOffset)+uint64(end.DirectorySize) > uint64(offset) {
			return nil, false, nil
		}
	}
	return end, true, nil
}

// ReadCloser is a Reader that owns the underlying file.
type ReadCloser struct {
	f *os.File
	Reader
}

// OpenReader opens the archive file at path and prepares it for reading.
func OpenReader(path string) (*ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &ReadCloser{f: f, Reader: *r}, nil
}

// Close closes the underlying file.
func (rc *ReadCloser) Close() error {
	return rc.f.Close()
}
