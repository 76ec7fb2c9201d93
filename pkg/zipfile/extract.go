package zipfile

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"

	"zipread/pkg/format"
)

// ReadFile extracts and verifies the contents of e.
//
// The local header at e.HeaderOffset is decoded first and trusted for the
// payload geometry and checksum; the central directory copies of those
// fields are not consulted again. Bytes are returned only after the
// CRC-32 check passes, so a non-nil result is always verified data.
func (r *Reader) ReadFile(e Entry) ([]byte, error) {
	if _, err := r.r.Seek(int64(e.HeaderOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek local header of %s: %w", e.Name, err)
	}
	h, err := format.ReadLocalFileHeader(r.r)
	if err != nil {
		return nil, fmt.Errorf("local header of %s: %w", e.Name, err)
	}

	// ReadLocalFileHeader consumed exactly TotalSize bytes, so the stream
	// is already positioned on the payload.
	data, err := r.readPayload(h)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", e.Name, err)
	}

	if sum := crc32.ChecksumIEEE(data); sum != h.CRC32 {
		return nil, fmt.Errorf("%w: entry %s: computed %08x, header declares %08x",
			ErrChecksum, e.Name, sum, h.CRC32)
	}
	return data, nil
}

// readPayload reads the payload following h and undoes its compression.
func (r *Reader) readPayload(h *format.LocalFileHeader) ([]byte, error) {
	switch h.Method {
	case format.Store:
		data := make([]byte, h.UncompressedSize)
		if _, err := io.ReadFull(r.r, data); err != nil {
			return nil, fmt.Errorf("read stored data: %w", err)
		}
		return data, nil

	case format.Deflate:
		compressed := make([]byte, h.CompressedSize)
		if _, err := io.ReadFull(r.r, compressed); err != nil {
			return nil, fmt.Errorf("read compressed data: %w", err)
		}
		fr := flate.NewReader(bytes.NewReader(compressed))
		defer fr.Close()
		data, err := io.ReadAll(fr)
		if err != nil {
			return nil, fmt.Errorf("inflate: %w", err)
		}
		if len(data) != int(h.UncompressedSize) {
			return nil, fmt.Errorf("%w: inflated to %d bytes, header declares %d",
				ErrSizeMismatch, len(data), h.UncompressedSize)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("%w: compression %s", format.ErrUnsupported, h.Method)
	}
}

// Extract writes the verified contents of e to dst. Nothing is written
// when extraction or verification fails.
func (r *Reader) Extract(e Entry, dst io.Writer) error {
	data, err := r.ReadFile(e)
	if err != nil {
		return err
	}
	if _, err := dst.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", e.Name, err)
	}
	return nil
}
