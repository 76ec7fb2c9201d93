package format

import (
	"encoding/binary"
	"fmt"
	"io"
)

// LocalFileHeader precedes every file payload in the archive. The length
// fields describe the variable tail; after decoding they always match
// len(Name) and len(Extra).
type LocalFileHeader struct {
	VersionNeeded    uint16
	Flags            FlagWord
	Method           CompressionMethod
	Modified         DosDateTime
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	NameLength       uint16
	ExtraLength      uint16
	Name             string
	Extra            []byte
}

// TotalSize returns the number of bytes the encoded header occupies,
// fixed part plus name and extra field. The file payload starts this many
// bytes after the header offset.
func (h *LocalFileHeader) TotalSize() int64 {
	return LocalFileHeaderSize + int64(len(h.Name)) + int64(len(h.Extra))
}

// ReadLocalFileHeader decodes a local file header from the current
// position of r, consuming exactly TotalSize bytes.
//
// Headers that declare encryption, a data descriptor, patched data or
// masked fields are rejected with ErrUnsupported: their payloads cannot
// be read from the header fields alone.
func ReadLocalFileHeader(r io.Reader) (*LocalFileHeader, error) {
	var buf [LocalFileHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("read local file header: %w", err)
	}
	if sig := binary.LittleEndian.Uint32(buf[0:4]); sig != LocalFileHeaderSignature {
		return nil, &SignatureError{Want: LocalFileHeaderSignature, Got: sig}
	}

	h := &LocalFileHeader{
		VersionNeeded:    binary.LittleEndian.Uint16(buf[4:6]),
		Flags:            FlagWord(binary.LittleEndian.Uint16(buf[6:8])),
		Method:           CompressionMethod(binary.LittleEndian.Uint16(buf[8:10])),
		Modified:         DosDateTime(binary.LittleEndian.Uint32(buf[10:14])),
		CRC32:            binary.LittleEndian.Uint32(buf[14:18]),
		CompressedSize:   binary.LittleEndian.Uint32(buf[18:22]),
		UncompressedSize: binary.LittleEndian.Uint32(buf[22:26]),
		NameLength:       binary.LittleEndian.Uint16(buf[26:28]),
		ExtraLength:      binary.LittleEndian.Uint16(buf[28:30]),
	}
	if err := h.Flags.rejectUnsupported(); err != nil {
		return nil, err
	}

	name, err := readString(r, int(h.NameLength), "file name")
	if err != nil {
		return nil, err
	}
	h.Name = name

	if h.ExtraLength > 0 {
		h.Extra = make([]byte, h.ExtraLength)
		if _, err := io.ReadFull(r, h.Extra); err != nil {
			return nil, fmt.Errorf("read extra field: %w", err)
		}
	}

	return h, nil
}

// MarshalBinary encodes the header. The length fields on the wire are
// derived from the actual Name and Extra contents.
func (h *LocalFileHeader) MarshalBinary() ([]byte, error) {
	if err := checkFieldLength(len(h.Name), "file name"); err != nil {
		return nil, err
	}
	if err := checkFieldLength(len(h.Extra), "extra field"); err != nil {
		return nil, err
	}

	buf := make([]byte, LocalFileHeaderSize+len(h.Name)+len(h.Extra))
	binary.LittleEndian.PutUint32(buf[0:4], LocalFileHeaderSignature)
	binary.LittleEndian.PutUint16(buf[4:6], h.VersionNeeded)
	binary.LittleEndian.PutUint16(buf[6:8], uint16(h.Flags))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(h.Method))
	binary.LittleEndian.PutUint32(buf[10:14], uint32(h.Modified))
	binary.LittleEndian.PutUint32(buf[14:18], h.CRC32)
	binary.LittleEndian.PutUint32(buf[18:22], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[22:26], h.UncompressedSize)
	binary.LittleEndian.PutUint16(buf[26:28], uint16(len(h.Name)))
	binary.LittleEndian.PutUint16(buf[28:30], uint16(len(h.Extra)))
	copy(buf[LocalFileHeaderSize:], h.Name)
	copy(buf[LocalFileHeaderSize+len(h.Name):], h.Extra)
	return buf, nil
}

// EncodeTo writes the encoded header to w.
func (h *LocalFileHeader) EncodeTo(w io.Writer) error {
	data, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write local file header: %w", err)
	}
	return nil
}
