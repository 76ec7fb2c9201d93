package format

import (
	"encoding/binary"
	"fmt"
	"io"
)

// CentralDirectoryHeader is the per-entry record in the central directory.
// It repeats the local header fields and adds bookkeeping, most importantly
// LocalHeaderOffset, which locates the entry's local header in the stream.
type CentralDirectoryHeader struct {
	VersionMadeBy     uint16
	VersionNeeded     uint16
	Flags             FlagWord
	Method            CompressionMethod
	Modified          DosDateTime
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	NameLength        uint16
	ExtraLength       uint16
	CommentLength     uint16
	DiskNumberStart   uint16
	InternalAttrs     uint16
	ExternalAttrs     uint32
	LocalHeaderOffset uint32
	Name              string
	Extra             []byte
	Comment           string
}

// TotalSize returns the number of bytes the encoded header occupies,
// fixed part plus name, extra field and comment. Iteration advances by
// this amount from one directory header to the next.
func (h *CentralDirectoryHeader) TotalSize() int64 {
	return CentralDirectoryHeaderSize + int64(len(h.Name)) + int64(len(h.Extra)) + int64(len(h.Comment))
}

// ReadCentralDirectoryHeader decodes a central directory header from the
// current position of r, consuming exactly TotalSize bytes. Flag bits are
// preserved as decoded but not checked here; extraction re-reads the local
// header, which performs the check.
func ReadCentralDirectoryHeader(r io.Reader) (*CentralDirectoryHeader, error) {
	var buf [CentralDirectoryHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("read central directory header: %w", err)
	}
	if sig := binary.LittleEndian.Uint32(buf[0:4]); sig != CentralDirectoryHeaderSignature {
		return nil, &SignatureError{Want: CentralDirectoryHeaderSignature, Got: sig}
	}

	h := &CentralDirectoryHeader{
		VersionMadeBy:     binary.LittleEndian.Uint16(buf[4:6]),
		VersionNeeded:     binary.LittleEndian.Uint16(buf[6:8]),
		Flags:             FlagWord(binary.LittleEndian.Uint16(buf[8:10])),
		Method:            CompressionMethod(binary.LittleEndian.Uint16(buf[10:12])),
		Modified:          DosDateTime(binary.LittleEndian.Uint32(buf[12:16])),
		CRC32:             binary.LittleEndian.Uint32(buf[16:20]),
		CompressedSize:    binary.LittleEndian.Uint32(buf[20:24]),
		UncompressedSize:  binary.LittleEndian.Uint32(buf[24:28]),
		NameLength:        binary.LittleEndian.Uint16(buf[28:30]),
		ExtraLength:       binary.LittleEndian.Uint16(buf[30:32]),
		CommentLength:     binary.LittleEndian.Uint16(buf[32:34]),
		DiskNumberStart:   binary.LittleEndian.Uint16(buf[34:36]),
		InternalAttrs:     binary.LittleEndian.Uint16(buf[36:38]),
		ExternalAttrs:     binary.LittleEndian.Uint32(buf[38:42]),
		LocalHeaderOffset: binary.LittleEndian.Uint32(buf[42:46]),
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

	comment, err := readString(r, int(h.CommentLength), "file comment")
	if err != nil {
		return nil, err
	}
	h.Comment = comment

	return h, nil
}

// MarshalBinary encodes the header. The length fields on the wire are
// derived from the actual Name, Extra and Comment contents.
func (h *CentralDirectoryHeader) MarshalBinary() ([]byte, error) {
	if err := checkFieldLength(len(h.Name), "file name"); err != nil {
		return nil, err
	}
	if err := checkFieldLength(len(h.Extra), "extra field"); err != nil {
		return nil, err
	}
	if err := checkFieldLength(len(h.Comment), "file comment"); err != nil {
		return nil, err
	}

	buf := make([]byte, CentralDirectoryHeaderSize+len(h.Name)+len(h.Extra)+len(h.Comment))
	binary.LittleEndian.PutUint32(buf[0:4], CentralDirectoryHeaderSignature)
	binary.LittleEndian.PutUint16(buf[4:6], h.VersionMadeBy)
	binary.LittleEndian.PutUint16(buf[6:8], h.VersionNeeded)
	binary.LittleEndian.PutUint16(buf[8:10], uint16(h.Flags))
	binary.LittleEndian.PutUint16(buf[10:12], uint16(h.Method))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.Modified))
	binary.LittleEndian.PutUint32(buf[16:20], h.CRC32)
	binary.LittleEndian.PutUint32(buf[20:24], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[24:28], h.UncompressedSize)
	binary.LittleEndian.PutUint16(buf[28:30], uint16(len(h.Name)))
	binary.LittleEndian.PutUint16(buf[30:32], uint16(len(h.Extra)))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(len(h.Comment)))
	binary.LittleEndian.PutUint16(buf[34:36], h.DiskNumberStart)
	binary.LittleEndian.PutUint16(buf[36:38], h.InternalAttrs)
	binary.LittleEndian.PutUint32(buf[38:42], h.ExternalAttrs)
	binary.LittleEndian.PutUint32(buf[42:46], h.LocalHeaderOffset)

	offset := CentralDirectoryHeaderSize
	offset += copy(buf[offset:], h.Name)
	offset += copy(buf[offset:], h.Extra)
	copy(buf[offset:], h.Comment)
	return buf, nil
}

// EncodeTo writes the encoded header to w.
func (h *CentralDirectoryHeader) EncodeTo(w io.Writer) error {
	data, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write central directory header: %w", err)
	}
	return nil
}
