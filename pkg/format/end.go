package format

import (
	"encoding/binary"
	"fmt"
	"io"
)

// EndOfCentralDirectory is the record that terminates an archive. It
// locates the central directory and is itself located by scanning
// backward from the end of the stream.
type EndOfCentralDirectory struct {
	DiskNumber      uint16
	DirectoryDisk   uint16
	DiskEntryCount  uint16
	TotalEntryCount uint16
	DirectorySize   uint32
	DirectoryOffset uint32
	CommentLength   uint16
	Comment         string
}

// TotalSize returns the number of bytes the encoded record occupies,
// fixed part plus comment.
func (e *EndOfCentralDirectory) TotalSize() int64 {
	return EndOfCentralDirectorySize + int64(len(e.Comment))
}

// ReadEndOfCentralDirectory decodes an end of central directory record
// from the current position of r, consuming exactly TotalSize bytes.
func ReadEndOfCentralDirectory(r io.Reader) (*EndOfCentralDirectory, error) {
	var buf [EndOfCentralDirectorySize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("read end of central directory: %w", err)
	}
	if sig := binary.LittleEndian.Uint32(buf[0:4]); sig != EndOfCentralDirectorySignature {
		return nil, &SignatureError{Want: EndOfCentralDirectorySignature, Got: sig}
	}

	e := &EndOfCentralDirectory{
		DiskNumber:      binary.LittleEndian.Uint16(buf[4:6]),
		DirectoryDisk:   binary.LittleEndian.Uint16(buf[6:8]),
		DiskEntryCount:  binary.LittleEndian.Uint16(buf[8:10]),
		TotalEntryCount: binary.LittleEndian.Uint16(buf[10:12]),
		DirectorySize:   binary.LittleEndian.Uint32(buf[12:16]),
		DirectoryOffset: binary.LittleEndian.Uint32(buf[16:20]),
		CommentLength:   binary.LittleEndian.Uint16(buf[20:22]),
	}

	comment, err := readString(r, int(e.CommentLength), "archive comment")
	if err != nil {
		return nil, err
	}
	e.Comment = comment

	return e, nil
}

// MarshalBinary encodes the record. The comment length on the wire is
// derived from the actual Comment contents.
func (e *EndOfCentralDirectory) MarshalBinary() ([]byte, error) {
	if err := checkFieldLength(len(e.Comment), "archive comment"); err != nil {
		return nil, err
	}

	buf := make([]byte, EndOfCentralDirectorySize+len(e.Comment))
	binary.LittleEndian.PutUint32(buf[0:4], EndOfCentralDirectorySignature)
	binary.LittleEndian.PutUint16(buf[4:6], e.DiskNumber)
	binary.LittleEndian.PutUint16(buf[6:8], e.DirectoryDisk)
	binary.LittleEndian.PutUint16(buf[8:10], e.DiskEntryCount)
	binary.LittleEndian.PutUint16(buf[10:12], e.TotalEntryCount)
	binary.LittleEndian.PutUint32(buf[12:16], e.DirectorySize)
	binary.LittleEndian.PutUint32(buf[16:20], e.DirectoryOffset)
	binary.LittleEndian.PutUint16(buf[20:22], uint16(len(e.Comment)))
	copy(buf[EndOfCentralDirectorySize:], e.Comment)
	return buf, nil
}

// EncodeTo writes the encoded record to w.
func (e *EndOfCentralDirectory) EncodeTo(w io.Writer) error {
	data, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write end of central directory: %w", err)
	}
	return nil
}
