// Package format provides types and functions for working with the binary
// records of the ZIP file format.
//
// An archive is a sequence of local file headers, each followed by its file
// payload, then a central directory with one header per entry and a single
// end of central directory record. All integers are little-endian and every
// record starts with a four byte signature. Decoding is strict: a record
// that cannot be represented exactly is rejected with a typed error rather
// than approximated.
package format

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Record signatures. All begin with the two byte marker "PK".
const (
	LocalFileHeaderSignature        uint32 = 0x04034b50
	CentralDirectoryHeaderSignature uint32 = 0x02014b50
	EndOfCentralDirectorySignature  uint32 = 0x06054b50
)

// Fixed record sizes, excluding the variable length name, extra field and
// comment tails.
const (
	LocalFileHeaderSize        = 30
	CentralDirectoryHeaderSize = 46
	EndOfCentralDirectorySize  = 22
)

var (
	// ErrNonUTF8 marks a name or comment field that is not valid UTF-8.
	ErrNonUTF8 = errors.New("field is not valid UTF-8")

	// ErrFieldTooLong marks a name, extra field or comment that does not
	// fit its 16-bit length slot.
	ErrFieldTooLong = errors.New("field too long")

	// ErrUnsupported marks a declared archive feature the decoder must
	// not guess its way through, such as encryption or data descriptors.
	ErrUnsupported = errors.New("unsupported feature")
)

// SignatureError reports a record that does not start with the expected
// signature.
type SignatureError struct {
	Want uint32
	Got  uint32
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid signature: expected %08x, got %08x", e.Want, e.Got)
}

// CompressionMethod identifies how an entry payload is stored.
type CompressionMethod uint16

// Methods this package can decode. Any other value is preserved through
// the codec but rejected at extraction time.
const (
	Store   CompressionMethod = 0
	Deflate CompressionMethod = 8
)

// String names the method for listings and error messages.
func (m CompressionMethod) String() string {
	switch m {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	default:
		return fmt.Sprintf("method(%d)", uint16(m))
	}
}

// readString reads exactly n bytes and validates them as UTF-8.
func readString(r io.Reader, n int, what string) (string, error) {
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read %s: %w", what, err)
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("%w: %s", ErrNonUTF8, what)
	}
	return string(buf), nil
}

// checkFieldLength verifies that a variable length field fits its 16-bit
// length slot before encoding.
func checkFieldLength(n int, what string) error {
	if n > 0xffff {
		return fmt.Errorf("%w: %s is %d bytes", ErrFieldTooLong, what, n)
	}
	return nil
}
