package format

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"
)

func sampleLocalHeader() *LocalFileHeader {
	return &LocalFileHeader{
		VersionNeeded:    20,
		Flags:            FlagUTF8,
		Method:           Deflate,
		Modified:         NewDosDateTime(2024, time.March, 15, 14, 30, 52),
		CRC32:            0xcafebabe,
		CompressedSize:   512,
		UncompressedSize: 1024,
		NameLength:       12,
		ExtraLength:      4,
		Name:             "dir/file.txt",
		Extra:            []byte{0x01, 0x02, 0x03, 0x04},
	}
}

func sampleCentralHeader() *CentralDirectoryHeader {
	return &CentralDirectoryHeader{
		VersionMadeBy:     20,
		VersionNeeded:     20,
		Flags:             FlagUTF8,
		Method:            Store,
		Modified:          NewDosDateTime(2024, time.March, 15, 14, 30, 52),
		CRC32:             0xdeadbeef,
		CompressedSize:    256,
		UncompressedSize:  256,
		NameLength:        12,
		ExtraLength:       4,
		CommentLength:     13,
		DiskNumberStart:   0,
		InternalAttrs:     1,
		ExternalAttrs:     0x20,
		LocalHeaderOffset: 4096,
		Name:              "dir/file.txt",
		Extra:             []byte{0x0a, 0x0b, 0x0c, 0x0d},
		Comment:           "entry comment",
	}
}

func TestLocalFileHeader(t *testing.T) {
	t.Run("MarshalReadRoundTrip", func(t *testing.T) {
		original := sampleLocalHeader()
		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		decoded, err := ReadLocalFileHeader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !reflect.DeepEqual(decoded, original) {
			t.Errorf("mismatch: got %+v, want %+v", decoded, original)
		}
	})

	t.Run("TotalSizeMatchesEncoding", func(t *testing.T) {
		h := sampleLocalHeader()
		data, err := h.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if got := h.TotalSize(); got != int64(len(data)) {
			t.Errorf("TotalSize = %d, encoded %d bytes", got, len(data))
		}

		// Decoding must consume exactly TotalSize bytes and no more.
		rd := bytes.NewReader(append(data, 0xee, 0xee, 0xee))
		if _, err := ReadLocalFileHeader(rd); err != nil {
			t.Fatalf("read: %v", err)
		}
		if rd.Len() != 3 {
			t.Errorf("decode left %d bytes unread, want 3", rd.Len())
		}
	})

	t.Run("EncodeToStream", func(t *testing.T) {
		h := sampleLocalHeader()
		data, err := h.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var buf bytes.Buffer
		if err := h.EncodeTo(&buf); err != nil {
			t.Fatalf("encode: %v", err)
		}
		if !bytes.Equal(buf.Bytes(), data) {
			t.Error("EncodeTo output differs from MarshalBinary")
		}
	})

	t.Run("InvalidSignature", func(t *testing.T) {
		data, err := sampleLocalHeader().MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		data[0] = 0x00

		_, err = ReadLocalFileHeader(bytes.NewReader(data))
		var sigErr *SignatureError
		if !errors.As(err, &sigErr) {
			t.Fatalf("got %v, want SignatureError", err)
		}
		if sigErr.Want != LocalFileHeaderSignature {
			t.Errorf("Want = %08x, want %08x", sigErr.Want, LocalFileHeaderSignature)
		}
		if sigErr.Got == LocalFileHeaderSignature {
			t.Errorf("Got = %08x, should differ from the expected signature", sigErr.Got)
		}
	})

	t.Run("UnsupportedFlagsRejected", func(t *testing.T) {
		flags := []FlagWord{
			FlagEncrypted,
			FlagDataDescriptor,
			FlagPatchedData,
			FlagStrongEncryption,
			FlagMaskedLocalHeader,
		}
		for _, flag := range flags {
			h := sampleLocalHeader()
			h.Flags = flag
			data, err := h.MarshalBinary()
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if _, err := ReadLocalFileHeader(bytes.NewReader(data)); !errors.Is(err, ErrUnsupported) {
				t.Errorf("flag %#04x: got %v, want ErrUnsupported", uint16(flag), err)
			}
		}
	})

	t.Run("UTF8FlagAllowed", func(t *testing.T) {
		h := sampleLocalHeader()
		h.Flags = FlagUTF8
		data, err := h.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		decoded, err := ReadLocalFileHeader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !decoded.Flags.UTF8() {
			t.Error("UTF-8 flag lost in decoding")
		}
	})

	t.Run("NonUTF8Name", func(t *testing.T) {
		data, err := sampleLocalHeader().MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		data[LocalFileHeaderSize] = 0xff
		data[LocalFileHeaderSize+1] = 0xfe

		if _, err := ReadLocalFileHeader(bytes.NewReader(data)); !errors.Is(err, ErrNonUTF8) {
			t.Errorf("got %v, want ErrNonUTF8", err)
		}
	})

	t.Run("TruncatedFixedPart", func(t *testing.T) {
		data, err := sampleLocalHeader().MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if _, err := ReadLocalFileHeader(bytes.NewReader(data[:10])); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("got %v, want wrapped io.ErrUnexpectedEOF", err)
		}
	})

	t.Run("TruncatedName", func(t *testing.T) {
		data, err := sampleLocalHeader().MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if _, err := ReadLocalFileHeader(bytes.NewReader(data[:LocalFileHeaderSize+5])); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("got %v, want wrapped io.ErrUnexpectedEOF", err)
		}
	})

	t.Run("NameTooLong", func(t *testing.T) {
		h := sampleLocalHeader()
		h.Name = strings.Repeat("a", 0x10000)
		if _, err := h.MarshalBinary(); !errors.Is(err, ErrFieldTooLong) {
			t.Errorf("got %v, want ErrFieldTooLong", err)
		}
	})
}

func TestCentralDirectoryHeader(t *testing.T) {
	t.Run("MarshalReadRoundTrip", func(t *testing.T) {
		original := sampleCentralHeader()
		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		decoded, err := ReadCentralDirectoryHeader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !reflect.DeepEqual(decoded, original) {
			t.Errorf("mismatch: got %+v, want %+v", decoded, original)
		}
	})

	t.Run("TotalSizeMatchesEncoding", func(t *testing.T) {
		h := sampleCentralHeader()
		data, err := h.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if got := h.TotalSize(); got != int64(len(data)) {
			t.Errorf("TotalSize = %d, encoded %d bytes", got, len(data))
		}

		rd := bytes.NewReader(append(data, 0xee, 0xee))
		if _, err := ReadCentralDirectoryHeader(rd); err != nil {
			t.Fatalf("read: %v", err)
		}
		if rd.Len() != 2 {
			t.Errorf("decode left %d bytes unread, want 2", rd.Len())
		}
	})

	t.Run("InvalidSignature", func(t *testing.T) {
		data, err := sampleCentralHeader().MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		data[1] = 0x00

		var sigErr *SignatureError
		if _, err := ReadCentralDirectoryHeader(bytes.NewReader(data)); !errors.As(err, &sigErr) {
			t.Fatalf("got %v, want SignatureError", err)
		}
	})

	t.Run("FlagsPassThrough", func(t *testing.T) {
		// Unsupported flags are only rejected when the local header is
		// decoded; directory headers keep them for inspection.
		h := sampleCentralHeader()
		h.Flags = FlagEncrypted
		data, err := h.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		decoded, err := ReadCentralDirectoryHeader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !decoded.Flags.Encrypted() {
			t.Error("encrypted flag lost in decoding")
		}
	})
}

func TestEndOfCentralDirectory(t *testing.T) {
	t.Run("MarshalReadRoundTrip", func(t *testing.T) {
		original := &EndOfCentralDirectory{
			DiskEntryCount:  3,
			TotalEntryCount: 3,
			DirectorySize:   188,
			DirectoryOffset: 9000,
			CommentLength:   15,
			Comment:         "archive comment",
		}
		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		decoded, err := ReadEndOfCentralDirectory(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !reflect.DeepEqual(decoded, original) {
			t.Errorf("mismatch: got %+v, want %+v", decoded, original)
		}
	})

	t.Run("EmptyComment", func(t *testing.T) {
		e := &EndOfCentralDirectory{TotalEntryCount: 1, DiskEntryCount: 1}
		data, err := e.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if len(data) != EndOfCentralDirectorySize {
			t.Errorf("encoded %d bytes, want %d", len(data), EndOfCentralDirectorySize)
		}
		if got := e.TotalSize(); got != EndOfCentralDirectorySize {
			t.Errorf("TotalSize = %d, want %d", got, EndOfCentralDirectorySize)
		}
	})

	t.Run("InvalidSignature", func(t *testing.T) {
		e := &EndOfCentralDirectory{}
		data, err := e.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		data[3] = 0x00

		var sigErr *SignatureError
		if _, err := ReadEndOfCentralDirectory(bytes.NewReader(data)); !errors.As(err, &sigErr) {
			t.Fatalf("got %v, want SignatureError", err)
		}
	})

	t.Run("NonUTF8Comment", func(t *testing.T) {
		e := &EndOfCentralDirectory{CommentLength: 4, Comment: "abcd"}
		data, err := e.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		data[EndOfCentralDirectorySize] = 0xff

		if _, err := ReadEndOfCentralDirectory(bytes.NewReader(data)); !errors.Is(err, ErrNonUTF8) {
			t.Errorf("got %v, want ErrNonUTF8", err)
		}
	})
}

func TestDosDateTime(t *testing.T) {
	t.Run("Fields", func(t *testing.T) {
		ts := NewDosDateTime(2024, time.March, 15, 14, 30, 52)
		if ts.Year() != 2024 || ts.Month() != time.March || ts.Day() != 15 {
			t.Errorf("date = %d-%02d-%02d, want 2024-03-15", ts.Year(), ts.Month(), ts.Day())
		}
		if ts.Hour() != 14 || ts.Minute() != 30 || ts.Second() != 52 {
			t.Errorf("time = %02d:%02d:%02d, want 14:30:52", ts.Hour(), ts.Minute(), ts.Second())
		}
	})

	t.Run("WireLayout", func(t *testing.T) {
		// 2018-11-14 12:30:26 packed by hand: date word 0x4d6e in the
		// high half, time word 0x63cd in the low half.
		ts := NewDosDateTime(2018, time.November, 14, 12, 30, 26)
		if uint32(ts) != 0x4d6e63cd {
			t.Errorf("packed = %08x, want 4d6e63cd", uint32(ts))
		}

		raw := DosDateTime(0x4d6e63cd)
		if raw.Year() != 2018 || raw.Month() != time.November || raw.Day() != 14 {
			t.Errorf("date = %d-%02d-%02d, want 2018-11-14", raw.Year(), raw.Month(), raw.Day())
		}
		if raw.Hour() != 12 || raw.Minute() != 30 || raw.Second() != 26 {
			t.Errorf("time = %02d:%02d:%02d, want 12:30:26", raw.Hour(), raw.Minute(), raw.Second())
		}
	})

	t.Run("OddSecondsRoundDown", func(t *testing.T) {
		ts := NewDosDateTime(2024, time.March, 15, 14, 30, 53)
		if ts.Second() != 52 {
			t.Errorf("Second = %d, want 52", ts.Second())
		}
	})

	t.Run("EpochClamp", func(t *testing.T) {
		ts := NewDosDateTime(1975, time.June, 1, 0, 0, 0)
		if ts.Year() != 1980 {
			t.Errorf("Year = %d, want 1980", ts.Year())
		}
	})

	t.Run("Time", func(t *testing.T) {
		ts := NewDosDateTime(2024, time.March, 15, 14, 30, 52)
		want := time.Date(2024, time.March, 15, 14, 30, 52, 0, time.UTC)
		if got := ts.Time(); !got.Equal(want) {
			t.Errorf("Time = %v, want %v", got, want)
		}
	})
}

func TestFlagWord(t *testing.T) {
	cases := []struct {
		name string
		flag FlagWord
		set  func(FlagWord) bool
	}{
		{"Encrypted", FlagEncrypted, FlagWord.Encrypted},
		{"HasDataDescriptor", FlagDataDescriptor, FlagWord.HasDataDescriptor},
		{"PatchedData", FlagPatchedData, FlagWord.PatchedData},
		{"StrongEncrypted", FlagStrongEncryption, FlagWord.StrongEncrypted},
		{"UTF8", FlagUTF8, FlagWord.UTF8},
		{"MaskedLocalHeader", FlagMaskedLocalHeader, FlagWord.MaskedLocalHeader},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.set(tc.flag) {
				t.Errorf("accessor does not report bit %#04x", uint16(tc.flag))
			}
			if tc.set(0) {
				t.Error("accessor reports bit on zero flag word")
			}
		})
	}
}

func TestCompressionMethodString(t *testing.T) {
	if got := Store.String(); got != "store" {
		t.Errorf("Store = %q", got)
	}
	if got := Deflate.String(); got != "deflate" {
		t.Errorf("Deflate = %q", got)
	}
	if got := CompressionMethod(14).String(); got != "method(14)" {
		t.Errorf("unknown method = %q", got)
	}
}
