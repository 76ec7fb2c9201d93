package format

import (
	"bytes"
	"testing"
)

// BenchmarkLocalFileHeader benchmarks the local header codec.
func BenchmarkLocalFileHeader(b *testing.B) {
	h := sampleLocalHeader()

	b.Run("Marshal", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := h.MarshalBinary(); err != nil {
				b.Fatal(err)
			}
		}
	})

	data, _ := h.MarshalBinary()

	b.Run("Read", func(b *testing.B) {
		rd := bytes.NewReader(data)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			rd.Reset(data)
			if _, err := ReadLocalFileHeader(rd); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkCentralDirectoryHeader benchmarks the directory header codec.
func BenchmarkCentralDirectoryHeader(b *testing.B) {
	h := sampleCentralHeader()

	b.Run("Marshal", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := h.MarshalBinary(); err != nil {
				b.Fatal(err)
			}
		}
	})

	data, _ := h.MarshalBinary()

	b.Run("Read", func(b *testing.B) {
		rd := bytes.NewReader(data)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			rd.Reset(data)
			if _, err := ReadCentralDirectoryHeader(rd); err != nil {
				b.Fatal(err)
			}
		}
	})
}
