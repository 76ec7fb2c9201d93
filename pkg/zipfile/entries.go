package zipfile

import (
	"fmt"
	"io"
	"strings"

	"zipread/pkg/format"
)

// Entry describes one file recorded in the central directory. It is an
// independent snapshot: holding an Entry keeps no reference into the
// archive stream.
type Entry struct {
	Name             string
	CompressedSize   uint32
	UncompressedSize uint32
	Method           format.CompressionMethod
	Modified         format.DosDateTime
	HeaderOffset     uint32 // position of the entry's local file header
}

// IsDir reports whether the entry names a directory. The format marks
// directories with a trailing slash.
func (e Entry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// Entries returns a cursor over the central directory, positioned before
// the first entry. Entries are yielded in the order they were recorded.
func (r *Reader) Entries() *Entries {
	return &Entries{r: r, offset: int64(r.end.DirectoryOffset)}
}

// Entries walks the central directory one header at a time:
//
//	it := r.Entries()
//	for it.Next() {
//		e := it.Entry()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
//
// Next repositions the stream itself, so extraction calls may be
// interleaved with the walk. A header that fails to decode ends the walk;
// Err reports it.
type Entries struct {
	r      *Reader
	offset int64
	index  int
	entry  Entry
	err    error
}

// Next advances to the next entry. It returns false when the directory
// is exhausted or a decode error occurred.
func (it *Entries) Next() bool {
	if it.err != nil || it.index >= it.r.EntryCount() {
		return false
	}
	if _, err := it.r.r.Seek(it.offset, io.SeekStart); err != nil {
		it.err = fmt.Errorf("seek central directory entry %d: %w", it.index, err)
		return false
	}
	h, err := format.ReadCentralDirectoryHeader(it.r.r)
	if err != nil {
		it.err = fmt.Errorf("central directory entry %d: %w", it.index, err)
		return false
	}
	it.offset += h.TotalSize()
	it.index++
	it.entry = Entry{
		Name:             h.Name,
		CompressedSize:   h.CompressedSize,
		UncompressedSize: h.UncompressedSize,
		Method:           h.Method,
		Modified:         h.Modified,
		HeaderOffset:     h.LocalHeaderOffset,
	}
	return true
}

// Entry returns the entry decoded by the last call to Next.
func (it *Entries) Entry() Entry {
	return it.entry
}

// Err returns the first error encountered while walking the directory.
func (it *Entries) Err() error {
	return it.err
}

// Files decodes the whole central directory at once.
func (r *Reader) Files() ([]Entry, error) {
	entries := make([]Entry, 0, r.EntryCount())
	it := r.Entries()
	for it.Next() {
		entries = append(entries, it.Entry())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Names lists the entry names in directory order.
func (r *Reader) Names() ([]string, error) {
	names := make([]string, 0, r.EntryCount())
	it := r.Entries()
	for it.Next() {
		names = append(names, it.Entry().Name)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// Lookup finds the entry with the given name. Names are compared exactly,
// byte for byte; when an archive records duplicates the first one wins.
// Absent names report ErrNotFound.
func (r *Reader) Lookup(name string) (Entry, error) {
	it := r.Entries()
	for it.Next() {
		if e := it.Entry(); e.Name == name {
			return e, nil
		}
	}
	if err := it.Err(); err != nil {
		return Entry{}, err
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}
